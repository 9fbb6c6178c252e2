package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"orglit/internal/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the block import graph",
	Long: `Scan every extracted block for import specifiers that target other
blocks and print the resulting directed graph. Specifiers that fail to
resolve contribute no edge.`,
	Args: cobra.NoArgs,
	RunE: graphExecution,
}

func graphExecution(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	g := graph.Build(p.man)

	if wantJSON(cmd) {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}

	out := cmd.OutOrStdout()
	for _, n := range g.Nodes {
		fmt.Fprintln(out, n)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(out, "%s -> %s\n", e[0], e[1])
	}
	return nil
}
