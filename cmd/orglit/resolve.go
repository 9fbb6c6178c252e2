package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"orglit/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <import>",
	Short: "Resolve a block import to its virtual module",
	Long: `Resolve an import string like "./utils.org?name=helpers&mode=client"
to the block it targets. Relative paths need --from: the importer can be a
document path, a virtual identifier, or a cache path; it is classified
automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: resolveExecution,
}

func init() {
	resolveCmd.Flags().String("from", "", "importer context (document path, virtual id, or cache path)")
}

func resolveExecution(cmd *cobra.Command, args []string) error {
	from, err := cmd.Flags().GetString("from")
	if err != nil {
		return err
	}

	p, err := openProject(cmd)
	if err != nil {
		return err
	}

	importer := resolve.NoImporter
	if from != "" {
		importer = resolve.ClassifyImporter(from)
	}

	res, err := resolve.Resolve(args[0], importer, p.man)
	if err != nil {
		var rerr *resolve.Error
		if errors.As(err, &rerr) && !wantJSON(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n",
				color.New(color.FgRed, color.Bold).Sprint("resolve failed:"), rerr)
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return fmt.Errorf("%s", rerr.Code)
		}
		return err
	}

	if wantJSON(cmd) {
		payload := struct {
			VirtualID   string            `json:"virtualId"`
			OrgFilePath string            `json:"orgFilePath"`
			BlockIndex  int               `json:"blockIndex"`
			BlockName   string            `json:"blockName,omitempty"`
			Extension   string            `json:"extension"`
			Config      map[string]string `json:"config,omitempty"`
		}{res.VirtualID, res.OrgFilePath, res.Block.Index, res.Block.Name, res.Extension, res.Config}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", res.VirtualID)
	fmt.Fprintf(out, "  document:  %s (line %d)\n", res.OrgFilePath, res.Block.StartLine)
	fmt.Fprintf(out, "  language:  %s (.%s)\n", res.Block.Language, res.Extension)
	keys := make([]string, 0, len(res.Config))
	for k := range res.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  config:    %s=%s\n", k, res.Config[k])
	}
	return nil
}
