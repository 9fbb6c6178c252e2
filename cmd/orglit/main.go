// Package main implements the orglit CLI: it indexes org documents with
// embedded code blocks, resolves block imports and layout chains, and tracks
// content-root changes between runs.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"orglit/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "orglit",
	Short: "Block extraction and resolution for org documents",
	Long:  `orglit indexes typed code blocks embedded in org documents, assigns them virtual module identifiers, and resolves imports and layout references between them.`,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("dir", "C", ".", "start directory for orglit.toml discovery")
	rootCmd.PersistentFlags().Bool("json", false, "emit machine-readable JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
