package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"orglit/internal/document"
	"orglit/internal/snapshot"
	"orglit/internal/validate"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Scan the content root and build the block index",
	Long: `Scan every org document under the content root, extract its code
blocks, assign virtual module identifiers, and persist a snapshot so later
runs of "orglit status" can report what changed.`,
	Args: cobra.NoArgs,
	RunE: indexExecution,
}

func init() {
	indexCmd.Flags().Bool("new", false, "reset the cache for this content root before indexing")
	indexCmd.Flags().Bool("store-blobs", true, "store document copies as content-addressed blobs for diffs")
	indexCmd.Flags().Bool("validate", true, "check manifest invariants before saving")
}

func indexExecution(cmd *cobra.Command, args []string) error {
	resetCache, err := cmd.Flags().GetBool("new")
	if err != nil {
		return err
	}
	storeBlobs, err := cmd.Flags().GetBool("store-blobs")
	if err != nil {
		return err
	}
	runValidate, err := cmd.Flags().GetBool("validate")
	if err != nil {
		return err
	}

	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	dir := p.cacheDir()
	if resetCache {
		if err := snapshot.Clear(dir); err != nil {
			return err
		}
	}

	if runValidate {
		if err := validate.Manifest(p.man); err != nil {
			return fmt.Errorf("manifest validation failed:\n%w", err)
		}
	}

	curr, err := p.currentSnapshot()
	if err != nil {
		return err
	}
	if storeBlobs {
		for _, d := range p.docs {
			f, err := os.Open(d.AbsPath)
			if err != nil {
				return err
			}
			err = snapshot.SaveBlob(dir, d.SHA256Hex, f)
			f.Close()
			if err != nil {
				return fmt.Errorf("store blob for %s: %w", d.RelPath, err)
			}
		}
	}
	if err := snapshot.Save(dir, curr); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	blocks, named := 0, 0
	for _, doc := range p.man.Documents() {
		for _, b := range p.man.BlocksFor(doc) {
			blocks++
			if b.Name != "" {
				named++
			}
		}
	}

	if wantJSON(cmd) {
		payload := struct {
			ContentRoot string                       `json:"contentRoot"`
			Documents   map[string][]*document.Block `json:"documents"`
			Blocks      int                          `json:"blocks"`
			Named       int                          `json:"named"`
			CacheDir    string                       `json:"cacheDir"`
		}{p.man.ContentRoot, p.man.ByFile, blocks, named, dir}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Indexed %d documents (blocks=%d, named=%d), snapshot saved to %s\n",
		len(p.docs), blocks, named, dir)
	return nil
}
