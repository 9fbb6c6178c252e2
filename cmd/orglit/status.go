package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"orglit/internal/diff"
	"orglit/internal/snapshot"
	"orglit/internal/textutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show content-root changes since the last index",
	Long: `Compare the content root against the snapshot saved by "orglit index"
and report added, removed, renamed, and changed documents. With --diff,
unified patches are printed for changed documents (old text comes from the
blob store populated during indexing).`,
	Args: cobra.NoArgs,
	RunE: statusExecution,
}

func init() {
	statusCmd.Flags().Bool("diff", false, "print unified patches for changed documents")
	statusCmd.Flags().Int("max-diff-bytes", 2_000_000, "max bytes per patch (0 = no limit)")
}

func statusExecution(cmd *cobra.Command, args []string) error {
	showDiff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	maxDiffBytes, err := cmd.Flags().GetInt("max-diff-bytes")
	if err != nil {
		return err
	}

	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	dir := p.cacheDir()

	prev, err := snapshot.Load(dir)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if prev == nil {
		cmd.SilenceUsage = true
		return fmt.Errorf("no snapshot for this content root; run \"orglit index\" first")
	}

	curr, err := p.currentSnapshot()
	if err != nil {
		return err
	}
	d := snapshot.BuildDelta(prev, curr)

	if wantJSON(cmd) {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	out := cmd.OutOrStdout()
	if d.Empty() {
		fmt.Fprintln(out, "content root unchanged since last index")
		return nil
	}

	added := color.New(color.FgGreen).SprintFunc()
	removed := color.New(color.FgRed).SprintFunc()
	changed := color.New(color.FgYellow).SprintFunc()
	renamed := color.New(color.FgCyan).SprintFunc()

	for _, f := range d.Added {
		fmt.Fprintf(out, "%s %s (%d blocks)\n", added("A"), f.Path, f.Blocks)
	}
	for _, f := range d.Removed {
		fmt.Fprintf(out, "%s %s\n", removed("D"), f.Path)
	}
	for _, r := range d.Renamed {
		fmt.Fprintf(out, "%s %s -> %s\n", renamed("R"), r.From, r.To)
	}
	for _, c := range d.Changed {
		fmt.Fprintf(out, "%s %s (blocks %d -> %d)\n", changed("M"), c.Path, c.BlocksBefore, c.BlocksAfter)
	}
	fmt.Fprintf(out, "added=%d removed=%d renamed=%d changed=%d\n",
		len(d.Added), len(d.Removed), len(d.Renamed), len(d.Changed))

	if !showDiff {
		return nil
	}

	opt := diff.Options{MaxBytes: maxDiffBytes}
	contentRoot := p.cfg.ContentRootAbs()
	for _, c := range d.Changed {
		newText, err := os.ReadFile(filepath.Join(contentRoot, filepath.FromSlash(c.Path)))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", c.Path, err)
			continue
		}
		newText = textutil.EnsureTrailingLF(textutil.NormalizeUTF8LF(newText))

		oldText, err := snapshot.ReadBlob(dir, c.HashBefore)
		if err != nil {
			// No blob means indexing ran with --store-blobs=false.
			body, _ := diff.Added(c.Path, newText, opt)
			fmt.Fprint(out, body)
			continue
		}
		body, _ := diff.Unified(c.Path, c.Path, oldText, newText, opt)
		fmt.Fprint(out, body)
	}
	for _, f := range d.Added {
		text, err := os.ReadFile(filepath.Join(contentRoot, filepath.FromSlash(f.Path)))
		if err != nil {
			continue
		}
		body, _ := diff.Added(f.Path, text, opt)
		fmt.Fprint(out, body)
	}
	for _, f := range d.Removed {
		oldText, err := snapshot.ReadBlob(dir, f.Hash)
		if err != nil {
			continue
		}
		body, _ := diff.Removed(f.Path, oldText, opt)
		fmt.Fprint(out, body)
	}
	return nil
}
