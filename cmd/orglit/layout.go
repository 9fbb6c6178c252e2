package main

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"orglit/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <ref>",
	Short: "Resolve a cross-file layout reference",
	Long: `Resolve a layout reference like "./shared.org#wrapper" or
"/layouts/base.org#page" to its block. Relative references need --from,
the document (content-root-relative) the reference appears in. With
--chain, parent layouts named by #+LAYOUT: keywords are followed too.`,
	Args: cobra.ExactArgs(1),
	RunE: layoutExecution,
}

func init() {
	layoutCmd.Flags().String("from", "", "document the reference appears in (content-root-relative)")
	layoutCmd.Flags().Bool("chain", false, "follow #+LAYOUT: keywords up the parent chain")
	layoutCmd.Flags().Bool("dev", false, "force mtime-based cache invalidation (defaults to [cache].dev)")
}

func layoutExecution(cmd *cobra.Command, args []string) error {
	from, err := cmd.Flags().GetString("from")
	if err != nil {
		return err
	}
	chain, err := cmd.Flags().GetBool("chain")
	if err != nil {
		return err
	}

	p, err := openProject(cmd)
	if err != nil {
		return err
	}

	dev := p.cfg.Cache.Dev
	if cmd.Flags().Changed("dev") {
		dev, _ = cmd.Flags().GetBool("dev")
	}

	ref, ok := layout.ParseRef(args[0])
	if !ok {
		return fmt.Errorf("malformed layout reference %q (want path.org#blockName)", args[0])
	}
	if !ref.IsAbsolute && from == "" {
		return fmt.Errorf("relative reference %q needs --from", args[0])
	}

	contentRoot := p.cfg.ContentRootAbs()
	currentDoc := contentRoot
	if from != "" {
		currentDoc = filepath.Join(contentRoot, filepath.FromSlash(from))
	}

	sess := layout.NewSession(log.New(cmd.ErrOrStderr(), "layout: ", 0))
	var blocks []*layout.Block
	if chain {
		blocks = sess.LoadChain(ref, currentDoc, contentRoot, dev)
	} else if b := sess.Load(ref, currentDoc, contentRoot, dev); b != nil {
		blocks = []*layout.Block{b}
	}

	if len(blocks) == 0 {
		cmd.SilenceUsage = true
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n",
			color.New(color.FgYellow, color.Bold).Sprint("layout not resolved:"), args[0])
		return fmt.Errorf("layout %q not resolved", args[0])
	}

	if wantJSON(cmd) {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(blocks)
	}

	out := cmd.OutOrStdout()
	for i, b := range blocks {
		fmt.Fprintf(out, "[%d] %s (%s, %s)\n", i, b.Name, b.Type, b.Language)
		fmt.Fprint(out, b.Code)
		if len(b.Code) > 0 && b.Code[len(b.Code)-1] != '\n' {
			fmt.Fprintln(out)
		}
	}
	return nil
}
