package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"orglit/internal/config"
	"orglit/internal/document"
	"orglit/internal/manifest"
	"orglit/internal/snapshot"
	"orglit/internal/transform"
	"orglit/internal/walkdocs"
)

// project bundles everything a command needs: the discovered configuration,
// the scanned documents, and the assembled manifest.
type project struct {
	cfg   *config.Config
	docs  []walkdocs.DocInfo
	man   *manifest.Manifest
	rules transform.Rules
}

// openProject discovers the configuration from the command's --dir flag,
// scans the content root for org documents, and builds the manifest.
func openProject(cmd *cobra.Command) (*project, error) {
	startDir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(startDir)
	if err != nil {
		return nil, err
	}

	contentRoot := cfg.ContentRootAbs()
	if _, err := os.Stat(contentRoot); err != nil {
		return nil, fmt.Errorf("content root %s: %w", contentRoot, err)
	}

	docs, err := walkdocs.CollectDocs(contentRoot, walkdocs.Options{
		Exclude:      toSet(cfg.Scan.Exclude),
		UseGitignore: cfg.Gitignore(),
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", contentRoot, err)
	}

	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		paths = append(paths, d.RelPath)
	}

	rules := transform.Default()
	m, err := manifest.Build(cfg.Project.ContentRoot, paths,
		manifest.DirSource{Root: contentRoot}, modeFunc(rules, cfg.Project.DefaultMode))
	if err != nil {
		return nil, err
	}

	return &project{cfg: cfg, docs: docs, man: m, rules: rules}, nil
}

// modeFunc adapts the rule list to a manifest ModeFunc, substituting the
// configured fallback when no rule decided otherwise.
func modeFunc(rules transform.Rules, fallback string) manifest.ModeFunc {
	return func(b document.Block) string {
		m := rules.ModeFor(b)
		if m == "default" && fallback != "" {
			return fallback
		}
		return m
	}
}

// cacheDir is the per-content-root snapshot directory.
func (p *project) cacheDir() string {
	return snapshot.CacheDir(p.cfg.CacheDirAbs(), p.cfg.ContentRootAbs())
}

// currentSnapshot captures the scanned documents as a snapshot, counting
// lines from the document body and blocks from the manifest.
func (p *project) currentSnapshot() (*snapshot.Snapshot, error) {
	curr := &snapshot.Snapshot{
		Root:          filepath.Base(p.cfg.ContentRootAbs()),
		Created:       time.Now().UTC().Format(time.RFC3339),
		FormatVersion: "1",
		Files:         make([]snapshot.DocFile, 0, len(p.docs)),
	}
	for _, d := range p.docs {
		data, err := os.ReadFile(d.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", d.AbsPath, err)
		}
		curr.Files = append(curr.Files, snapshot.DocFile{
			Path:   d.RelPath,
			Hash:   d.SHA256Hex,
			Lines:  countLines(data),
			Blocks: len(p.man.BlocksFor(d.RelPath)),
		})
	}
	return curr, nil
}

// countLines follows the block line-count convention: a trailing newline
// does not start an extra line, empty input has zero lines.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// toSet builds a string->struct{} set from a slice, skipping empty strings.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, v := range list {
		if v != "" {
			m[v] = struct{}{}
		}
	}
	return m
}

func wantJSON(cmd *cobra.Command) bool {
	j, _ := cmd.Flags().GetBool("json")
	return j
}
