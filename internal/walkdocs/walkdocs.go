// Package walkdocs provides a deterministic, filterable filesystem walker
// that gathers the org documents under a content root.
package walkdocs

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// DocInfo is a minimal, deterministic descriptor of a collected document.
type DocInfo struct {
	RelPath   string // content-root-relative path with forward slashes
	AbsPath   string // absolute filesystem path
	Size      int64  // size in bytes
	SHA256Hex string // lowercase hex sha256 of the document text
}

// Options controls the walk. The zero value collects every .org document,
// honoring .gitignore, without following symlinks.
type Options struct {
	Exclude        map[string]struct{} // base-name prefixes to skip (dirs and files)
	UseGitignore   bool
	FollowSymlinks bool
}

// DefaultExclude is the standard set of skipped directory prefixes.
func DefaultExclude() map[string]struct{} {
	return map[string]struct{}{
		".git":         {},
		"node_modules": {},
		"dist":         {},
		"build":        {},
		"out":          {},
	}
}

type walkState struct {
	opt      Options
	root     string
	patterns []gitPattern
	docs     []DocInfo
}

// CollectDocs walks root and returns every .org document passing the
// filters, sorted by relative path.
func CollectDocs(root string, opt Options) ([]DocInfo, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var patterns []gitPattern
	if opt.UseGitignore {
		if pats, err := parseGitignore(filepath.Join(rootAbs, ".gitignore")); err == nil {
			patterns = pats
		}
	}
	state := &walkState{opt: opt, root: rootAbs, patterns: patterns}
	if err := filepath.WalkDir(rootAbs, state.visit); err != nil {
		return nil, err
	}
	sort.Slice(state.docs, func(i, j int) bool { return state.docs[i].RelPath < state.docs[j].RelPath })
	return state.docs, nil
}

func (ws *walkState) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return nil
	}
	rel, ok := ws.relative(path)
	if !ok {
		return nil
	}
	if ws.shouldSkip(rel, d) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if d.IsDir() {
		if !ws.opt.FollowSymlinks && isSymlink(d) {
			return filepath.SkipDir
		}
		return nil
	}
	return ws.handleFile(path, rel, d)
}

func (ws *walkState) relative(path string) (string, bool) {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	return rel, true
}

func (ws *walkState) shouldSkip(rel string, d fs.DirEntry) bool {
	base := filepath.Base(rel)
	if hasExcludedPrefix(base, ws.opt.Exclude) {
		return true
	}
	if ws.opt.UseGitignore && matchGitignore(ws.patterns, rel, d.IsDir()) {
		return true
	}
	return false
}

func (ws *walkState) handleFile(path, rel string, d fs.DirEntry) error {
	if !ws.opt.FollowSymlinks && isSymlink(d) {
		return nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".org") {
		return nil
	}
	info, err := d.Info()
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	sumHex, err := sha256File(path)
	if err != nil {
		return nil
	}
	ws.docs = append(ws.docs, DocInfo{
		RelPath:   rel,
		AbsPath:   path,
		Size:      info.Size(),
		SHA256Hex: sumHex,
	})
	return nil
}

func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

// hasExcludedPrefix reports whether base begins with any exclude key, so
// "build" also skips "build-site".
func hasExcludedPrefix(base string, exclude map[string]struct{}) bool {
	for k := range exclude {
		if strings.HasPrefix(base, k) {
			return true
		}
	}
	return false
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ---------------- .gitignore support ----------------

type gitPattern struct {
	neg     bool           // pattern starts with '!'
	dirOnly bool           // pattern ends with '/'
	rx      *regexp.Regexp // compiled matcher
}

// parseGitignore reads a .gitignore file and compiles patterns. Minimal
// support: '#' comments and blank lines are skipped, '!' negates, a leading
// '/' anchors to the root, a trailing '/' restricts to directories, '**'
// crosses directories, '*' and '?' behave like shell globs within a segment.
func parseGitignore(path string) ([]gitPattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var res []gitPattern
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		neg := false
		if strings.HasPrefix(line, "!") {
			neg = true
			line = strings.TrimSpace(line[1:])
			if line == "" {
				continue
			}
		}
		dirOnly := strings.HasSuffix(line, "/")
		if dirOnly {
			line = strings.TrimSuffix(line, "/")
		}
		anchored := strings.HasPrefix(line, "/")
		if anchored {
			line = strings.TrimPrefix(line, "/")
		}
		res = append(res, gitPattern{neg: neg, dirOnly: dirOnly, rx: compileGitGlob(line, anchored)})
	}
	return res, nil
}

func compileGitGlob(glob string, anchored bool) *regexp.Regexp {
	esc := regexp.QuoteMeta(glob)
	esc = strings.ReplaceAll(esc, `\*\*`, "__DOUBLESTAR__")
	esc = strings.ReplaceAll(esc, `\*`, "[^/]*")
	esc = strings.ReplaceAll(esc, `\?`, "[^/]")
	esc = strings.ReplaceAll(esc, "__DOUBLESTAR__", ".*")
	if anchored {
		return regexp.MustCompile("^" + esc + "$")
	}
	return regexp.MustCompile("(^|.*/)" + esc + "$")
}

func matchGitignore(pats []gitPattern, rel string, isDir bool) bool {
	if len(pats) == 0 {
		return false
	}
	ignored := false
	for _, p := range pats {
		if p.rx.MatchString(rel) {
			if p.dirOnly && !isDir {
				continue
			}
			ignored = !p.neg
		}
	}
	return ignored
}
