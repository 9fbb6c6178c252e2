// Package layout resolves whole-document layout/wrapper references of the
// form `<path>.org#<blockName>`, distinct from in-block imports (`?name=`).
//
// Resolution is fail-soft: a missing file, a missing block, or a detected
// reference cycle logs a warning and yields nil, and the caller substitutes a
// default layout. A layout is a presentational fallback, not a
// correctness-critical reference — compare package resolve, which fails loud.
//
// All session state (the parsed-document cache and the cycle-guard loading
// stack) lives on Session, one per workspace. Nothing here is a module-level
// singleton, so independent workspaces in one process cannot
// cross-contaminate. Sessions are not internally locked; callers serialize.
package layout

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"orglit/internal/document"
	"orglit/internal/textutil"
	"orglit/internal/vids"
)

// Ref is a parsed cross-file reference. Parsed fresh per resolution call;
// only resolution results are cached.
type Ref struct {
	FilePath   string // path part, including the .org suffix
	BlockName  string
	IsAbsolute bool // leading '/': content-root-relative
}

// Block is a resolved layout block.
type Block struct {
	Name     string
	Type     string // derived from language, same table as block extraction
	Code     string
	Language string
}

// parsedDoc is what the cache holds for one external document: its extracted
// blocks, its own layout keyword, and the mtime observed when it was read.
// Entries are inserted only after a successful read+stat.
type parsedDoc struct {
	blocks      []document.Block
	layoutRef   string
	mtimeMillis int64
}

// Session owns the external-document cache and the cycle-guard loading
// stack. Lifetime is the workspace: until Clear or process exit.
type Session struct {
	cache   *lru.Cache[string, *parsedDoc]
	loading map[string]struct{} // absolute paths currently being resolved
	logger  *log.Logger
}

const defaultCacheSize = 256

// NewSession builds a session. A nil logger falls back to stderr.
func NewSession(logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	cache, err := lru.New[string, *parsedDoc](defaultCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &Session{
		cache:   cache,
		loading: make(map[string]struct{}),
		logger:  logger,
	}
}

// Clear drops every cached parse. The loading stack is empty between
// top-level calls and needs no clearing.
func (s *Session) Clear() { s.cache.Purge() }

// Loading returns the loading-stack depth. It is zero between independent
// top-level calls; anything else means a pop was missed.
func (s *Session) Loading() int { return len(s.loading) }

// ParseRef parses a candidate cross-file reference. ok is false when s is
// not one (caller falls back to same-document resolution). The path must end
// in .org, start with ./, ../ or /, and carry a non-empty block name after #.
func ParseRef(s string) (Ref, bool) {
	p, name, found := strings.Cut(s, "#")
	if !found || name == "" {
		return Ref{}, false
	}
	if !strings.HasSuffix(p, ".org") {
		return Ref{}, false
	}
	abs := strings.HasPrefix(p, "/")
	if !abs && !strings.HasPrefix(p, "./") && !strings.HasPrefix(p, "../") {
		return Ref{}, false
	}
	return Ref{FilePath: p, BlockName: name, IsAbsolute: abs}, true
}

// Load resolves ref to a layout block, or nil when the target is missing,
// unreadable, or already on the loading stack (a cycle). currentDocAbs is the
// absolute path of the referencing document; contentRootAbs anchors absolute
// references. devMode enables mtime-based cache invalidation; in build mode a
// cached parse is reused for the whole run.
func (s *Session) Load(ref Ref, currentDocAbs, contentRootAbs string, devMode bool) *Block {
	blocks := s.resolve(ref, currentDocAbs, contentRootAbs, devMode, false)
	if len(blocks) == 0 {
		return nil
	}
	return blocks[0]
}

// LoadChain resolves ref and then the target document's own `#+LAYOUT:`
// wrapper, transitively, innermost first. A cyclic branch ends the chain with
// what was collected so far.
func (s *Session) LoadChain(ref Ref, currentDocAbs, contentRootAbs string, devMode bool) []*Block {
	return s.resolve(ref, currentDocAbs, contentRootAbs, devMode, true)
}

// resolve is one guarded resolution frame. The loading-stack entry for the
// target is removed on every exit path; an escape without the pop would
// falsely flag all future legitimate resolutions through that path as
// cycles. When chain is set, the parent layout resolves while this frame is
// still pushed — that is what turns an indirect cycle into a guard hit
// instead of unbounded recursion.
func (s *Session) resolve(ref Ref, currentDocAbs, contentRootAbs string, devMode, chain bool) []*Block {
	var target string
	if ref.IsAbsolute {
		target = filepath.Join(contentRootAbs, filepath.FromSlash(strings.TrimPrefix(ref.FilePath, "/")))
	} else {
		target = filepath.Join(filepath.Dir(currentDocAbs), filepath.FromSlash(ref.FilePath))
	}
	target = filepath.Clean(target)

	// The cycle check precedes any parse or cache lookup for the path.
	if _, busy := s.loading[target]; busy {
		s.logger.Printf("layout: cyclic reference to %s via %s#%s, using default", target, ref.FilePath, ref.BlockName)
		return nil
	}
	s.loading[target] = struct{}{}
	defer delete(s.loading, target)

	doc, ok := s.fetch(target, devMode)
	if !ok {
		s.logger.Printf("layout: cannot read %s, using default", target)
		return nil
	}

	var found *Block
	for i := range doc.blocks {
		b := &doc.blocks[i]
		if b.Name != ref.BlockName {
			continue
		}
		found = &Block{
			Name:     b.Name,
			Type:     vids.ExtensionForLanguage(b.Language),
			Code:     b.Content,
			Language: b.Language,
		}
		break
	}
	if found == nil {
		s.logger.Printf("layout: no block named %q in %s, using default", ref.BlockName, target)
		return nil
	}

	out := []*Block{found}
	if chain && doc.layoutRef != "" {
		if next, ok := ParseRef(doc.layoutRef); ok {
			out = append(out, s.resolve(next, target, contentRootAbs, devMode, true)...)
		}
	}
	return out
}

// fetch returns the parsed form of an absolute document path, reusing the
// cache when allowed. In dev mode an entry is stale once the on-disk mtime
// exceeds the cached one.
func (s *Session) fetch(absPath string, devMode bool) (*parsedDoc, bool) {
	entry, cached := s.cache.Get(absPath)
	if cached && !devMode {
		return entry, true
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, false
	}
	mtime := info.ModTime().UnixMilli()
	if cached && mtime <= entry.mtimeMillis {
		return entry, true
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, false
	}
	text := string(textutil.NormalizeUTF8LF(raw))
	parsed := &parsedDoc{
		blocks:      document.Extract(filepath.Base(absPath), text),
		layoutRef:   document.LayoutRef(text),
		mtimeMillis: mtime,
	}
	s.cache.Add(absPath, parsed)
	return parsed, true
}
