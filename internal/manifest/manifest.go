// Package manifest assembles the process-wide block registry: every document
// under a content root, extracted and indexed two ways — by document path and
// by virtual identifier.
//
// Invariants:
//   - Every block reachable from ByFile has exactly one entry in ByVirtualID
//     and vice versa; both indices point at the same Block values.
//   - The two indices are always rebuilt together into fresh containers and
//     swapped as a whole; they are never mutated independently.
//   - Document lists keep extraction order, so block indices stay dense and
//     monotonic per document.
//
// Rebuilds are not internally locked; concurrent callers must serialize them.
package manifest

import (
	"fmt"
	"sort"

	"orglit/internal/document"
	"orglit/internal/vids"
)

// Source supplies raw text for a document path. The backing store can be a
// real filesystem or an in-memory one.
type Source interface {
	Read(path string) (string, error)
	Exists(path string) bool
}

// ModeFunc decides the transform mode recorded in a block's virtual
// identifier. When nil, the block's own mode parameter is used.
type ModeFunc func(document.Block) string

// Manifest is the aggregate two-index registry. The ModeFunc used at build
// time is retained so that every identifier derived later (resolver results,
// graph nodes, listings) agrees with the ByVirtualID keys.
type Manifest struct {
	ContentRoot string
	ByFile      map[string][]*document.Block
	ByVirtualID map[string]*document.Block

	mode ModeFunc
}

// Build extracts every listed document via src and assembles both indices.
// docPaths are content-root-relative with forward slashes. A document that
// cannot be read fails the whole build: unreadable input is the caller's
// concern, not something to paper over.
func Build(contentRoot string, docPaths []string, src Source, mode ModeFunc) (*Manifest, error) {
	byFile := make(map[string][]*document.Block, len(docPaths))
	byVID := make(map[string]*document.Block)

	sorted := sortedPaths(docPaths)

	for _, p := range sorted {
		text, err := src.Read(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		blocks := document.Extract(p, text)
		list := make([]*document.Block, len(blocks))
		for i := range blocks {
			b := blocks[i]
			list[i] = &b
			byVID[VirtualID(b, mode)] = &b
		}
		byFile[p] = list
	}

	return &Manifest{
		ContentRoot: contentRoot,
		ByFile:      byFile,
		ByVirtualID: byVID,
		mode:        mode,
	}, nil
}

// IDFor computes a block's identifier under this manifest's mode decision.
// The result is always a ByVirtualID key for blocks the manifest indexed.
func (m *Manifest) IDFor(b document.Block) string {
	return VirtualID(b, m.mode)
}

// ModeOf returns the transform mode this manifest recorded for a block.
func (m *Manifest) ModeOf(b document.Block) string {
	if m.mode != nil {
		return m.mode(b)
	}
	return b.Mode()
}

// VirtualID computes a block's identifier: named blocks encode their name,
// unnamed blocks encode their index.
func VirtualID(b document.Block, mode ModeFunc) string {
	m := b.Mode()
	if mode != nil {
		m = mode(b)
	}
	ext := vids.ExtensionForLanguage(b.Language)
	if b.Name != "" {
		return vids.Encode(m, b.OrgFilePath, b.Name, ext)
	}
	return vids.EncodeIndex(m, b.OrgFilePath, b.Index, ext)
}

// BlocksFor returns the ordered block list for a document, or nil when the
// document is unknown.
func (m *Manifest) BlocksFor(orgFilePath string) []*document.Block {
	return m.ByFile[orgFilePath]
}

// Lookup resolves a virtual identifier to its block.
func (m *Manifest) Lookup(virtualID string) (*document.Block, bool) {
	b, ok := m.ByVirtualID[virtualID]
	return b, ok
}

// FindNamed linear-scans a document's blocks for the given name.
func (m *Manifest) FindNamed(orgFilePath, name string) (*document.Block, bool) {
	for _, b := range m.ByFile[orgFilePath] {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// BlockNames returns the sorted list of named blocks in a document. Used for
// error messages suggesting legitimate alternatives.
func (m *Manifest) BlockNames(orgFilePath string) []string {
	var names []string
	for _, b := range m.ByFile[orgFilePath] {
		if b.Name != "" {
			names = append(names, b.Name)
		}
	}
	sort.Strings(names)
	return names
}

// sortedPaths returns a lexicographically sorted copy, leaving the caller's
// slice untouched.
func sortedPaths(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}

// Documents returns the sorted document paths present in the manifest.
func (m *Manifest) Documents() []string {
	out := make([]string, 0, len(m.ByFile))
	for p := range m.ByFile {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
