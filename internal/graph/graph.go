// Package graph builds a block-level import graph over a manifest. Nodes are
// virtual identifiers; an edge A→B means block A's text imports block B.
//
// Design goals:
//   - Deterministic output (sorted nodes/edges, deduped)
//   - Tolerant: an unresolvable import simply produces no edge — broken
//     references surface through the resolver's own errors, not here
//
// Import specifiers are found with fast regex scanners over block text
// (import/export-from and require forms); only specifiers that look like
// block imports (an .org path with a query string) are considered.
package graph

import (
	"regexp"
	"sort"
	"strings"

	"orglit/internal/manifest"
	"orglit/internal/resolve"
)

// Graph is a simple directed graph (no weights).
type Graph struct {
	Nodes []string    `json:"nodes"`
	Edges [][2]string `json:"edges"`
}

var (
	reImportFrom = regexp.MustCompile(`(?m)\b(?:import|export)\b[^'"\n]*\bfrom\s*['"]([^'"]+)['"]`)
	reBareImport = regexp.MustCompile(`(?m)\bimport\s*['"]([^'"]+)['"]`)
	reRequire    = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
)

// Build scans every block in the manifest and returns the import graph.
func Build(m *manifest.Manifest) Graph {
	nodeSet := make(map[string]struct{}, 64)
	edgeSet := make(map[[2]string]struct{}, 64)

	for _, docPath := range m.Documents() {
		importer := resolve.Document(docPath)
		for _, b := range m.BlocksFor(docPath) {
			from := m.IDFor(*b)
			addNode(nodeSet, from)
			for _, spec := range scanSpecifiers(b.Content) {
				r, err := resolve.Resolve(spec, importer, m)
				if err != nil {
					continue
				}
				addNode(nodeSet, r.VirtualID)
				addEdge(edgeSet, from, r.VirtualID)
			}
		}
	}

	return assemble(nodeSet, edgeSet)
}

// scanSpecifiers extracts candidate block-import specifiers from block text,
// in document order, deduped.
func scanSpecifiers(content string) []string {
	seen := make(map[string]struct{}, 4)
	var out []string
	for _, re := range []*regexp.Regexp{reImportFrom, reBareImport, reRequire} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			spec := m[1]
			if !isBlockImport(spec) {
				continue
			}
			if _, dup := seen[spec]; dup {
				continue
			}
			seen[spec] = struct{}{}
			out = append(out, spec)
		}
	}
	return out
}

// isBlockImport reports whether a specifier targets an org block: an .org
// path followed by a query string.
func isBlockImport(spec string) bool {
	q := strings.IndexByte(spec, '?')
	if q < 0 {
		return false
	}
	return strings.HasSuffix(spec[:q], ".org")
}

func addNode(set map[string]struct{}, n string) { set[n] = struct{}{} }

func addEdge(set map[[2]string]struct{}, from, to string) {
	set[[2]string{from, to}] = struct{}{}
}

func assemble(nodeSet map[string]struct{}, edgeSet map[[2]string]struct{}) Graph {
	nodes := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	edges := make([][2]string, 0, len(edgeSet))
	for e := range edgeSet {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})

	return Graph{Nodes: nodes, Edges: edges}
}
