// Package validate performs lightweight validation of an assembled block
// manifest. It is not a schema validator; it checks the structural and
// semantic invariants that commonly catch a bad index.
//
// Goals:
//   - Aggregate multiple issues into a single error for better UX
//   - Deterministic, strict-enough checks without being overbearing
package validate

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"orglit/internal/manifest"
	"orglit/internal/vids"
)

// Manifest validates the invariants of a built manifest:
//
//   - ContentRoot must be non-empty.
//   - Document paths must be normalized relative paths (no absolute,
//     no "..", forward slashes only).
//   - Block indices within a document must be dense: 0..n-1 in order.
//   - StartLine >= 1 for every block.
//   - Named blocks must be unique within their document, and names must not
//     contain '/' (identifier encoding would have to sanitize them).
//   - Every virtual identifier must decode back to its block's document
//     path, and resolve to the same *Block stored in the file index.
//   - Every block in the file index must be reachable through exactly
//     one virtual identifier.
//
// Returns nil when everything holds, or a single aggregated error
// describing all the issues found.
func Manifest(m *manifest.Manifest) error {
	var errs errlist

	if m == nil {
		return errors.New("manifest is nil")
	}
	if strings.TrimSpace(m.ContentRoot) == "" {
		errs.add("manifest.contentRoot must be non-empty")
	}

	idsSeen := make(map[string]int, len(m.ByVirtualID))

	for _, doc := range m.Documents() {
		prefix := fmt.Sprintf("doc %s", doc)

		if filepath.IsAbs(doc) || strings.HasPrefix(doc, "/") {
			errs.add("%s: path must be relative", prefix)
		}
		if strings.Contains(doc, `\`) {
			errs.add("%s: path must use forward slashes ('/')", prefix)
		}
		if hasDotDot(doc) {
			errs.add("%s: path must not contain '..' segments", prefix)
		}

		names := make(map[string]struct{})
		for i, b := range m.BlocksFor(doc) {
			bp := fmt.Sprintf("%s blocks[%d]", prefix, i)

			if b.Index != i {
				errs.add("%s: index must be %d (got %d)", bp, i, b.Index)
			}
			if b.OrgFilePath != doc {
				errs.add("%s: orgFilePath %q does not match its document", bp, b.OrgFilePath)
			}
			if b.StartLine < 1 {
				errs.add("%s: startLine must be >= 1 (got %d)", bp, b.StartLine)
			}
			if b.Name != "" {
				if strings.Contains(b.Name, "/") {
					errs.add("%s: block name %q must not contain '/' (identifier encoding sanitizes it)", bp, b.Name)
				}
				if _, dup := names[b.Name]; dup {
					errs.add("%s: duplicate block name %q", bp, b.Name)
				}
				names[b.Name] = struct{}{}
			}
		}
	}

	for id, b := range m.ByVirtualID {
		prefix := fmt.Sprintf("id %s", id)

		dec, ok := vids.Decode(id)
		if !ok {
			errs.add("%s: malformed virtual identifier", prefix)
			continue
		}
		if dec.OrgFilePath != b.OrgFilePath {
			errs.add("%s: decodes to %q, block lives in %q", prefix, dec.OrgFilePath, b.OrgFilePath)
		}

		found := false
		for _, fb := range m.BlocksFor(b.OrgFilePath) {
			if fb == b {
				found = true
				break
			}
		}
		if !found {
			errs.add("%s: block is not present in the file index", prefix)
		}
		idsSeen[blockKey(b.OrgFilePath, b.Index)]++
	}

	for _, doc := range m.Documents() {
		for _, b := range m.BlocksFor(doc) {
			switch n := idsSeen[blockKey(doc, b.Index)]; n {
			case 1:
				// ok
			case 0:
				errs.add("doc %s blocks[%d]: no virtual identifier maps to this block", doc, b.Index)
			default:
				errs.add("doc %s blocks[%d]: %d virtual identifiers map to this block", doc, b.Index, n)
			}
		}
	}

	return errs.err()
}

func blockKey(doc string, index int) string {
	return fmt.Sprintf("%s#%d", doc, index)
}

func hasDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	if e == nil {
		return
	}
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if e == nil || len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
