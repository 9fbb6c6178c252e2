// Package document — fence extraction.
//
// Extraction locates `#+begin_src` regions in org markup and turns each into
// a Block with a dense, document-ordered index. Markers are matched
// case-insensitively:
//
//	#+NAME: calculator
//	#+begin_src typescript :mode client
//	... code ...
//	#+end_src
//
// Rules:
//   - Fence-like text inside `#+begin_export` ... `#+end_export` is opaque
//     prose and is never extracted.
//   - A block's name comes from, in priority order: a preceding `#+NAME:`
//     directive separated only by blank or other directive lines, then an
//     explicit `:name` key in the fence's parameter string. A block may be
//     legitimately unnamed.
//   - A fence opened but never closed is skipped; extraction of the rest of
//     the document continues. A later opener ends the dangling fence and
//     starts a new block. Per-block malformation never raises.
//   - Output is deterministic for identical input.
package document

import (
	"regexp"
	"strings"
)

var (
	reBeginSrc    = regexp.MustCompile(`(?i)^\s*#\+begin_src(?:\s+(\S+))?(?:\s+(.*?))?\s*$`)
	reEndSrc      = regexp.MustCompile(`(?i)^\s*#\+end_src\s*$`)
	reBeginExport = regexp.MustCompile(`(?i)^\s*#\+begin_export\b`)
	reEndExport   = regexp.MustCompile(`(?i)^\s*#\+end_export\s*$`)
	reNameDir     = regexp.MustCompile(`(?i)^\s*#\+name:\s*(\S+)\s*$`)
	reDirective   = regexp.MustCompile(`^\s*#\+`)
)

// Extract scans documentText and returns the ordered block list for the
// document at orgFilePath. It never fails for malformed single blocks;
// the caller owns whole-document read errors.
func Extract(orgFilePath, documentText string) []Block {
	lines := strings.Split(documentText, "\n")

	var blocks []Block
	var body []string
	var open *Block // fence currently being collected, nil between blocks

	pendingName := ""
	inExport := false

	for i, line := range lines {
		ln := i + 1

		if open != nil {
			if reEndSrc.MatchString(line) {
				open.Content = joinBody(body)
				open.Index = len(blocks)
				blocks = append(blocks, *open)
				open = nil
				body = body[:0]
				continue
			}
			if m := reBeginSrc.FindStringSubmatch(line); m != nil {
				// A second opener means the previous fence was never
				// closed. The dangling block is dropped and the new
				// opener starts fresh; only well-formed blocks survive.
				open = openBlock(orgFilePath, m, "", ln)
				body = body[:0]
				continue
			}
			body = append(body, line)
			continue
		}

		if inExport {
			if reEndExport.MatchString(line) {
				inExport = false
			}
			continue
		}
		if reBeginExport.MatchString(line) {
			inExport = true
			pendingName = ""
			continue
		}

		if m := reNameDir.FindStringSubmatch(line); m != nil {
			pendingName = m[1]
			continue
		}

		if m := reBeginSrc.FindStringSubmatch(line); m != nil {
			open = openBlock(orgFilePath, m, pendingName, ln)
			pendingName = ""
			continue
		}

		// A pending name survives blank lines and other directives only.
		if pendingName != "" && strings.TrimSpace(line) != "" && !reDirective.MatchString(line) {
			pendingName = ""
		}
	}

	// An unterminated fence is dropped without raising.
	return blocks
}

// openBlock starts a block from a reBeginSrc submatch. pendingName is a
// preceding #+NAME: directive; an explicit :name parameter is the fallback.
func openBlock(orgFilePath string, m []string, pendingName string, startLine int) *Block {
	params := ParseParams(m[2])
	name := pendingName
	if name == "" {
		if n, ok := params.Get("name"); ok {
			name = n
		}
	}
	return &Block{
		OrgFilePath: orgFilePath,
		Name:        name,
		Language:    strings.ToLower(m[1]),
		Parameters:  params,
		StartLine:   startLine,
	}
}

// joinBody reassembles the fence body. Non-empty bodies keep a trailing
// newline so content matches the document text between the markers.
func joinBody(body []string) string {
	if len(body) == 0 {
		return ""
	}
	return strings.Join(body, "\n") + "\n"
}

// ParseParams parses an org fence parameter string of space-separated
// `:key value` pairs into an ordered list. Values run until the next `:key`
// token. An absent or blank parameter string yields an empty list.
func ParseParams(s string) Params {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	fields := strings.Fields(s)
	var out Params
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if !strings.HasPrefix(f, ":") || len(f) < 2 {
			continue
		}
		key := f[1:]
		var vals []string
		for i+1 < len(fields) && !strings.HasPrefix(fields[i+1], ":") {
			i++
			vals = append(vals, fields[i])
		}
		out = append(out, Param{Key: key, Value: strings.Join(vals, " ")})
	}
	return out
}
