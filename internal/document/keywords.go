package document

import "regexp"

var reLayoutKeyword = regexp.MustCompile(`(?im)^\s*#\+layout:\s*(\S+)\s*$`)

// LayoutRef returns the document-level `#+LAYOUT:` keyword value, or "" when
// the document declares none. Only the first declaration counts.
func LayoutRef(documentText string) string {
	if m := reLayoutKeyword.FindStringSubmatch(documentText); m != nil {
		return m[1]
	}
	return ""
}
