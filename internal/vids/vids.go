// Package vids implements the virtual identifier scheme: a deterministic,
// reversible encoding between (transform mode, document path, block index or
// name, extension) and an opaque string identifier.
//
// Identifier layout:
//
//	virtual:<mode>/<orgFilePath>/<indexOrName>.<ext>
//
// The document path keeps its forward slashes; mode and indexOrName must not
// contain '/', and indexOrName must not contain '.', which keeps the encoding
// reversible without consulting any registry. That matters because decoding
// sometimes runs before a manifest entry exists (first-load ordering).
//
// Two different blocks never encode to the same identifier: the document path
// and the index-or-name are both part of the encoding.
package vids

import (
	"strconv"
	"strings"
)

// Prefix marks a string as a virtual identifier.
const Prefix = "virtual:"

// Decoded holds the fields recovered from a virtual identifier.
type Decoded struct {
	Mode        string
	OrgFilePath string
	IndexOrName string
	Ext         string
}

// Index interprets IndexOrName as a 0-based block index.
func (d Decoded) Index() (int, bool) {
	n, err := strconv.Atoi(d.IndexOrName)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// extByLanguage is the fixed language→extension table. Unknown languages
// fall back to "js".
var extByLanguage = map[string]string{
	"typescript": "ts",
	"ts":         "ts",
	"tsx":        "tsx",
	"jsx":        "jsx",
	"javascript": "js",
	"js":         "js",
}

// ExtensionForLanguage maps a normalized language tag to a source extension.
func ExtensionForLanguage(lang string) string {
	if ext, ok := extByLanguage[strings.ToLower(lang)]; ok {
		return ext
	}
	return "js"
}

// Encode builds the identifier for a block. indexOrName is the block's name
// when it has one, otherwise its decimal index. Slashes in mode and
// indexOrName would make the layout ambiguous (only orgFilePath may contain
// them), so they are replaced with '-'; validate.Manifest reports such names.
func Encode(mode, orgFilePath, indexOrName, ext string) string {
	mode = sanitizeSegment(mode)
	indexOrName = sanitizeSegment(indexOrName)
	var b strings.Builder
	b.Grow(len(Prefix) + len(mode) + len(orgFilePath) + len(indexOrName) + len(ext) + 3)
	b.WriteString(Prefix)
	b.WriteString(mode)
	b.WriteByte('/')
	b.WriteString(orgFilePath)
	b.WriteByte('/')
	b.WriteString(indexOrName)
	b.WriteByte('.')
	b.WriteString(ext)
	return b.String()
}

func sanitizeSegment(s string) string {
	return strings.ReplaceAll(s, "/", "-")
}

// EncodeIndex is Encode with a numeric block index.
func EncodeIndex(mode, orgFilePath string, index int, ext string) string {
	return Encode(mode, orgFilePath, strconv.Itoa(index), ext)
}

// Is reports whether s carries the virtual identifier prefix.
func Is(s string) bool { return strings.HasPrefix(s, Prefix) }

// Decode recovers the encoded fields. It returns false for strings that do
// not carry the prefix or do not follow the identifier layout.
func Decode(id string) (Decoded, bool) {
	if !Is(id) {
		return Decoded{}, false
	}
	rest := id[len(Prefix):]

	slash := strings.IndexByte(rest, '/')
	if slash <= 0 {
		return Decoded{}, false
	}
	mode := rest[:slash]
	rest = rest[slash+1:]

	last := strings.LastIndexByte(rest, '/')
	if last <= 0 || last == len(rest)-1 {
		return Decoded{}, false
	}
	orgPath := rest[:last]
	final := rest[last+1:]

	dot := strings.LastIndexByte(final, '.')
	if dot <= 0 || dot == len(final)-1 {
		return Decoded{}, false
	}

	return Decoded{
		Mode:        mode,
		OrgFilePath: orgPath,
		IndexOrName: final[:dot],
		Ext:         final[dot+1:],
	}, true
}
