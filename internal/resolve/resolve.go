// Package resolve implements in-block import resolution: an import-style
// string found inside a block's text is mapped to the target block, its
// owning document, and a synthesized virtual identifier.
//
// Import surface syntax:
//
//	<relative-or-absolute-path>.org?name=<identifier>[&<key>=<value>...]
//
// Resolution is fail-loud: any unresolvable import is a typed *Error that a
// bundler or compiler surfaces as a build error. Silent fallback would hide a
// real broken reference. Contrast with package layout, whose whole-document
// references degrade softly.
//
// Resolve is a pure function over its inputs and the manifest snapshot; it
// performs no I/O and mutates nothing.
package resolve

import (
	"path"
	"strings"

	"orglit/internal/document"
	"orglit/internal/manifest"
	"orglit/internal/vids"
)

// ResolvedImport is a successful resolution.
type ResolvedImport struct {
	VirtualID   string            // identifier for the target block's virtual module
	OrgFilePath string            // content-root-relative path of the owning document
	Block       *document.Block   // the target block
	Extension   string            // source extension derived from the block language
	Config      map[string]string // query keys beyond name, passed through uninterpreted
}

// Resolve maps importStr, found inside a block of importer, to its target
// block. The two no-name shapes keep distinct codes: an import with no query
// string at all is INVALID_SYNTAX (it may simply not be an import), while a
// query string without name= is MISSING_NAME.
func Resolve(importStr string, importer ImporterRef, m *manifest.Manifest) (*ResolvedImport, error) {
	q := strings.IndexByte(importStr, '?')
	if q < 0 {
		return nil, &Error{Code: ErrInvalidSyntax, Import: importStr, Detail: "missing ?name= query"}
	}
	rawPath := importStr[:q]
	name, config, ok := parseQuery(importStr[q+1:])
	if !ok {
		return nil, &Error{Code: ErrMissingName, Import: importStr, Detail: "query string has no name= key"}
	}

	docPath, rerr := resolveDocPath(rawPath, importer, importStr)
	if rerr != nil {
		return nil, rerr
	}

	blocks := m.BlocksFor(docPath)
	if blocks == nil {
		return nil, &Error{
			Code:   ErrOrgFileNotFound,
			Import: importStr,
			Detail: "no org document at " + docPath,
		}
	}

	block, found := m.FindNamed(docPath, name)
	if !found {
		return nil, &Error{
			Code:   ErrBlockNotFound,
			Import: importStr,
			Detail: "no block named " + name + " in " + docPath,
			Known:  m.BlockNames(docPath),
		}
	}

	ext := vids.ExtensionForLanguage(block.Language)
	return &ResolvedImport{
		// The manifest decides the mode: an identifier minted here must be
		// a ByVirtualID key, or follow-up lookups go nowhere.
		VirtualID:   m.IDFor(*block),
		OrgFilePath: docPath,
		Block:       block,
		Extension:   ext,
		Config:      config,
	}, nil
}

// parseQuery splits a raw query string into the name value and the remaining
// keys. ok is false when no name= key is present.
func parseQuery(raw string) (name string, config map[string]string, ok bool) {
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		if k == "name" {
			if name == "" {
				name = v
			}
			continue
		}
		if config == nil {
			config = make(map[string]string)
		}
		config[k] = v
	}
	if name == "" {
		return "", nil, false
	}
	return name, config, true
}

// resolveDocPath turns the import's path part into a content-root-relative
// document path. Absolute imports strip the leading slash; relative imports
// join onto the importer's directory.
func resolveDocPath(rawPath string, importer ImporterRef, importStr string) (string, *Error) {
	if strings.HasPrefix(rawPath, "/") {
		return path.Clean(strings.TrimPrefix(rawPath, "/")), nil
	}
	dir, ok := importer.dir()
	if !ok {
		return "", &Error{
			Code:   ErrInvalidSyntax,
			Import: importStr,
			Detail: "relative import without a known importer",
		}
	}
	return path.Clean(path.Join(dir, rawPath)), nil
}
