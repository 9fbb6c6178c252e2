package resolve

import (
	"path"
	"strings"

	"orglit/internal/vids"
)

// CacheMarker is the path segment that identifies build-cache file paths.
// Cache layout mirrors the content tree under <...>/<CacheMarker>/<mode>/,
// so the document-relative directory is recoverable from the tail.
const CacheMarker = ".orglit-cache"

// ImporterKind tags the shape of the importing path. Classification happens
// once at the call boundary; the resolver core switches on the tag instead of
// re-sniffing string shape.
type ImporterKind int

const (
	// ImporterNone: no importer is known (top-level resolution).
	ImporterNone ImporterKind = iota
	// ImporterDocument: a content-root-relative org document path.
	ImporterDocument
	// ImporterVirtualModule: a virtual identifier; the owning document path
	// is recovered by decoding.
	ImporterVirtualModule
	// ImporterCachePath: a build-cache file path carrying the document path
	// after the cache marker and mode segment.
	ImporterCachePath
)

// ImporterRef is the tagged importer variant.
type ImporterRef struct {
	Kind    ImporterKind
	Path    string       // original string, verbatim
	Decoded vids.Decoded // populated for ImporterVirtualModule
}

// NoImporter is the absent-importer value.
var NoImporter = ImporterRef{Kind: ImporterNone}

// Document builds an ImporterRef for a plain document path.
func Document(orgFilePath string) ImporterRef {
	return ImporterRef{Kind: ImporterDocument, Path: orgFilePath}
}

// ClassifyImporter tags an importer string by shape: a virtual identifier,
// a build-cache file path, or a raw document path. Empty input means no
// importer.
func ClassifyImporter(s string) ImporterRef {
	if s == "" {
		return NoImporter
	}
	if d, ok := vids.Decode(s); ok {
		return ImporterRef{Kind: ImporterVirtualModule, Path: s, Decoded: d}
	}
	if strings.Contains(s, CacheMarker+"/") {
		return ImporterRef{Kind: ImporterCachePath, Path: s}
	}
	return ImporterRef{Kind: ImporterDocument, Path: s}
}

// dir returns the content-root-relative directory the importer's relative
// imports resolve against, and whether one is available.
func (r ImporterRef) dir() (string, bool) {
	switch r.Kind {
	case ImporterDocument:
		return path.Dir(r.Path), true
	case ImporterVirtualModule:
		return path.Dir(r.Decoded.OrgFilePath), true
	case ImporterCachePath:
		tail := r.Path[strings.Index(r.Path, CacheMarker+"/")+len(CacheMarker)+1:]
		// Layout is <mode>/<orgFilePath>/<blockFile>; drop the mode segment,
		// then the block file, leaving the owning document's directory.
		if i := strings.IndexByte(tail, '/'); i >= 0 {
			doc := path.Dir(tail[i+1:])
			return path.Dir(doc), true
		}
		return "", false
	default:
		return "", false
	}
}
