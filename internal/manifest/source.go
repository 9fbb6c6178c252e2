package manifest

import (
	"os"
	"path/filepath"

	"orglit/internal/textutil"
)

// DirSource is a Source backed by a directory on the local filesystem.
// Document text is normalized to LF and valid UTF-8 on read.
type DirSource struct {
	Root string // absolute or cwd-relative content root
}

func (d DirSource) Read(path string) (string, error) {
	b, err := os.ReadFile(filepath.Join(d.Root, filepath.FromSlash(path)))
	if err != nil {
		return "", err
	}
	return string(textutil.NormalizeUTF8LF(b)), nil
}

func (d DirSource) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(d.Root, filepath.FromSlash(path)))
	return err == nil
}

// MapSource is an in-memory Source keyed by document path, mostly for tests.
type MapSource map[string]string

func (m MapSource) Read(path string) (string, error) {
	s, ok := m[path]
	if !ok {
		return "", os.ErrNotExist
	}
	return s, nil
}

func (m MapSource) Exists(path string) bool {
	_, ok := m[path]
	return ok
}
