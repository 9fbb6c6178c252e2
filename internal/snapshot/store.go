// Package snapshot — on-disk store.
//
// The store stays dependency-light so it can be called early from the CLI.
// It offers:
//   - Content-addressed cache directory derivation (PathKey, CacheDir)
//   - Snapshot load/save with atomic writes (Load, Save)
//   - Cache lifecycle and blob storage helpers (Clear, SaveBlob, ReadBlob)
//
// Conventions:
//   - The cache root defaults to "tmp/.orglit-cache" unless overridden.
//   - A per-root cache lives at:  <baseTmp>/<pathKey>/
//   - The snapshot is stored at:  <baseTmp>/<pathKey>/index.json
//   - Blobs are stored under:     <baseTmp>/<pathKey>/blobs/aa/bb/<sha256>
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultCacheRoot = "tmp/.orglit-cache"
	indexFileName    = "index.json"
	blobsDirName     = "blobs"
)

// PathKey returns a short, stable identifier for an absolute content root.
// sha256(absPath), first 12 hex chars.
func PathKey(abs string) string {
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:])[:12]
}

// CacheDir resolves the cache directory for the given absolute content root.
// An empty baseTmp falls back to the default cache root.
func CacheDir(baseTmp, rootAbs string) string {
	base := baseTmp
	if base == "" {
		base = defaultCacheRoot
	}
	return filepath.Join(base, PathKey(rootAbs))
}

// Load reads the snapshot from <dir>/index.json. A missing file returns
// (nil, nil) so callers can treat it as "no previous snapshot" without
// branching on errors.
func Load(dir string) (*Snapshot, error) {
	b, err := os.ReadFile(filepath.Join(dir, indexFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the snapshot atomically to <dir>/index.json: into a temporary
// file in the same directory, then renamed, so readers never observe a
// partially-written snapshot.
func Save(dir string, s *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, f, err := createTempFile(dir, indexFileName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, indexFileName))
}

// Clear removes the entire cache directory for the content root. Safe to
// call when the directory does not exist.
func Clear(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return os.RemoveAll(dir)
}

// SaveBlob stores content-addressed data under <dir>/blobs/aa/bb/<hash>.
// Existing blobs make the call a no-op. hash must be lowercase hex; the
// function validates the storage path but does not recompute the hash.
func SaveBlob(dir, hash string, r io.Reader) error {
	if !isHex(hash) || len(hash) < 6 {
		return errors.New("invalid hash for blob storage")
	}
	p := blobPath(dir, hash)
	if _, err := os.Stat(p); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, f, err := createTempFile(filepath.Dir(p), filepath.Base(p))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// ReadBlob loads a blob by content hash.
func ReadBlob(dir, hash string) ([]byte, error) {
	if !isHex(hash) || len(hash) < 6 {
		return nil, errors.New("invalid hash for blob read")
	}
	return os.ReadFile(blobPath(dir, hash))
}

// blobPath returns the sharded path for a content-addressed blob.
func blobPath(dir, hash string) string {
	h := strings.ToLower(hash)
	return filepath.Join(dir, blobsDirName, h[:2], h[2:4], h)
}

func createTempFile(dir, base string) (string, *os.File, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+base+"-")
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
