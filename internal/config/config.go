// Package config loads project settings from an orglit.toml manifest.
//
// The manifest is discovered by walking up from a start directory, so
// commands work from anywhere inside a project tree. Every field has a
// default; a missing manifest is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the project manifest searched for by Find.
const FileName = "orglit.toml"

// Config is the decoded orglit.toml plus resolved paths.
type Config struct {
	// Path is the manifest file location, empty when defaults are in use.
	Path string
	// Root is the project root: the manifest's directory, or the start
	// directory when no manifest was found.
	Root string

	Project ProjectConfig `toml:"project"`
	Scan    ScanConfig    `toml:"scan"`
	Cache   CacheConfig   `toml:"cache"`
}

type ProjectConfig struct {
	// ContentRoot holds the org documents, relative to Root.
	ContentRoot string `toml:"content_root"`
	// DefaultMode is used for blocks that match no transform rule.
	DefaultMode string `toml:"default_mode"`
}

type ScanConfig struct {
	Exclude      []string `toml:"exclude"`
	UseGitignore *bool    `toml:"use_gitignore"`
}

type CacheConfig struct {
	// Dir is where snapshots and extracted blocks land, relative to Root.
	Dir string `toml:"dir"`
	// Dev turns on mtime-based invalidation for layout documents.
	Dev bool `toml:"dev"`
}

// Default returns the configuration used when no manifest exists.
func Default(root string) *Config {
	return &Config{
		Root: root,
		Project: ProjectConfig{
			ContentRoot: "content",
			DefaultMode: "default",
		},
		Scan: ScanConfig{
			Exclude: []string{".git", "node_modules", "tmp"},
		},
		Cache: CacheConfig{
			Dir: "tmp/.orglit-cache",
			Dev: true,
		},
	}
}

// Find walks up from startDir looking for orglit.toml. It returns the
// manifest path and true when found.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load discovers and decodes the project manifest starting at startDir.
// When no manifest exists it returns Default rooted at startDir.
func Load(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		abs, err := filepath.Abs(startDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve start directory: %w", err)
		}
		return Default(abs), nil
	}
	return LoadFile(path)
}

// LoadFile decodes a manifest at an explicit path and fills in defaults
// for anything the file leaves unset.
func LoadFile(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))
	cfg.Path = path
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if strings.TrimSpace(cfg.Project.ContentRoot) == "" {
		return nil, fmt.Errorf("%s: [project].content_root must not be blank", path)
	}
	if strings.TrimSpace(cfg.Project.DefaultMode) == "" {
		return nil, fmt.Errorf("%s: [project].default_mode must not be blank", path)
	}
	if strings.TrimSpace(cfg.Cache.Dir) == "" {
		return nil, fmt.Errorf("%s: [cache].dir must not be blank", path)
	}
	return cfg, nil
}

// ContentRootAbs resolves the content root against the project root.
func (c *Config) ContentRootAbs() string {
	if filepath.IsAbs(c.Project.ContentRoot) {
		return filepath.Clean(c.Project.ContentRoot)
	}
	return filepath.Join(c.Root, filepath.FromSlash(c.Project.ContentRoot))
}

// CacheDirAbs resolves the cache directory against the project root.
func (c *Config) CacheDirAbs() string {
	if filepath.IsAbs(c.Cache.Dir) {
		return filepath.Clean(c.Cache.Dir)
	}
	return filepath.Join(c.Root, filepath.FromSlash(c.Cache.Dir))
}

// Gitignore reports whether .gitignore files should be honored during
// document scans. Unset means yes.
func (c *Config) Gitignore() bool {
	if c.Scan.UseGitignore == nil {
		return true
	}
	return *c.Scan.UseGitignore
}
