package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest file discovered by walking up from the
// start directory.
const ManifestName = "morph.toml"

// Manifest is a located and parsed morph.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML structure of morph.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Syntax  SyntaxConfig  `toml:"syntax"`
	Filter  FilterConfig  `toml:"filter"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type SyntaxConfig struct {
	// Extensions lists the enabled syntax extensions by name
	// (see preproc.ParseExtension for the closed set).
	Extensions []string `toml:"extensions"`
}

type FilterConfig struct {
	// Exclude lists path prefixes skipped by the pipeline's fast filter.
	Exclude []string `toml:"exclude"`
}

// ErrPackageSectionMissing indicates that [package] is missing in a manifest.
var ErrPackageSectionMissing = errors.New("missing [package]")

// Find walks up from startDir looking for morph.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
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

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if cfg.Package.Name == "" {
		return nil, fmt.Errorf("%s: [package].name is empty", path)
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// FindAndLoad combines Find and Load. ok=false means no manifest exists
// between startDir and the filesystem root.
func FindAndLoad(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}
