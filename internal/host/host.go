// Package host is the single I/O seam of the pipeline. Everything above it
// reads file content through a Host, so tests and bundler integrations can
// supply an in-memory implementation.
package host

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Host answers content queries for paths. A missing or unreadable file is
// reported as ok=false, never as an error: the pipeline treats it as a
// diagnosable condition, not a failure.
type Host interface {
	ReadFile(path string) (content string, ok bool)
	FileExists(path string) bool
}

// OS reads files from the filesystem, optionally relative to a base directory.
type OS struct {
	BaseDir string
}

// NewOS returns a filesystem-backed host rooted at baseDir ("" means cwd).
func NewOS(baseDir string) *OS {
	return &OS{BaseDir: baseDir}
}

func (h *OS) resolve(path string) string {
	if h.BaseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.BaseDir, path)
}

func (h *OS) ReadFile(path string) (string, bool) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(h.resolve(path))
	if err != nil {
		return "", false
	}
	return string(content), true
}

func (h *OS) FileExists(path string) bool {
	info, err := os.Stat(h.resolve(path))
	return err == nil && !info.IsDir()
}

// Mem keeps files in memory. Safe for concurrent use.
type Mem struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewMem returns an in-memory host seeded with the given files.
func NewMem(files map[string]string) *Mem {
	m := &Mem{files: make(map[string]string, len(files))}
	for path, content := range files {
		m.files[path] = content
	}
	return m
}

func (h *Mem) ReadFile(path string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	content, ok := h.files[path]
	return content, ok
}

func (h *Mem) FileExists(path string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.files[path]
	return ok
}

// Write adds or replaces a file. A write models an edit: the pipeline sees the
// new content on the next read, prior reads stay untouched.
func (h *Mem) Write(path, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[path] = content
}

// Delete removes a file.
func (h *Mem) Delete(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.files, path)
}

// Paths returns all known paths in sorted order.
func (h *Mem) Paths() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.files))
	for path := range h.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
