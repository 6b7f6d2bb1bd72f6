package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"morph/internal/diag"
	"morph/internal/project"
	"morph/internal/sourcemap"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Disk хранит результаты трансформации по составному хешу на диске.
// Thread-safe for concurrent access.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores a transformed result for warm starts across runs.
// The in-memory cache stays the validity authority: a payload read from disk
// is re-validated against current hashes before use.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	ContentHash project.Digest

	// Dependencies (parallel slices, deterministic order)
	DepPaths  []string
	DepHashes []project.Digest

	// Result
	Code        string
	Changed     bool
	Diagnostics []diag.Diagnostic
	HasMap      bool
	Map         sourcemap.RawMap
	Imports     []string
}

// OpenDisk initializes and returns a disk cache at the standard location.
func OpenDisk(app string) (*Disk, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

// OpenDiskAt returns a disk cache rooted at an explicit directory (tests).
func OpenDiskAt(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

func (c *Disk) pathFor(key project.Digest) string {
	// Для удобства читаемости/очистки — подкаталог "units".
	return filepath.Join(c.dir, "units", key.Hex()+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *Disk) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = diskCacheSchemaVersion

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmpName, p)
}

// Get reads and deserializes a payload. A missing file, a decode failure or a
// schema mismatch is a miss, never an error condition for the pipeline.
func (c *Disk) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, nil
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	units := filepath.Join(c.dir, "units")
	if err := os.RemoveAll(units); err != nil {
		return fmt.Errorf("failed to drop disk cache: %w", err)
	}
	return nil
}

// Dir returns the cache root.
func (c *Disk) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}
