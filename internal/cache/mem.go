// Package cache avoids redundant preprocessing and expansion work. Entries
// are keyed by path and validated against a content hash plus the recorded
// hashes of every dependency; anything stale or corrupt is simply a miss.
package cache

import (
	"sync"

	"morph/internal/project"
)

// DepHashFunc supplies the current content hash of a dependency path. The
// caller owns the dependency graph and the host, so the cache never does I/O.
type DepHashFunc func(path string) (project.Digest, bool)

// Stats is the only introspection surface. Deliberately free of any
// eviction-order guarantee.
type Stats struct {
	PreprocessedCount int
	TransformedCount  int
}

type entry[T any] struct {
	contentHash project.Digest
	depHashes   map[string]project.Digest
	value       T
}

// Cache holds preprocessed (P) and transformed (T) results per path.
// Safe for concurrent use. Entries are replaced, never mutated in place.
type Cache[P, T any] struct {
	mu    sync.RWMutex
	pre   map[string]entry[P]
	trans map[string]entry[T]
}

// New creates an empty cache.
func New[P, T any]() *Cache[P, T] {
	return &Cache[P, T]{
		pre:   make(map[string]entry[P]),
		trans: make(map[string]entry[T]),
	}
}

// valid reports whether an entry still matches the owning file's hash and
// every recorded dependency hash.
func valid[T any](e entry[T], hash project.Digest, depHash DepHashFunc) bool {
	if e.contentHash != hash {
		return false
	}
	for path, recorded := range e.depHashes {
		current, ok := depHash(path)
		if !ok || current != recorded {
			return false
		}
	}
	return true
}

// GetPreprocessed returns the cached preprocessed result if it is still valid.
func (c *Cache[P, T]) GetPreprocessed(path string, hash project.Digest, depHash DepHashFunc) (P, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.pre[path]
	if !ok || !valid(e, hash, depHash) {
		var zero P
		return zero, false
	}
	return e.value, true
}

// PutPreprocessed stores a preprocessed result, replacing any prior entry.
func (c *Cache[P, T]) PutPreprocessed(path string, value P, hash project.Digest, depHashes map[string]project.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pre[path] = entry[P]{contentHash: hash, depHashes: copyHashes(depHashes), value: value}
}

// GetTransformed returns the cached transformed result if it is still valid.
func (c *Cache[P, T]) GetTransformed(path string, hash project.Digest, depHash DepHashFunc) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.trans[path]
	if !ok || !valid(e, hash, depHash) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// PutTransformed stores a transformed result, replacing any prior entry.
func (c *Cache[P, T]) PutTransformed(path string, value T, hash project.Digest, depHashes map[string]project.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trans[path] = entry[T]{contentHash: hash, depHashes: copyHashes(depHashes), value: value}
}

// Invalidate removes both entries for path only.
func (c *Cache[P, T]) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pre, path)
	delete(c.trans, path)
}

// InvalidateAll empties both maps.
func (c *Cache[P, T]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pre = make(map[string]entry[P])
	c.trans = make(map[string]entry[T])
}

// Stats returns current entry counts.
func (c *Cache[P, T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		PreprocessedCount: len(c.pre),
		TransformedCount:  len(c.trans),
	}
}

// copyHashes защищает entry от последующих мутаций мапы у вызывающего.
func copyHashes(in map[string]project.Digest) map[string]project.Digest {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]project.Digest, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
