package pipeline

import "morph/internal/cache"

// Invalidate drops the cached results for one path. Dependents stay cached;
// their validation against current dependency hashes decides whether they
// survive.
func (t *Transformer) Invalidate(path string) {
	t.cache.Invalidate(path)
}

// InvalidateAll empties the in-memory cache. The dependency graph is kept:
// edges describe the files, not the cache.
func (t *Transformer) InvalidateAll() {
	t.cache.InvalidateAll()
}

// InvalidateWithDependents drops path and everything that transitively
// depends on it, and returns the dependents that were dropped.
func (t *Transformer) InvalidateWithDependents(path string) []string {
	t.cache.Invalidate(path)
	dependents := t.graph.TransitiveDependents(path)
	for _, dep := range dependents {
		t.cache.Invalidate(dep)
	}
	return dependents
}

// Stats reports current cache entry counts.
func (t *Transformer) Stats() cache.Stats {
	return t.cache.Stats()
}
