package cache

import (
	"testing"

	"morph/internal/project"
)

type fakeResult struct {
	Code string
}

func newTestCache() *Cache[string, fakeResult] {
	return New[string, fakeResult]()
}

func depHashesOf(hashes map[string]project.Digest) DepHashFunc {
	return func(path string) (project.Digest, bool) {
		h, ok := hashes[path]
		return h, ok
	}
}

func TestCache_HitRequiresContentHash(t *testing.T) {
	c := newTestCache()
	hash := project.HashString("content")
	c.PutTransformed("a.mx", fakeResult{Code: "out"}, hash, nil)

	got, ok := c.GetTransformed("a.mx", hash, depHashesOf(nil))
	if !ok || got.Code != "out" {
		t.Fatalf("expected hit, got (%+v, %v)", got, ok)
	}

	if _, ok := c.GetTransformed("a.mx", project.HashString("edited"), depHashesOf(nil)); ok {
		t.Fatal("stale content hash must miss")
	}
	if _, ok := c.GetTransformed("other.mx", hash, depHashesOf(nil)); ok {
		t.Fatal("unknown path must miss")
	}
}

func TestCache_HitRequiresDepHashes(t *testing.T) {
	c := newTestCache()
	hash := project.HashString("a")
	depHash := project.HashString("b v1")
	c.PutTransformed("a.mx", fakeResult{Code: "out"}, hash, map[string]project.Digest{
		"b.mx": depHash,
	})

	current := map[string]project.Digest{"b.mx": depHash}
	if _, ok := c.GetTransformed("a.mx", hash, depHashesOf(current)); !ok {
		t.Fatal("expected hit with matching dep hash")
	}

	// зависимость изменилась — промах, даже при неизменном контенте
	current["b.mx"] = project.HashString("b v2")
	if _, ok := c.GetTransformed("a.mx", hash, depHashesOf(current)); ok {
		t.Fatal("changed dep hash must miss")
	}

	// зависимость исчезла — тоже промах
	if _, ok := c.GetTransformed("a.mx", hash, depHashesOf(nil)); ok {
		t.Fatal("missing dep must miss")
	}
}

func TestCache_PutReplaces(t *testing.T) {
	c := newTestCache()
	h1 := project.HashString("v1")
	h2 := project.HashString("v2")
	c.PutTransformed("a.mx", fakeResult{Code: "one"}, h1, nil)
	c.PutTransformed("a.mx", fakeResult{Code: "two"}, h2, nil)

	if _, ok := c.GetTransformed("a.mx", h1, depHashesOf(nil)); ok {
		t.Fatal("replaced entry must not validate against the old hash")
	}
	got, ok := c.GetTransformed("a.mx", h2, depHashesOf(nil))
	if !ok || got.Code != "two" {
		t.Fatalf("got (%+v, %v)", got, ok)
	}
	if n := c.Stats().TransformedCount; n != 1 {
		t.Fatalf("TransformedCount = %d, want 1", n)
	}
}

func TestCache_InvalidateSinglePath(t *testing.T) {
	c := newTestCache()
	h := project.HashString("x")
	c.PutPreprocessed("a.mx", "pre", h, nil)
	c.PutTransformed("a.mx", fakeResult{}, h, nil)
	c.PutTransformed("b.mx", fakeResult{}, h, nil)

	c.Invalidate("a.mx")

	stats := c.Stats()
	if stats.PreprocessedCount != 0 {
		t.Errorf("PreprocessedCount = %d, want 0", stats.PreprocessedCount)
	}
	if stats.TransformedCount != 1 {
		t.Errorf("TransformedCount = %d, want 1 (b.mx untouched)", stats.TransformedCount)
	}
	if _, ok := c.GetTransformed("b.mx", h, depHashesOf(nil)); !ok {
		t.Error("b.mx must survive invalidate(a.mx)")
	}
}

func TestCache_InvalidateAll(t *testing.T) {
	c := newTestCache()
	h := project.HashString("x")
	c.PutPreprocessed("a.mx", "pre", h, nil)
	c.PutTransformed("a.mx", fakeResult{}, h, nil)

	c.InvalidateAll()

	stats := c.Stats()
	if stats.PreprocessedCount != 0 || stats.TransformedCount != 0 {
		t.Fatalf("stats after InvalidateAll = %+v", stats)
	}
}

func TestCache_DepMapCopied(t *testing.T) {
	c := newTestCache()
	h := project.HashString("x")
	depHash := project.HashString("dep")
	deps := map[string]project.Digest{"b.mx": depHash}
	c.PutTransformed("a.mx", fakeResult{}, h, deps)

	// мутация мапы вызывающего не должна портить entry
	deps["b.mx"] = project.HashString("tampered")

	current := depHashesOf(map[string]project.Digest{"b.mx": depHash})
	if _, ok := c.GetTransformed("a.mx", h, current); !ok {
		t.Fatal("entry corrupted by caller-side map mutation")
	}
}
