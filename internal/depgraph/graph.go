// Package depgraph tracks which files a transformation result depends on and
// answers direct and transitive "who depends on X" queries for cache
// invalidation. Paths are interned into dense IDs; both the forward edges and
// the derived reverse index are adjacency lists over those IDs.
package depgraph

import (
	"sort"
	"sync"
)

type pathID uint32

// Graph is safe for concurrent use. Cycles are permitted: every query
// terminates via visited-set guards.
type Graph struct {
	mu    sync.RWMutex
	ids   map[string]pathID
	paths []string   // id -> path
	edges [][]pathID // forward: edges[from] = imports
	rdeps [][]pathID // reverse: rdeps[to] = importers
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{ids: make(map[string]pathID)}
}

// intern возвращает ID пути, создавая его при необходимости. ID не переиспользуются.
func (g *Graph) intern(path string) pathID {
	if id, ok := g.ids[path]; ok {
		return id
	}
	id := pathID(len(g.paths))
	g.ids[path] = id
	g.paths = append(g.paths, path)
	g.edges = append(g.edges, nil)
	g.rdeps = append(g.rdeps, nil)
	return id
}

// SetDependencies replaces the forward edge set of path. Idempotent: calling
// it twice with the same deps leaves the graph unchanged. The reverse index
// is updated only for targets that were added or removed.
func (g *Graph) SetDependencies(path string, deps []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	from := g.intern(path)

	oldSet := make(map[pathID]struct{}, len(g.edges[from]))
	for _, to := range g.edges[from] {
		oldSet[to] = struct{}{}
	}

	newEdges := make([]pathID, 0, len(deps))
	newSet := make(map[pathID]struct{}, len(deps))
	for _, dep := range deps {
		to := g.intern(dep)
		if _, dup := newSet[to]; dup {
			continue
		}
		newSet[to] = struct{}{}
		newEdges = append(newEdges, to)
	}
	sort.Slice(newEdges, func(i, j int) bool { return newEdges[i] < newEdges[j] })
	g.edges[from] = newEdges

	// обновляем обратный индекс только для изменившихся целей
	for to := range oldSet {
		if _, keep := newSet[to]; !keep {
			g.rdeps[to] = removeID(g.rdeps[to], from)
		}
	}
	for to := range newSet {
		if _, had := oldSet[to]; !had {
			g.rdeps[to] = append(g.rdeps[to], from)
		}
	}
}

func removeID(ids []pathID, drop pathID) []pathID {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// Dependencies returns the direct forward edges of path, sorted.
func (g *Graph) Dependencies(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.ids[path]
	if !ok {
		return nil
	}
	return g.toPaths(g.edges[id])
}

// Dependents returns the paths whose current forward edges contain path,
// sorted.
func (g *Graph) Dependents(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.ids[path]
	if !ok {
		return nil
	}
	return g.toPaths(g.rdeps[id])
}

// TransitiveDependents returns the closure of Dependents over the reverse
// index, excluding path itself, sorted. Breadth-first with a visited set, so
// cycles terminate.
func (g *Graph) TransitiveDependents(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	start, ok := g.ids[path]
	if !ok {
		return nil
	}

	visited := map[pathID]struct{}{start: {}}
	queue := append([]pathID(nil), g.rdeps[start]...)
	var closure []pathID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		closure = append(closure, id)
		queue = append(queue, g.rdeps[id]...)
	}
	return g.toPaths(closure)
}

// Reset drops every edge and interned path.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids = make(map[string]pathID)
	g.paths = nil
	g.edges = nil
	g.rdeps = nil
}

func (g *Graph) toPaths(ids []pathID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.paths[id]
	}
	sort.Strings(out)
	return out
}
