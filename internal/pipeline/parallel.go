package pipeline

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// TransformAll transforms every path with at most jobs files in flight
// (jobs<=0 means GOMAXPROCS). Results are deterministic regardless of
// scheduling: each file's outcome depends only on its own content and
// dependencies. The only error it can return is context cancellation.
func (t *Transformer) TransformAll(ctx context.Context, paths []string, jobs int) (map[string]Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	if len(sorted) == 0 {
		return map[string]Result{}, nil
	}

	// индекс на горутину уникален, мьютекс не нужен
	results := make([]Result, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(sorted)))
	for i, path := range sorted {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = t.Transform(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Result, len(sorted))
	for i, path := range sorted {
		out[path] = results[i]
	}
	return out, nil
}
