// Package pipeline orchestrates the per-file transformation: preprocess,
// expand, compose maps, remap diagnostics, and keep the caches and the
// dependency graph honest. Errors inside a file degrade to diagnostics on
// that file; only context cancellation escapes as an error.
package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"morph/internal/cache"
	"morph/internal/depgraph"
	"morph/internal/diag"
	"morph/internal/host"
	"morph/internal/observ"
	"morph/internal/preproc"
	"morph/internal/project"
	"morph/internal/source"
	"morph/internal/sourcemap"
)

// Result is the final outcome for one file. Diagnostics and mapper both speak
// original coordinates.
type Result struct {
	Code    string
	Changed bool
	Diags   []diag.Diagnostic
	Mapper  sourcemap.Mapper
	Deps    []string
	State   State
}

// Config wires a Transformer. Host is required; everything else has a usable
// zero value.
type Config struct {
	Host       host.Host
	Extensions []preproc.Extension
	Expander   Expander // nil => NopExpander
	// Excludes are path prefixes (slash-separated) that must pass through
	// untouched, typically from the manifest.
	Excludes []string
	// Disk enables warm starts across runs; nil disables it.
	Disk  *cache.Disk
	Sink  ProgressSink
	Timer *observ.Timer
}

// Transformer is the explicit pipeline context: all state lives here, nothing
// is global. Safe for concurrent use.
type Transformer struct {
	host     host.Host
	cache    *cache.Cache[preproc.Result, Result]
	disk     *cache.Disk
	graph    *depgraph.Graph
	exts     []preproc.Extension
	expander Expander
	excludes []string
	sink     ProgressSink

	timerMu sync.Mutex
	timer   *observ.Timer

	// одна трансформация на путь в каждый момент времени
	flight singleflight.Group

	cfgDigest project.Digest
}

// New creates a Transformer with empty caches and an empty dependency graph.
func New(cfg Config) *Transformer {
	exp := cfg.Expander
	if exp == nil {
		exp = NopExpander{}
	}
	return &Transformer{
		host:      cfg.Host,
		cache:     cache.New[preproc.Result, Result](),
		disk:      cfg.Disk,
		graph:     depgraph.New(),
		exts:      cfg.Extensions,
		expander:  exp,
		excludes:  cfg.Excludes,
		sink:      cfg.Sink,
		timer:     cfg.Timer,
		cfgDigest: configDigest(cfg.Extensions),
	}
}

// Graph exposes the dependency graph (read by the IDE adapter and the CLI).
func (t *Transformer) Graph() *depgraph.Graph { return t.graph }

// Host returns the host the transformer reads through.
func (t *Transformer) Host() host.Host { return t.host }

// Extensions returns the configured extension list.
func (t *Transformer) Extensions() []preproc.Extension { return t.exts }

// ShouldTransform is the fast filter: declaration files, vendor paths and
// configured excludes pass through without touching the cache.
func (t *Transformer) ShouldTransform(path string) bool {
	p := filepath.ToSlash(path)
	if !strings.HasSuffix(p, ".mx") || strings.HasSuffix(p, ".d.mx") {
		return false
	}
	for _, el := range strings.Split(p, "/") {
		if el == "vendor" {
			return false
		}
	}
	for _, prefix := range t.excludes {
		if prefix != "" && strings.HasPrefix(p, prefix) {
			return false
		}
	}
	return true
}

// Transform runs the pipeline for one file. Concurrent calls for the same
// path collapse into a single computation; all callers get its result.
func (t *Transformer) Transform(ctx context.Context, path string) Result {
	v, _, _ := t.flight.Do(path, func() (any, error) {
		return t.transform(ctx, path), nil
	})
	return v.(Result)
}

func (t *Transformer) transform(ctx context.Context, path string) Result {
	if !t.ShouldTransform(path) {
		text, _ := t.host.ReadFile(path)
		return Result{Code: text, Mapper: sourcemap.Identity(), State: StateNotStarted}
	}

	text, ok := t.host.ReadFile(path)
	if !ok {
		t.emit(path, StateFailed, StatusError, nil, 0)
		return Result{
			Diags:  []diag.Diagnostic{diag.NewWholeFile(diag.SevError, diag.PipeFileNotFound, path+" not found")},
			Mapper: sourcemap.Identity(),
			State:  StateFailed,
		}
	}
	// Offsets everywhere downstream are relative to normalized content;
	// FileSet.Load applies the same normalization when resolving spans.
	content := source.Normalize([]byte(text))
	hash := project.HashContent(content)
	depHash := t.depHashFunc()

	if res, hit := t.cache.GetTransformed(path, hash, depHash); hit {
		t.emit(path, StateCached, StatusDone, nil, 0)
		return res
	}
	if res, depHashes, hit := t.fromDisk(path, content, hash, depHash); hit {
		t.cache.PutTransformed(path, res, hash, depHashes)
		t.emit(path, StateCached, StatusDone, nil, 0)
		return res
	}

	start := time.Now()
	t.emit(path, StatePreprocessing, StatusWorking, nil, 0)
	done := t.phase("preprocess " + path)
	pre := t.preprocess(path, content, hash)
	done("")
	t.emit(path, StatePreprocessing, StatusDone, nil, time.Since(start))

	expStart := time.Now()
	t.emit(path, StateExpanding, StatusWorking, nil, 0)
	done = t.phase("expand " + path)
	exp, err := t.expander.Expand(ctx, pre.Code, path)
	done("")
	if err != nil {
		// сбой экспандера деградирует до диагностики на файле (никогда не
		// роняет весь прогон)
		t.emit(path, StateFailed, StatusError, err, time.Since(expStart))
		return Result{
			Code:   string(content),
			Diags:  append(pre.Diags, diag.NewWholeFile(diag.SevError, diag.ExpFailed, "expansion failed: "+err.Error())),
			Mapper: sourcemap.Identity(),
			State:  StateFailed,
		}
	}
	t.emit(path, StateExpanding, StatusDone, nil, time.Since(expStart))

	compStart := time.Now()
	t.emit(path, StateComposing, StatusWorking, nil, 0)
	composed := sourcemap.Compose(pre.Map, exp.Map)
	mapper := sourcemap.NewMapper(composed, content, exp.Code)

	diags := append([]diag.Diagnostic(nil), pre.Diags...)
	diags = append(diags, remapDiags(exp.Diags, sourcemap.NewMapper(pre.Map, content, pre.Code))...)

	res := Result{
		Code:    string(exp.Code),
		Changed: pre.Changed || !bytes.Equal(exp.Code, pre.Code),
		Diags:   diags,
		Mapper:  mapper,
		Deps:    append([]string(nil), exp.Imports...),
		State:   StateCached,
	}
	t.emit(path, StateComposing, StatusDone, nil, time.Since(compStart))

	t.graph.SetDependencies(path, exp.Imports)
	depHashes := make(map[string]project.Digest, len(exp.Imports))
	for _, dep := range exp.Imports {
		d, _ := depHash(dep)
		depHashes[dep] = d
	}
	t.cache.PutTransformed(path, res, hash, depHashes)
	t.toDisk(path, hash, res, composed, depHashes)
	t.emit(path, StateCached, StatusDone, nil, time.Since(start))
	return res
}

// preprocess consults the preprocessed cache first. The rewrite is a pure
// function of content, so no dependency hashes are recorded.
func (t *Transformer) preprocess(path string, content []byte, hash project.Digest) preproc.Result {
	if pre, hit := t.cache.GetPreprocessed(path, hash, nil); hit {
		return pre
	}
	pre := preproc.Preprocess(content, path, t.exts)
	t.cache.PutPreprocessed(path, pre, hash, nil)
	return pre
}

// remapDiags moves diagnostics from preprocessed coordinates back to original
// ones. Positions the map cannot express keep their message unpositioned,
// except Info diagnostics, which are dropped entirely.
func remapDiags(in []diag.Diagnostic, m sourcemap.Mapper) []diag.Diagnostic {
	if len(in) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, 0, len(in))
	for _, d := range in {
		if !d.Positioned || m.IsIdentity() {
			out = append(out, d)
			continue
		}
		lo, okLo := m.ToOriginal(d.Span.Start)
		hi, okHi := m.ToOriginal(d.Span.End)
		if okLo && okHi && lo <= hi {
			d.Span.Start, d.Span.End = lo, hi
			out = append(out, d)
			continue
		}
		if d.Severity == diag.SevInfo {
			continue
		}
		out = append(out, d.WithoutPosition())
	}
	return out
}

// depHashFunc returns a per-call memoized dependency hash supplier. Not safe
// for concurrent use; every transform call builds its own.
func (t *Transformer) depHashFunc() cache.DepHashFunc {
	type memoEntry struct {
		d  project.Digest
		ok bool
	}
	memo := make(map[string]memoEntry)
	return func(path string) (project.Digest, bool) {
		if e, seen := memo[path]; seen {
			return e.d, e.ok
		}
		text, ok := t.host.ReadFile(path)
		var d project.Digest
		if ok {
			d = project.HashString(text)
		}
		memo[path] = memoEntry{d: d, ok: ok}
		return d, ok
	}
}

func (t *Transformer) emit(file string, state State, status Status, err error, elapsed time.Duration) {
	if t.sink == nil {
		return
	}
	t.sink.OnEvent(Event{File: file, State: state, Status: status, Err: err, Elapsed: elapsed})
}

// phase opens a timer phase and returns its closer. No-op without a timer.
func (t *Transformer) phase(name string) func(note string) {
	if t.timer == nil {
		return func(string) {}
	}
	t.timerMu.Lock()
	idx := t.timer.Begin(name)
	t.timerMu.Unlock()
	return func(note string) {
		t.timerMu.Lock()
		t.timer.End(idx, note)
		t.timerMu.Unlock()
	}
}

// configDigest distinguishes disk entries produced under different extension
// lists. Order matters: extensions apply sequentially.
func configDigest(exts []preproc.Extension) project.Digest {
	names := make([]string, len(exts))
	for i, e := range exts {
		names[i] = e.String()
	}
	return project.HashString(strings.Join(names, ","))
}

func (t *Transformer) diskKey(path string, hash project.Digest) project.Digest {
	return project.Combine(hash, project.HashString(path), t.cfgDigest)
}

// fromDisk revalidates a warm-start payload against current hashes. A payload
// whose stored map fails to decode is still served, with the mapper degraded
// to identity and a warning attached.
func (t *Transformer) fromDisk(path string, content []byte, hash project.Digest, depHash cache.DepHashFunc) (Result, map[string]project.Digest, bool) {
	if t.disk == nil {
		return Result{}, nil, false
	}
	var payload cache.DiskPayload
	hit, err := t.disk.Get(t.diskKey(path, hash), &payload)
	if err != nil || !hit {
		return Result{}, nil, false
	}
	if payload.ContentHash != hash || len(payload.DepPaths) != len(payload.DepHashes) {
		return Result{}, nil, false
	}
	depHashes := make(map[string]project.Digest, len(payload.DepPaths))
	for i, dep := range payload.DepPaths {
		current, ok := depHash(dep)
		if !ok || current != payload.DepHashes[i] {
			return Result{}, nil, false
		}
		depHashes[dep] = payload.DepHashes[i]
	}

	res := Result{
		Code:    payload.Code,
		Changed: payload.Changed,
		Diags:   payload.Diagnostics,
		Mapper:  sourcemap.Identity(),
		Deps:    payload.Imports,
		State:   StateCached,
	}
	if payload.HasMap {
		sm, decErr := sourcemap.Decode(payload.Map)
		if decErr != nil {
			res.Diags = append(res.Diags, diag.NewWholeFile(diag.SevWarning, diag.PipeMapDegraded,
				"cached position map is unreadable; falling back to identity mapping"))
		} else {
			res.Mapper = sourcemap.NewMapper(sm, content, []byte(payload.Code))
		}
	}
	t.graph.SetDependencies(path, payload.Imports)
	return res, depHashes, true
}

func (t *Transformer) toDisk(path string, hash project.Digest, res Result, composed *sourcemap.StageMap, depHashes map[string]project.Digest) {
	if t.disk == nil {
		return
	}
	depPaths := make([]string, 0, len(depHashes))
	for dep := range depHashes {
		depPaths = append(depPaths, dep)
	}
	sort.Strings(depPaths)
	hashes := make([]project.Digest, len(depPaths))
	for i, dep := range depPaths {
		hashes[i] = depHashes[dep]
	}
	payload := cache.DiskPayload{
		Path:        path,
		ContentHash: hash,
		DepPaths:    depPaths,
		DepHashes:   hashes,
		Code:        res.Code,
		Changed:     res.Changed,
		Diagnostics: res.Diags,
		Imports:     res.Deps,
	}
	if composed != nil {
		payload.HasMap = true
		payload.Map = composed.Encode()
	}
	// ошибка записи на диск не влияет на результат прогона
	_ = t.disk.Put(t.diskKey(path, hash), &payload)
}
