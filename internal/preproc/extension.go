// Package preproc rewrites custom syntax extensions into standard syntax and
// records a stage map from rewritten offsets back to original ones.
//
// The set of extensions is a closed, tagged enumeration: dispatch goes through
// a fixed strategy table, never through runtime string matching. Every
// rewriter is a pure function of its input, so identical inputs always yield
// byte-identical output (required for cache-hit determinism).
package preproc

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Extension identifies one supported syntax extension.
type Extension uint8

const (
	// ExtPipeline rewrites `lhs |> fn` into `fn(lhs)`.
	ExtPipeline Extension = iota
	// ExtBind rewrites `recv::method` into `method.bind(recv)`.
	ExtBind

	extCount
)

func (e Extension) String() string {
	switch e {
	case ExtPipeline:
		return "pipeline"
	case ExtBind:
		return "bind"
	}
	return fmt.Sprintf("extension(%d)", uint8(e))
}

// ParseExtension resolves a manifest name into an Extension.
func ParseExtension(name string) (Extension, error) {
	switch name {
	case "pipeline":
		return ExtPipeline, nil
	case "bind":
		return ExtBind, nil
	}
	return 0, fmt.Errorf("unknown syntax extension %q (known: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the known extension names, sorted.
func Names() []string {
	names := make([]string, 0, extCount)
	for e := Extension(0); e < extCount; e++ {
		names = append(names, e.String())
	}
	sort.Strings(names)
	return names
}

// rewriter is the uniform per-extension contract.
type rewriter struct {
	// trigger is the byte pattern whose absence lets Preprocess skip the
	// extension without scanning.
	trigger []byte
	// rewrite runs the full scan. It must be pure.
	rewrite func(rw *rewrite)
}

// таблица стратегий; индекс — значение Extension
var rewriters = [extCount]rewriter{
	ExtPipeline: {trigger: []byte("|>"), rewrite: rewritePipeline},
	ExtBind:     {trigger: []byte("::"), rewrite: rewriteBind},
}

// triggered reports whether content can possibly contain the construct.
func (e Extension) triggered(content []byte) bool {
	return bytes.Contains(content, rewriters[e].trigger)
}
