package pipeline

import (
	"context"

	"morph/internal/diag"
	"morph/internal/sourcemap"
)

// ExpandResult is what an expander hands back for one file.
type ExpandResult struct {
	Code []byte
	// Map translates expanded positions to preprocessed positions; nil means
	// the expander did not move anything.
	Map *sourcemap.StageMap
	// Diags are positioned in preprocessed coordinates; the orchestrator
	// remaps them before they reach the user.
	Diags []diag.Diagnostic
	// Imports are the paths this file depends on, as resolved by the
	// expander. They feed the dependency graph.
	Imports []string
}

// Expander is the opaque second stage of the pipeline: macro expansion, code
// generation, anything that rewrites preprocessed code further. The
// orchestrator treats its failure as a per-file diagnostic, never as a run
// failure.
type Expander interface {
	Expand(ctx context.Context, code []byte, path string) (ExpandResult, error)
}

// NopExpander passes code through untouched. Used by tooling that only wants
// the syntax-extension rewrite.
type NopExpander struct{}

func (NopExpander) Expand(_ context.Context, code []byte, _ string) (ExpandResult, error) {
	return ExpandResult{Code: code}, nil
}
