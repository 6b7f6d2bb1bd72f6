// Package ide bridges editor tooling onto the transformation pipeline. The
// underlying language service only ever sees transformed code; the adapter
// translates every offset crossing the boundary, in both directions.
package ide

import "morph/internal/diag"

// ScriptHost is the document surface an editor-facing service reads from.
// Versions are opaque tokens: a new token means the document changed.
type ScriptHost interface {
	ScriptText(path string) string
	ScriptVersion(path string) string
}

// CompletionItem is one completion, positioned by byte offset.
type CompletionItem struct {
	Label  string
	Detail string
	Offset uint32
}

// QuickInfo is hover-style information for a byte range.
type QuickInfo struct {
	Text  string
	Start uint32
	End   uint32
}

// DefinitionEntry points at a declaration site.
type DefinitionEntry struct {
	Path  string
	Start uint32
	End   uint32
}

// LanguageService answers queries against transformed code: every offset it
// receives and returns lives in generated space.
type LanguageService interface {
	SyntacticDiagnostics(path string) []diag.Diagnostic
	SemanticDiagnostics(path string) []diag.Diagnostic
	CompletionsAt(path string, offset uint32) []CompletionItem
	QuickInfoAt(path string, offset uint32) (QuickInfo, bool)
	DefinitionAt(path string, offset uint32) []DefinitionEntry
}
