package ide

import (
	"context"

	"morph/internal/diag"
	"morph/internal/pipeline"
	"morph/internal/project"
)

// Adapter implements ScriptHost over a Transformer and proxies LanguageService
// queries so callers keep working in original coordinates.
//
// Version tokens double as the cancellation boundary: the adapter snapshots
// the token before delegating and discards the response when the document
// changed mid-request. A stale answer is worse than no answer.
type Adapter struct {
	tr  *pipeline.Transformer
	svc LanguageService
}

var _ ScriptHost = (*Adapter)(nil)

// NewAdapter wraps a transformer and an optional language service.
func NewAdapter(tr *pipeline.Transformer, svc LanguageService) *Adapter {
	return &Adapter{tr: tr, svc: svc}
}

func (a *Adapter) transform(path string) pipeline.Result {
	return a.tr.Transform(context.Background(), path)
}

// ScriptText returns the transformed code for path. The wrapped service must
// never see original text: its coordinates would not match ours.
func (a *Adapter) ScriptText(path string) string {
	return a.transform(path).Code
}

// ScriptVersion derives the token from the transformed content, so it changes
// exactly when the service-visible text changes and the service's own caches
// invalidate correctly.
func (a *Adapter) ScriptVersion(path string) string {
	return project.HashString(a.transform(path).Code).Hex()
}

// Diagnostics returns the pipeline's own findings plus the service's
// syntactic and semantic ones, all in original coordinates. Service entries
// whose position cannot be mapped back are dropped.
func (a *Adapter) Diagnostics(path string) []diag.Diagnostic {
	res := a.transform(path)
	out := append([]diag.Diagnostic(nil), res.Diags...)
	if a.svc == nil {
		return out
	}
	version := a.ScriptVersion(path)
	svcDiags := append(a.svc.SyntacticDiagnostics(path), a.svc.SemanticDiagnostics(path)...)
	if a.ScriptVersion(path) != version {
		return out
	}
	for _, d := range svcDiags {
		if !d.Positioned {
			out = append(out, d)
			continue
		}
		lo, okLo := res.Mapper.ToOriginal(d.Span.Start)
		hi, okHi := res.Mapper.ToOriginal(d.Span.End)
		if !okLo || !okHi || lo > hi {
			continue
		}
		d.Span.Start, d.Span.End = lo, hi
		out = append(out, d)
	}
	return out
}

// CompletionsAt proxies a completion query at an original offset.
func (a *Adapter) CompletionsAt(path string, offset uint32) []CompletionItem {
	if a.svc == nil {
		return nil
	}
	res := a.transform(path)
	genOff, ok := res.Mapper.ToGenerated(offset)
	if !ok {
		return nil
	}
	version := a.ScriptVersion(path)
	items := a.svc.CompletionsAt(path, genOff)
	if a.ScriptVersion(path) != version {
		return nil
	}
	out := make([]CompletionItem, 0, len(items))
	for _, item := range items {
		orig, ok := res.Mapper.ToOriginal(item.Offset)
		if !ok {
			continue
		}
		item.Offset = orig
		out = append(out, item)
	}
	return out
}

// QuickInfoAt proxies a hover query at an original offset.
func (a *Adapter) QuickInfoAt(path string, offset uint32) (QuickInfo, bool) {
	if a.svc == nil {
		return QuickInfo{}, false
	}
	res := a.transform(path)
	genOff, ok := res.Mapper.ToGenerated(offset)
	if !ok {
		return QuickInfo{}, false
	}
	version := a.ScriptVersion(path)
	info, ok := a.svc.QuickInfoAt(path, genOff)
	if !ok || a.ScriptVersion(path) != version {
		return QuickInfo{}, false
	}
	lo, okLo := res.Mapper.ToOriginal(info.Start)
	hi, okHi := res.Mapper.ToOriginal(info.End)
	if !okLo || !okHi || lo > hi {
		return QuickInfo{}, false
	}
	info.Start, info.End = lo, hi
	return info, true
}

// DefinitionAt proxies a go-to-definition query. Entries may land in other
// files; each one is mapped through its own file's mapper.
func (a *Adapter) DefinitionAt(path string, offset uint32) []DefinitionEntry {
	if a.svc == nil {
		return nil
	}
	res := a.transform(path)
	genOff, ok := res.Mapper.ToGenerated(offset)
	if !ok {
		return nil
	}
	version := a.ScriptVersion(path)
	entries := a.svc.DefinitionAt(path, genOff)
	if a.ScriptVersion(path) != version {
		return nil
	}
	out := make([]DefinitionEntry, 0, len(entries))
	for _, entry := range entries {
		mapper := res.Mapper
		if entry.Path != path {
			mapper = a.transform(entry.Path).Mapper
		}
		lo, okLo := mapper.ToOriginal(entry.Start)
		hi, okHi := mapper.ToOriginal(entry.End)
		if !okLo || !okHi || lo > hi {
			continue
		}
		entry.Start, entry.End = lo, hi
		out = append(out, entry)
	}
	return out
}
