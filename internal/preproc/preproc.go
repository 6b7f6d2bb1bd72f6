package preproc

import (
	"morph/internal/diag"
	"morph/internal/sourcemap"
)

// Result is the outcome of one preprocessing run.
type Result struct {
	// Code is the rewritten text; aliases the input when Changed is false.
	Code []byte
	// Map is the composed stage map, nil when Changed is false.
	Map     *sourcemap.StageMap
	Changed bool
	// Diags are positioned in original coordinates (or unpositioned when a
	// later pass's position could not be mapped back).
	Diags []diag.Diagnostic
}

// Preprocess applies the enabled extensions in order, composing their stage
// maps so the final map goes from last-stage output straight to the original
// text. The function is pure: identical content and extensions always produce
// byte-identical output.
func Preprocess(content []byte, path string, exts []Extension) Result {
	cur := content
	var accum *sourcemap.StageMap
	var diags []diag.Diagnostic
	changed := false

	for _, e := range exts {
		if !e.triggered(cur) {
			continue
		}
		rw := newRewrite(cur, path)
		rewriters[e].rewrite(rw)

		// диагностики этого прохода — в координатах cur; переносим в оригинал
		passDiags := rw.diags
		if accum != nil && len(passDiags) > 0 {
			m := sourcemap.NewMapper(accum, content, cur)
			for i, d := range passDiags {
				if !d.Positioned {
					continue
				}
				lo, okLo := m.ToOriginal(d.Span.Start)
				hi, okHi := m.ToOriginal(d.Span.End)
				if okLo && okHi && lo <= hi {
					passDiags[i].Span.Start = lo
					passDiags[i].Span.End = hi
				} else {
					passDiags[i] = d.WithoutPosition()
				}
			}
		}
		diags = append(diags, passDiags...)

		if !rw.changed {
			continue
		}
		cur = rw.out.Bytes()
		accum = sourcemap.Compose(accum, rw.sm)
		changed = true
	}

	if !changed {
		return Result{Code: content, Diags: diags}
	}
	return Result{Code: cur, Map: accum, Changed: true, Diags: diags}
}
