package preproc

import (
	"bytes"
	"sort"

	"morph/internal/diag"
	"morph/internal/source"
	"morph/internal/sourcemap"
)

// rewrite is the mutable state one extension pass works on. All rewrites are
// intra-line, so the rewritten text keeps the original line structure and a
// generated line always corresponds to the same original line.
type rewrite struct {
	src  []byte
	mask []bool
	// lineIdx[i] — смещение i-го '\n' в src
	lineIdx []int

	out     bytes.Buffer
	sm      *sourcemap.StageMap
	genLine int32
	genCol  int32
	changed bool
	diags   []diag.Diagnostic
}

func newRewrite(src []byte, path string) *rewrite {
	var lineIdx []int
	for i, c := range src {
		if c == '\n' {
			lineIdx = append(lineIdx, i)
		}
	}
	return &rewrite{
		src:     src,
		mask:    codeMask(src),
		lineIdx: lineIdx,
		sm:      sourcemap.NewStageMap(path),
	}
}

// lineColAt converts a byte offset into original line/column coordinates.
func (rw *rewrite) lineColAt(off int) (int32, int32) {
	n := sort.SearchInts(rw.lineIdx, off)
	if n == 0 {
		return 0, int32(off)
	}
	return int32(n), int32(off - rw.lineIdx[n-1] - 1)
}

// copy emits src[lo:hi] verbatim with a segment at the run start.
func (rw *rewrite) copy(lo, hi int) {
	if lo >= hi {
		return
	}
	srcLine, srcCol := rw.lineColAt(lo)
	rw.sm.AddSegment(rw.genLine, rw.genCol, srcLine, srcCol)
	for _, c := range rw.src[lo:hi] {
		rw.out.WriteByte(c)
		if c == '\n' {
			rw.genLine++
			rw.genCol = 0
		} else {
			rw.genCol++
		}
	}
}

// insert emits synthesized text. It must not contain newlines, as that would
// break the line correspondence invariant.
func (rw *rewrite) insert(s string) {
	rw.changed = true
	rw.out.WriteString(s)
	rw.genCol += int32(len(s))
}

// warn records a diagnostic against original coordinates.
func (rw *rewrite) warn(code diag.Code, lo, hi int, msg string) {
	span := source.Span{Start: uint32(lo), End: uint32(hi)}
	rw.diags = append(rw.diags, diag.New(diag.SevWarning, code, span, msg))
}

// isCode reports whether every byte of src[lo:hi] is plain code.
func (rw *rewrite) isCode(lo, hi int) bool {
	for i := lo; i < hi; i++ {
		if !rw.mask[i] {
			return false
		}
	}
	return true
}

// find returns the next code occurrence of pat at or after from, or -1.
func (rw *rewrite) find(pat []byte, from int) int {
	for from < len(rw.src) {
		n := bytes.Index(rw.src[from:], pat)
		if n < 0 {
			return -1
		}
		at := from + n
		if rw.isCode(at, at+len(pat)) {
			return at
		}
		from = at + 1
	}
	return -1
}
