package sourcemap

// Compose chains two stage maps: first maps stage-1 output back to the
// original input, second maps stage-2 output back to stage-1 output. The
// result maps stage-2 output straight to the original input.
//
// Two families of segments make up the result:
//
//   - second's segments pushed through first's forward lookup, so every
//     boundary introduced by stage 2 keeps an original position;
//   - first's segments pushed through second's reverse lookup, so boundaries
//     introduced by stage 1 survive inside stage-2's unmapped runs.
//
// Both directions carry the residual offset within unmapped runs (see
// StageMap.lookup) instead of snapping to segment starts. Segments that land
// before any mapped run on either side have no original position and are
// dropped. A nil map is the identity stage, so Compose(nil, m) == m and
// Compose(m, nil) == m. Composition is associative.
func Compose(first, second *StageMap) *StageMap {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}

	out := NewStageMap(first.Sources...)
	for genLine, line := range second.Lines {
		for _, seg := range line {
			srcIndex, srcLine, srcCol, ok := first.lookup(seg.SrcLine, seg.SrcCol)
			if !ok {
				continue
			}
			out.AddSegmentSource(int32(genLine), seg.GenCol, srcIndex, srcLine, srcCol)
		}
	}

	rev := second.sourceOrdered()
	for preLine, line := range first.Lines {
		for _, seg := range line {
			genLine, genCol, ok := reverseLookup(rev, int32(preLine), seg.GenCol)
			if !ok {
				continue
			}
			out.AddSegmentSource(genLine, genCol, seg.SrcIndex, seg.SrcLine, seg.SrcCol)
		}
	}

	out.dedupLines()
	return out
}

// dedupLines removes duplicate segments sharing a generated column, keeping
// the first occurrence. Composition emits duplicates where both stages agree
// on a boundary.
func (m *StageMap) dedupLines() {
	for lineNo, line := range m.Lines {
		if len(line) < 2 {
			continue
		}
		kept := line[:1]
		for _, seg := range line[1:] {
			if seg.GenCol == kept[len(kept)-1].GenCol {
				continue
			}
			kept = append(kept, seg)
		}
		m.Lines[lineNo] = kept
	}
}
