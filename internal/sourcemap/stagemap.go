// Package sourcemap models positional correspondences between the input and
// output of linear rewrite stages: per-line segment lists, composition of
// stages into one end-to-end map, offset mappers over the result, and the
// conventional VLQ interchange encoding.
package sourcemap

import (
	"sort"
)

// Segment ties one generated position to one source position.
// Lines and columns are 0-based byte positions within their line.
type Segment struct {
	GenCol   int32 // колонка в generated-строке
	SrcIndex int32 // индекс в Sources
	SrcLine  int32
	SrcCol   int32
}

// StageMap is the decoded positional mapping of a single rewrite stage.
// Lines[g] holds the segments of generated line g, sorted by GenCol ascending.
// A nil *StageMap means the stage performed no rewriting (identity).
type StageMap struct {
	Sources []string
	Lines   [][]Segment
}

// NewStageMap creates an empty map over the given source names.
func NewStageMap(sources ...string) *StageMap {
	return &StageMap{Sources: sources}
}

// AddSegment records a mapping for source 0. Most stages rewrite a single
// file, so this is the common form.
func (m *StageMap) AddSegment(genLine, genCol, srcLine, srcCol int32) {
	m.AddSegmentSource(genLine, genCol, 0, srcLine, srcCol)
}

// AddSegmentSource records a mapping, keeping segments within the line sorted
// by GenCol. Appends are O(1) when callers emit in generated order.
func (m *StageMap) AddSegmentSource(genLine, genCol, srcIndex, srcLine, srcCol int32) {
	if genLine < 0 || genCol < 0 {
		return
	}
	for int32(len(m.Lines)) <= genLine {
		m.Lines = append(m.Lines, nil)
	}
	line := m.Lines[genLine]
	seg := Segment{GenCol: genCol, SrcIndex: srcIndex, SrcLine: srcLine, SrcCol: srcCol}
	if n := len(line); n == 0 || line[n-1].GenCol <= genCol {
		m.Lines[genLine] = append(line, seg)
		return
	}
	// редкий случай: вставка с сохранением сортировки
	at := sort.Search(len(line), func(i int) bool { return line[i].GenCol > genCol })
	line = append(line, Segment{})
	copy(line[at+1:], line[at:])
	line[at] = seg
	m.Lines[genLine] = line
}

// SegmentCount returns the total number of segments across all lines.
func (m *StageMap) SegmentCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, line := range m.Lines {
		n += len(line)
	}
	return n
}

// lookup finds the source position for a generated (line, col), carrying the
// residual offset through the unmapped run after the nearest preceding
// segment. Linear rewrites copy text verbatim between segments, so within the
// segment's generated line the column delta is added to the source column, and
// on following generated lines the line delta is added to the source line
// while the column is taken as-is.
func (m *StageMap) lookup(genLine, genCol int32) (srcIndex, srcLine, srcCol int32, ok bool) {
	if m == nil {
		return 0, genLine, genCol, true
	}
	segLine, seg, found := m.precedingSegment(genLine, genCol)
	if !found {
		return 0, 0, 0, false
	}
	if segLine == genLine {
		return seg.SrcIndex, seg.SrcLine, seg.SrcCol + (genCol - seg.GenCol), true
	}
	return seg.SrcIndex, seg.SrcLine + (genLine - segLine), genCol, true
}

// srcKeyedSegment is a segment keyed by its source position, used for the
// reverse direction (source back into generated space).
type srcKeyedSegment struct {
	srcLine, srcCol int32
	genLine, genCol int32
}

// sourceOrdered returns the segments of source index 0 sorted by source
// position. Stage maps describe one rewrite of one file, so index 0 is the
// whole story for the reverse direction.
func (m *StageMap) sourceOrdered() []srcKeyedSegment {
	if m == nil {
		return nil
	}
	out := make([]srcKeyedSegment, 0, m.SegmentCount())
	for genLine, line := range m.Lines {
		for _, seg := range line {
			if seg.SrcIndex != 0 {
				continue
			}
			out = append(out, srcKeyedSegment{
				srcLine: seg.SrcLine, srcCol: seg.SrcCol,
				genLine: int32(genLine), genCol: seg.GenCol,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.srcLine != b.srcLine {
			return a.srcLine < b.srcLine
		}
		return a.srcCol < b.srcCol
	})
	return out
}

// reverseLookup maps a source (line, col) into generated space through the
// nearest preceding segment in source order, carrying the residual offset the
// same way as the forward lookup.
func reverseLookup(segs []srcKeyedSegment, srcLine, srcCol int32) (genLine, genCol int32, ok bool) {
	at := sort.Search(len(segs), func(i int) bool {
		s := segs[i]
		if s.srcLine != srcLine {
			return s.srcLine > srcLine
		}
		return s.srcCol > srcCol
	})
	if at == 0 {
		return 0, 0, false
	}
	seg := segs[at-1]
	if seg.srcLine == srcLine {
		return seg.genLine, seg.genCol + (srcCol - seg.srcCol), true
	}
	return seg.genLine + (srcLine - seg.srcLine), srcCol, true
}

// precedingSegment returns the nearest segment at or before (genLine, genCol)
// in generated order, together with the line it sits on.
func (m *StageMap) precedingSegment(genLine, genCol int32) (int32, Segment, bool) {
	if genLine < 0 {
		return 0, Segment{}, false
	}
	scan := genLine
	if int32(len(m.Lines)) <= scan {
		scan = int32(len(m.Lines)) - 1
	}
	for ; scan >= 0; scan-- {
		line := m.Lines[scan]
		if len(line) == 0 {
			continue
		}
		if scan < genLine {
			return scan, line[len(line)-1], true
		}
		// бинпоиск: последний сегмент с GenCol <= genCol
		at := sort.Search(len(line), func(i int) bool { return line[i].GenCol > genCol })
		if at == 0 {
			continue
		}
		return scan, line[at-1], true
	}
	return 0, Segment{}, false
}
