package sourcemap

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// Mapper converts byte offsets between the original and the final generated
// text. ok=false means "cannot map": the position falls outside every mapped
// run. Callers treat that as unmappable, never as an error.
type Mapper interface {
	ToOriginal(offset uint32) (uint32, bool)
	ToGenerated(offset uint32) (uint32, bool)
	// IsIdentity reports whether the mapper performs no transformation.
	IsIdentity() bool
}

type identityMapper struct{}

func (identityMapper) ToOriginal(offset uint32) (uint32, bool)  { return offset, true }
func (identityMapper) ToGenerated(offset uint32) (uint32, bool) { return offset, true }
func (identityMapper) IsIdentity() bool                         { return true }

// Identity returns the mapper used when no rewriting occurred.
func Identity() Mapper {
	return identityMapper{}
}

// mapBacked resolves offsets through a composed StageMap using the line
// indexes of both texts.
type mapBacked struct {
	sm      *StageMap
	origIdx []uint32
	origLen uint32
	genIdx  []uint32
	genLen  uint32
	// сегменты в порядке позиций источника, для обратного поиска
	bySrc []srcKeyedSegment
}

// NewMapper builds a map-backed Mapper for a single-source composed map.
// originalContent is the text segment positions refer to (source index 0),
// generatedContent is the final stage output.
func NewMapper(sm *StageMap, originalContent, generatedContent []byte) Mapper {
	if sm == nil {
		return Identity()
	}
	return &mapBacked{
		sm:      sm,
		origIdx: newlineIndex(originalContent),
		origLen: mustLen(originalContent),
		genIdx:  newlineIndex(generatedContent),
		genLen:  mustLen(generatedContent),
		bySrc:   sm.sourceOrdered(),
	}
}

func (m *mapBacked) IsIdentity() bool { return false }

// ToOriginal maps a final-text offset back to the original text.
func (m *mapBacked) ToOriginal(offset uint32) (uint32, bool) {
	if offset > m.genLen {
		return 0, false
	}
	genLine, genCol := posFor(m.genIdx, offset)
	_, srcLine, srcCol, ok := m.sm.lookup(genLine, genCol)
	if !ok {
		return 0, false
	}
	return offFor(m.origIdx, m.origLen, srcLine, srcCol)
}

// ToGenerated maps an original-text offset into the final text: nearest
// preceding segment in source order, with the same residual-carry rule as the
// forward direction.
func (m *mapBacked) ToGenerated(offset uint32) (uint32, bool) {
	if offset > m.origLen || len(m.bySrc) == 0 {
		return 0, false
	}
	srcLine, srcCol := posFor(m.origIdx, offset)
	genLine, genCol, ok := reverseLookup(m.bySrc, srcLine, srcCol)
	if !ok {
		return 0, false
	}
	return offFor(m.genIdx, m.genLen, genLine, genCol)
}

// newlineIndex records the offset of each '\n' in content.
func newlineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/16)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func mustLen(content []byte) uint32 {
	n, err := safecast.Conv[uint32](len(content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// posFor converts a byte offset into 0-based (line, column).
func posFor(idx []uint32, off uint32) (line, col int32) {
	at := sort.Search(len(idx), func(i int) bool { return idx[i] >= off })
	var start uint32
	if at > 0 {
		start = idx[at-1] + 1
	}
	return int32(at), int32(off - start)
}

// offFor converts a 0-based (line, column) back into a byte offset, refusing
// positions past the end of their line (they cannot correspond to real text).
func offFor(idx []uint32, contentLen uint32, line, col int32) (uint32, bool) {
	if line < 0 || col < 0 || int(line) > len(idx) {
		return 0, false
	}
	var start uint32
	if line > 0 {
		start = idx[line-1] + 1
	}
	lineEnd := contentLen
	if int(line) < len(idx) {
		lineEnd = idx[line]
	}
	off := start + uint32(col)
	if off > lineEnd {
		return 0, false
	}
	return off, true
}
