package sourcemap

import (
	"fmt"
	"strings"
)

// RawMap is the interchange form of a StageMap: the conventional source-map
// JSON fields with a base64-VLQ mappings string.
type RawMap struct {
	Version  int      `json:"version"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// Encode serializes the map into interchange form. A nil map encodes to an
// empty mappings string.
func (m *StageMap) Encode() RawMap {
	raw := RawMap{Version: 3, Names: []string{}}
	if m == nil {
		raw.Sources = []string{}
		return raw
	}
	raw.Sources = append([]string{}, m.Sources...)

	var b strings.Builder
	var prevSrcIndex, prevSrcLine, prevSrcCol int32
	for lineNo, line := range m.Lines {
		if lineNo > 0 {
			b.WriteByte(';')
		}
		prevGenCol := int32(0) // сбрасывается на каждой строке
		for segNo, seg := range line {
			if segNo > 0 {
				b.WriteByte(',')
			}
			appendVLQ(&b, seg.GenCol-prevGenCol)
			appendVLQ(&b, seg.SrcIndex-prevSrcIndex)
			appendVLQ(&b, seg.SrcLine-prevSrcLine)
			appendVLQ(&b, seg.SrcCol-prevSrcCol)
			prevGenCol = seg.GenCol
			prevSrcIndex = seg.SrcIndex
			prevSrcLine = seg.SrcLine
			prevSrcCol = seg.SrcCol
		}
	}
	raw.Mappings = b.String()
	return raw
}

// Decode parses an interchange map back into segment-list form.
// Segments without source fields (1-field form) carry no positional
// information and are skipped. Malformed input yields an error; callers
// degrade to an identity mapping rather than failing the transform.
func Decode(raw RawMap) (*StageMap, error) {
	if raw.Version != 3 {
		return nil, fmt.Errorf("unsupported source map version %d", raw.Version)
	}
	m := NewStageMap(raw.Sources...)
	if raw.Mappings == "" {
		return m, nil
	}

	var genLine, prevSrcIndex, prevSrcLine, prevSrcCol int32
	prevGenCol := int32(0)
	pos := 0
	segStart := true
	for pos < len(raw.Mappings) {
		switch raw.Mappings[pos] {
		case ';':
			genLine++
			prevGenCol = 0
			pos++
			segStart = true
			continue
		case ',':
			pos++
			segStart = true
			continue
		}
		if !segStart {
			return nil, fmt.Errorf("mappings: expected separator at %d", pos)
		}
		segStart = false

		fields := make([]int32, 0, 5)
		for pos < len(raw.Mappings) && raw.Mappings[pos] != ';' && raw.Mappings[pos] != ',' {
			v, next, err := decodeVLQ(raw.Mappings, pos)
			if err != nil {
				return nil, fmt.Errorf("mappings at %d: %w", pos, err)
			}
			fields = append(fields, v)
			pos = next
			if len(fields) > 5 {
				return nil, fmt.Errorf("mappings at %d: segment has too many fields", pos)
			}
		}
		switch len(fields) {
		case 1:
			// generated-only segment, позиции источника нет
			prevGenCol += fields[0]
		case 4, 5:
			prevGenCol += fields[0]
			prevSrcIndex += fields[1]
			prevSrcLine += fields[2]
			prevSrcCol += fields[3]
			if prevSrcIndex < 0 || int(prevSrcIndex) >= len(raw.Sources) {
				return nil, fmt.Errorf("mappings: source index %d out of range", prevSrcIndex)
			}
			if prevGenCol < 0 || prevSrcLine < 0 || prevSrcCol < 0 {
				return nil, fmt.Errorf("mappings: negative position after delta")
			}
			m.AddSegmentSource(genLine, prevGenCol, prevSrcIndex, prevSrcLine, prevSrcCol)
		default:
			return nil, fmt.Errorf("mappings: segment has %d fields", len(fields))
		}
	}
	return m, nil
}
