package sourcemap

import (
	"testing"
)

func TestRaw_EncodeDecodeRoundTrip(t *testing.T) {
	m := NewStageMap("a.mx", "b.mx")
	m.AddSegmentSource(0, 0, 0, 0, 0)
	m.AddSegmentSource(0, 12, 0, 0, 7)
	m.AddSegmentSource(1, 3, 1, 4, 2)
	m.AddSegmentSource(3, 1, 0, 5, 9)

	raw := m.Encode()
	if raw.Version != 3 {
		t.Fatalf("version = %d, want 3", raw.Version)
	}
	back, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(back.Sources) != 2 || back.Sources[0] != "a.mx" {
		t.Fatalf("sources = %v", back.Sources)
	}
	if back.SegmentCount() != m.SegmentCount() {
		t.Fatalf("segment count = %d, want %d", back.SegmentCount(), m.SegmentCount())
	}
	for lineNo := range m.Lines {
		for segNo, seg := range m.Lines[lineNo] {
			got := back.Lines[lineNo][segNo]
			if got != seg {
				t.Errorf("line %d seg %d = %+v, want %+v", lineNo, segNo, got, seg)
			}
		}
	}
}

func TestRaw_EncodeNil(t *testing.T) {
	var m *StageMap
	raw := m.Encode()
	if raw.Mappings != "" || raw.Version != 3 {
		t.Fatalf("nil map encoded to %+v", raw)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  RawMap
	}{
		{name: "bad version", raw: RawMap{Version: 2}},
		{name: "invalid vlq", raw: RawMap{Version: 3, Sources: []string{"a"}, Mappings: "!"}},
		{name: "bad field count", raw: RawMap{Version: 3, Sources: []string{"a"}, Mappings: "AA"}},
		{name: "source index out of range", raw: RawMap{Version: 3, Sources: []string{}, Mappings: "AAAA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.raw); err == nil {
				t.Errorf("Decode(%q) succeeded, want error", tt.raw.Mappings)
			}
		})
	}
}

func TestDecode_SkipsGeneratedOnlySegments(t *testing.T) {
	// "A" — сегмент из одного поля, без позиции источника
	m, err := Decode(RawMap{Version: 3, Sources: []string{"a"}, Mappings: "A,AAAA"})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.SegmentCount() != 1 {
		t.Fatalf("segment count = %d, want 1", m.SegmentCount())
	}
}

func TestDecode_EmptyMappings(t *testing.T) {
	m, err := Decode(RawMap{Version: 3, Sources: []string{"a"}})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.SegmentCount() != 0 {
		t.Fatalf("segment count = %d, want 0", m.SegmentCount())
	}
}
