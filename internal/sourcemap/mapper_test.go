package sourcemap

import (
	"testing"
)

func TestIdentityMapper(t *testing.T) {
	m := Identity()
	if !m.IsIdentity() {
		t.Fatal("Identity() must report IsIdentity")
	}
	for _, off := range []uint32{0, 1, 99, 100000} {
		if got, ok := m.ToOriginal(off); !ok || got != off {
			t.Errorf("ToOriginal(%d) = (%d,%v)", off, got, ok)
		}
		if got, ok := m.ToGenerated(off); !ok || got != off {
			t.Errorf("ToGenerated(%d) = (%d,%v)", off, got, ok)
		}
	}
}

func TestNewMapper_NilMapIsIdentity(t *testing.T) {
	m := NewMapper(nil, []byte("abc"), []byte("abc"))
	if !m.IsIdentity() {
		t.Fatal("nil stage map must degrade to identity")
	}
}

func TestMapper_SingleLineInsertion(t *testing.T) {
	// original: "const r = 1 ~ f;"  generated: "const r = pipe(1, f);"
	original := []byte("ab XX cd")
	generated := []byte("ab YYYY cd")
	// префикс не тронут, хвост сдвинут на +2
	sm := NewStageMap("a.mx")
	sm.AddSegment(0, 0, 0, 0)
	sm.AddSegment(0, 8, 0, 6) // "cd" в generated на колонке 8, в original на 6

	m := NewMapper(sm, original, generated)
	if m.IsIdentity() {
		t.Fatal("map-backed mapper must not be identity")
	}

	tests := []struct {
		name   string
		gen    uint32
		orig   uint32
		wantOK bool
	}{
		{name: "start", gen: 0, orig: 0, wantOK: true},
		{name: "prefix", gen: 2, orig: 2, wantOK: true},
		{name: "tail start", gen: 8, orig: 6, wantOK: true},
		{name: "tail end", gen: 9, orig: 7, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.ToOriginal(tt.gen)
			if ok != tt.wantOK {
				t.Fatalf("ToOriginal(%d) ok = %v, want %v", tt.gen, ok, tt.wantOK)
			}
			if ok && got != tt.orig {
				t.Errorf("ToOriginal(%d) = %d, want %d", tt.gen, got, tt.orig)
			}
		})
	}
}

func TestMapper_RoundTripOnUntouchedPrefix(t *testing.T) {
	original := []byte("let a = 1;\nlet b = a ~ f;\n")
	generated := []byte("let a = 1;\nlet b = f(a);\n")
	sm := NewStageMap("a.mx")
	sm.AddSegment(0, 0, 0, 0)
	sm.AddSegment(1, 8, 1, 8)

	m := NewMapper(sm, original, generated)
	// первые 19 байт не сдвинуты ни одной стадией
	for k := uint32(0); k < 19; k++ {
		gen, ok := m.ToGenerated(k)
		if !ok {
			t.Fatalf("ToGenerated(%d) unmappable", k)
		}
		back, ok := m.ToOriginal(gen)
		if !ok {
			t.Fatalf("ToOriginal(%d) unmappable", gen)
		}
		if back != k {
			t.Fatalf("round trip of %d gave %d", k, back)
		}
	}
}

func TestMapper_UnmappableReturnsFalse(t *testing.T) {
	original := []byte("ab")
	generated := []byte("generated only prefix ab")
	sm := NewStageMap("a.mx")
	sm.AddSegment(0, 22, 0, 0) // всё до колонки 22 сгенерировано с нуля

	m := NewMapper(sm, original, generated)
	if _, ok := m.ToOriginal(5); ok {
		t.Fatal("offset inside generated-only run must be unmappable")
	}
	if _, ok := m.ToOriginal(1000); ok {
		t.Fatal("offset past the generated text must be unmappable")
	}
	if got, ok := m.ToOriginal(23); !ok || got != 1 {
		t.Fatalf("ToOriginal(23) = (%d,%v), want (1,true)", got, ok)
	}
}

func TestMapper_RejectsPositionsPastLineEnd(t *testing.T) {
	// сегмент маппит в колонку за концом оригинальной строки
	original := []byte("ab\ncd")
	generated := []byte("abXYZ\ncd")
	sm := NewStageMap("a.mx")
	sm.AddSegment(0, 0, 0, 0)

	m := NewMapper(sm, original, generated)
	// generated col 4 -> original col 4, но строка 0 оригинала кончается на 2
	if _, ok := m.ToOriginal(4); ok {
		t.Fatal("position past the original line end must be unmappable")
	}
}

func TestPosForOffFor(t *testing.T) {
	content := []byte("ab\ncde\n\nf")
	idx := newlineIndex(content)

	tests := []struct {
		off  uint32
		line int32
		col  int32
	}{
		{0, 0, 0},
		{2, 0, 2}, // сам \n принадлежит своей строке
		{3, 1, 0},
		{6, 1, 3},
		{7, 2, 0},
		{8, 3, 0},
	}
	for _, tt := range tests {
		line, col := posFor(idx, tt.off)
		if line != tt.line || col != tt.col {
			t.Errorf("posFor(%d) = (%d,%d), want (%d,%d)", tt.off, line, col, tt.line, tt.col)
		}
		back, ok := offFor(idx, uint32(len(content)), line, col)
		if !ok || back != tt.off {
			t.Errorf("offFor(%d,%d) = (%d,%v), want (%d,true)", line, col, back, ok, tt.off)
		}
	}

	if _, ok := offFor(idx, uint32(len(content)), 0, 50); ok {
		t.Error("offFor past line end must fail")
	}
	if _, ok := offFor(idx, uint32(len(content)), 10, 0); ok {
		t.Error("offFor past last line must fail")
	}
}
