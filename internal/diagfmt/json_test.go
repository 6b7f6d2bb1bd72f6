package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"morph/internal/diag"
	"morph/internal/source"
)

func TestBuildDiagnosticsOutput(t *testing.T) {
	fs, id := testFileSet(t, "a.mx", "const r = 1 |> f;\n")
	bag := diag.NewBag(10)
	bag.Add(diag.NewWholeFile(diag.SevError, diag.PipeFileNotFound, "b.mx not found"))
	bag.Add(diag.New(diag.SevWarning, diag.PreUnterminatedPipe,
		source.Span{File: id, Start: 12, End: 14}, "dangling pipe"))
	bag.Sort()

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludePositions: true})
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("got count=%d len=%d, want 2/2", out.Count, len(out.Diagnostics))
	}

	// после Sort непозиционная диагностика первая
	first := out.Diagnostics[0]
	if first.Code != "PIP3001" || first.Location != nil {
		t.Fatalf("unexpected first entry: %+v", first)
	}

	second := out.Diagnostics[1]
	if second.Code != "PRE1002" || second.Severity != "WARNING" {
		t.Fatalf("unexpected second entry: %+v", second)
	}
	loc := second.Location
	if loc == nil {
		t.Fatalf("positioned diagnostic lost its location")
	}
	if loc.File != "a.mx" || loc.StartByte != 12 || loc.EndByte != 14 {
		t.Fatalf("bad location: %+v", loc)
	}
	if loc.StartLine != 1 || loc.StartCol != 13 {
		t.Fatalf("bad line/col: %+v", loc)
	}
}

func TestBuildDiagnosticsOutput_Max(t *testing.T) {
	fs, _ := testFileSet(t, "a.mx", "x\n")
	bag := diag.NewBag(10)
	for i := 0; i < 5; i++ {
		bag.Add(diag.NewWholeFile(diag.SevError, diag.PipeFileNotFound, "gone"))
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if len(out.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(out.Diagnostics))
	}
	if out.Count != 5 {
		t.Fatalf("count must report the full bag, got %d", out.Count)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	fs, id := testFileSet(t, "a.mx", "obj::m\n")
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.PreBadBindTarget,
		source.Span{File: id, Start: 3, End: 5}, "bad bind"))

	var sb strings.Builder
	if err := JSON(&sb, bag, fs, JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded DiagnosticsOutput
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Count != 1 || decoded.Diagnostics[0].Code != "PRE1003" {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
}
