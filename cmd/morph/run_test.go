package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"morph/internal/diagfmt"
	"morph/internal/host"
	"morph/internal/pipeline"
	"morph/internal/preproc"
)

func TestListMXFiles(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "b.mx"), "const b = 1;")
	mustWrite(t, filepath.Join(root, "a.mx"), "const a = 1;")
	mustWrite(t, filepath.Join(root, "sub", "c.mx"), "const c = 1;")
	mustWrite(t, filepath.Join(root, "notes.txt"), "skip me")

	files, err := listMXFiles(root)
	if err != nil {
		t.Fatalf("listMXFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("len(files) = %d, want 3", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Fatalf("files not sorted: %q before %q", files[i-1], files[i])
		}
	}
}

func TestLoadProjectConfig(t *testing.T) {
	root := t.TempDir()
	manifest := `[package]
name = "demo"

[syntax]
extensions = ["pipeline"]

[filter]
exclude = ["generated/"]
`
	mustWrite(t, filepath.Join(root, "morph.toml"), manifest)

	exts, excludes, err := loadProjectConfig(root)
	if err != nil {
		t.Fatalf("loadProjectConfig: %v", err)
	}
	if len(exts) != 1 || exts[0] != preproc.ExtPipeline {
		t.Fatalf("exts = %v, want [pipeline]", exts)
	}
	if len(excludes) != 1 || excludes[0] != "generated/" {
		t.Fatalf("excludes = %v, want [generated/]", excludes)
	}
}

func TestLoadProjectConfig_NoManifest(t *testing.T) {
	exts, excludes, err := loadProjectConfig(t.TempDir())
	if err != nil {
		t.Fatalf("loadProjectConfig: %v", err)
	}
	if len(exts) != 2 {
		t.Fatalf("len(exts) = %d, want every extension enabled", len(exts))
	}
	if excludes != nil {
		t.Fatalf("excludes = %v, want nil", excludes)
	}
}

func TestLoadProjectConfig_UnknownExtension(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "morph.toml"), "[syntax]\nextensions = [\"wat\"]\n")

	if _, _, err := loadProjectConfig(root); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
}

func TestCollectDiagnostics_CRLFInput(t *testing.T) {
	root := t.TempDir()
	path := filepath.ToSlash(filepath.Join(root, "a.mx"))
	mustWrite(t, path, "const a = 1;\r\n|> f;\r\n")

	h := host.NewOS("")
	tr := pipeline.New(pipeline.Config{
		Host:       h,
		Extensions: []preproc.Extension{preproc.ExtPipeline},
	})
	res := tr.Transform(context.Background(), path)
	results := map[string]pipeline.Result{path: res}

	fileSet, bag := collectDiagnostics(h, results, 10)
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fileSet, diagfmt.PrettyOpts{})
	out := buf.String()

	// позиция не должна уплывать из-за \r\n в исходнике
	if !strings.Contains(out, ":2:1: WARNING PRE1002") {
		t.Fatalf("expected position 2:1 in output:\n%s", out)
	}
	if !strings.Contains(out, "\n  |> f;\n  ^~\n") {
		t.Fatalf("caret misplaced in output:\n%s", out)
	}
}

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		input string
		want  uiMode
	}{
		{"", uiModeAuto},
		{"auto", uiModeAuto},
		{"On", uiModeOn},
		{"off", uiModeOff},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.input)
		if err != nil {
			t.Fatalf("readUIMode(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("readUIMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}

func mustWrite(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
