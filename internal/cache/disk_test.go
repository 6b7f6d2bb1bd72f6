package cache

import (
	"os"
	"path/filepath"
	"testing"

	"morph/internal/diag"
	"morph/internal/project"
)

func TestDisk_PutGetRoundTrip(t *testing.T) {
	c, err := OpenDiskAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskAt: %v", err)
	}

	key := project.HashString("a.mx|v1")
	payload := &DiskPayload{
		Path:        "a.mx",
		ContentHash: project.HashString("v1"),
		DepPaths:    []string{"b.mx"},
		DepHashes:   []project.Digest{project.HashString("b")},
		Code:        "pipe(1, f)",
		Changed:     true,
		Diagnostics: []diag.Diagnostic{diag.NewWholeFile(diag.SevWarning, diag.PreUnknownConstruct, "w")},
		Imports:     []string{"b.mx"},
	}
	if err := c.Put(key, payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out DiskPayload
	ok, err := c.Get(key, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if out.Code != payload.Code || out.Path != payload.Path || !out.Changed {
		t.Fatalf("payload mismatch: %+v", out)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Message != "w" {
		t.Fatalf("diagnostics mismatch: %+v", out.Diagnostics)
	}
	if out.ContentHash != payload.ContentHash {
		t.Fatal("content hash mismatch")
	}
}

func TestDisk_MissOnUnknownKey(t *testing.T) {
	c, err := OpenDiskAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	ok, err := c.Get(project.HashString("nope"), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("unknown key must miss")
	}
}

func TestDisk_CorruptPayloadIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenDiskAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := project.HashString("x")
	p := filepath.Join(dir, "units", key.Hex()+".mp")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out DiskPayload
	ok, err := c.Get(key, &out)
	if err != nil {
		t.Fatalf("corruption must not surface as error: %v", err)
	}
	if ok {
		t.Fatal("corrupt payload must be a miss")
	}
}

func TestDisk_DropAll(t *testing.T) {
	c, err := OpenDiskAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := project.HashString("x")
	if err := c.Put(key, &DiskPayload{Path: "a.mx"}); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	var out DiskPayload
	if ok, _ := c.Get(key, &out); ok {
		t.Fatal("entry survived DropAll")
	}
}

func TestDisk_NilReceiver(t *testing.T) {
	var c *Disk
	if err := c.Put(project.Digest{}, &DiskPayload{}); err != nil {
		t.Fatal("nil disk cache Put must be a no-op")
	}
	var out DiskPayload
	if ok, err := c.Get(project.Digest{}, &out); ok || err != nil {
		t.Fatal("nil disk cache Get must miss")
	}
	if err := c.DropAll(); err != nil {
		t.Fatal("nil disk cache DropAll must be a no-op")
	}
}
