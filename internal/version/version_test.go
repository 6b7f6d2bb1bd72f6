package version

import (
	"strings"
	"testing"
)

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Fatalf("Version must have a default value")
	}
	// Цветовые коды не должны ломать суффикс
	if !strings.HasSuffix(Version, "-dev") {
		t.Fatalf("default Version = %q, want -dev suffix", Version)
	}
}

func TestVersionOverride(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	// симуляция -ldflags
	Version = "1.2.3"
	if Version != "1.2.3" {
		t.Fatalf("Version = %q, want 1.2.3", Version)
	}
}
