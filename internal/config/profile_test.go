package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	if p.MaxRecursionDepth != DefaultMaxRecursionDepth {
		t.Errorf("MaxRecursionDepth = %d, want %d", p.MaxRecursionDepth, DefaultMaxRecursionDepth)
	}
	if p.Trace {
		t.Error("Trace should default to false")
	}
	if len(p.FalseySeed) != 1 || p.FalseySeed[0] != "#f" {
		t.Errorf("FalseySeed = %v, want [#f]", p.FalseySeed)
	}
}

func TestLoadProfileMissingFileReturnsDefaults(t *testing.T) {
	p, err := LoadProfile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadProfile on a missing file should not error, got %v", err)
	}
	if p.MaxRecursionDepth != DefaultMaxRecursionDepth {
		t.Errorf("MaxRecursionDepth = %d, want default", p.MaxRecursionDepth)
	}
}

func TestLoadProfileOverridesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heistrc.yaml")
	content := "max_recursion_depth: 100\ntrace: true\nfalsey_seed: [\"#f\", \"()\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.MaxRecursionDepth != 100 {
		t.Errorf("MaxRecursionDepth = %d, want 100", p.MaxRecursionDepth)
	}
	if !p.Trace {
		t.Error("Trace should be true")
	}
	if len(p.FalseySeed) != 2 || p.FalseySeed[1] != "()" {
		t.Errorf("FalseySeed = %v", p.FalseySeed)
	}
}

func TestLoadProfileRejectsNonPositiveRecursionDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heistrc.yaml")
	if err := os.WriteFile(path, []byte("max_recursion_depth: 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.MaxRecursionDepth != DefaultMaxRecursionDepth {
		t.Errorf("a non-positive max_recursion_depth should fall back to the default, got %d", p.MaxRecursionDepth)
	}
}

func TestTrimAndHasSourceExt(t *testing.T) {
	if got := TrimSourceExt("foo.scm"); got != "foo" {
		t.Errorf("TrimSourceExt(foo.scm) = %q, want foo", got)
	}
	if got := TrimSourceExt("foo.heist"); got != "foo" {
		t.Errorf("TrimSourceExt(foo.heist) = %q, want foo", got)
	}
	if got := TrimSourceExt("foo.txt"); got != "foo.txt" {
		t.Errorf("TrimSourceExt(foo.txt) = %q, want unchanged", got)
	}
	if !HasSourceExt("bar.ss") {
		t.Error("bar.ss should be recognized as a source file")
	}
	if HasSourceExt("bar.txt") {
		t.Error("bar.txt should not be recognized as a source file")
	}
}
