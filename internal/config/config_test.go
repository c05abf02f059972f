package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigMatchesFixedBounds(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Assembler.MaxMemoryWords != 256 {
		t.Errorf("MaxMemoryWords = %d, want 256", cfg.Assembler.MaxMemoryWords)
	}
	if cfg.Assembler.ImmediateMin != -128 || cfg.Assembler.ImmediateMax != 127 {
		t.Errorf("immediate bounds = [%d,%d], want [-128,127]", cfg.Assembler.ImmediateMin, cfg.Assembler.ImmediateMax)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom on missing file should not error: %v", err)
	}
	if cfg.Assembler.MaxMemoryWords != DefaultConfig().Assembler.MaxMemoryWords {
		t.Error("expected defaults when config file is absent")
	}
}

func TestSaveToAndLoadFromRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Output.Directory = "/tmp/out"
	cfg.Diagnostics.SourceContext = 5

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Output.Directory != "/tmp/out" || loaded.Diagnostics.SourceContext != 5 {
		t.Errorf("loaded config = %+v, want round-tripped values", loaded)
	}
}
