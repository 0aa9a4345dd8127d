package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	content := `
cache:
  provider: remote
loop:
  max_iterations: 500
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Provider != "remote" {
		t.Errorf("Cache.Provider = %q, want remote (explicit)", cfg.Cache.Provider)
	}
	if cfg.Loop.MaxIterations != 500 {
		t.Errorf("Loop.MaxIterations = %d, want 500 (explicit)", cfg.Loop.MaxIterations)
	}
	if cfg.Cache.AST.MaxSize != DefaultASTCacheMaxSize {
		t.Errorf("Cache.AST.MaxSize = %d, want default %d", cfg.Cache.AST.MaxSize, DefaultASTCacheMaxSize)
	}
	if cfg.Decimal.DivScale != DefaultDecimalDivScale {
		t.Errorf("Decimal.DivScale = %d, want default %d", cfg.Decimal.DivScale, DefaultDecimalDivScale)
	}
	if cfg.Naming.ComputedPattern != DefaultNamingComputedPattern {
		t.Errorf("Naming.ComputedPattern = %q, want default", cfg.Naming.ComputedPattern)
	}
}

func TestLoadRejectsUnknownCacheProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  provider: memcached\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unknown cache provider")
	}
}

func TestLoadRejectsInvalidNamingRegex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte("naming:\n  input_pattern: \"[unterminated\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for invalid naming regex")
	}
}

func TestLoadWithEnvOverridesTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte("loop:\n  max_iterations: 100\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	os.Setenv("RULECRAFT_LOOP_MAX_ITERATIONS", "250")
	os.Setenv("RULECRAFT_CACHE_AST_TTL_WRITE", "1h")
	defer os.Unsetenv("RULECRAFT_LOOP_MAX_ITERATIONS")
	defer os.Unsetenv("RULECRAFT_CACHE_AST_TTL_WRITE")

	cfg, err := LoadWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadWithEnvOverrides: %v", err)
	}
	if cfg.Loop.MaxIterations != 250 {
		t.Errorf("Loop.MaxIterations = %d, want 250 (env override)", cfg.Loop.MaxIterations)
	}
	if cfg.Cache.AST.TTLWrite != time.Hour {
		t.Errorf("Cache.AST.TTLWrite = %v, want 1h (env override)", cfg.Cache.AST.TTLWrite)
	}
}

func TestDefaultProducesAValidConfig(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Errorf("Default() config failed validation: %v", err)
	}
}
