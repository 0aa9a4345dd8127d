package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads YAML configuration from path, applies defaults, and validates
// the result. It does not apply environment overrides; use
// LoadWithEnvOverrides for that.
func Load(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads from path, applies RULECRAFT_SECTION_FIELD
// environment overrides, and re-validates. Environment variables always
// take precedence over file-based configuration.
func LoadWithEnvOverrides(path string) (*EngineConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies RULECRAFT_*-prefixed environment variable
// overrides, following the teacher's MERCATOR_SECTION_FIELD convention.
func applyEnvOverrides(cfg *EngineConfig) {
	if val := os.Getenv("RULECRAFT_CACHE_PROVIDER"); val != "" {
		cfg.Cache.Provider = val
	}
	if val := os.Getenv("RULECRAFT_CACHE_AST_MAX_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.AST.MaxSize = i
		}
	}
	if val := os.Getenv("RULECRAFT_CACHE_AST_TTL_WRITE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.AST.TTLWrite = d
		}
	}
	if val := os.Getenv("RULECRAFT_CACHE_AST_TTL_ACCESS"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.AST.TTLAccess = d
		}
	}
	if val := os.Getenv("RULECRAFT_LOOP_MAX_ITERATIONS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Loop.MaxIterations = i
		}
	}
	if val := os.Getenv("RULECRAFT_DECIMAL_DIV_SCALE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 32); err == nil {
			cfg.Decimal.DivScale = int32(i)
		}
	}
	if val := os.Getenv("RULECRAFT_NAMING_INPUT_PATTERN"); val != "" {
		cfg.Naming.InputPattern = val
	}
	if val := os.Getenv("RULECRAFT_NAMING_COMPUTED_PATTERN"); val != "" {
		cfg.Naming.ComputedPattern = val
	}
	if val := os.Getenv("RULECRAFT_NAMING_CONSTANT_PATTERN"); val != "" {
		cfg.Naming.ConstantPattern = val
	}
}

// Default returns an EngineConfig populated entirely from defaults, for
// callers that have no YAML file to load (tests, embedding).
func Default() *EngineConfig {
	cfg := &EngineConfig{}
	ApplyDefaults(cfg)
	return cfg
}
