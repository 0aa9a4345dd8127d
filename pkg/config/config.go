// Package config manages the engine's configuration: cache provider
// selection and sizing, loop/decimal limits, and the naming patterns the
// evaluation context enforces. The schema is restricted to the keys the
// engine itself consumes — no proxy, provider, or telemetry sections, since
// those belong to a gateway this repository does not implement.
package config

import "time"

// CacheConfig sizes the AST cache.
type CacheConfig struct {
	// Provider is "local" or "remote". The Engine validates it but does not
	// act on it: without an injected Dependencies.Cache it always builds a
	// local cache.
	Provider string `yaml:"provider"`

	AST ASTCacheConfig `yaml:"ast"`
}

// ASTCacheConfig mirrors cache.LocalConfig/RemoteConfig's tunables.
type ASTCacheConfig struct {
	MaxSize   int           `yaml:"max_size"`
	TTLWrite  time.Duration `yaml:"ttl_write"`
	TTLAccess time.Duration `yaml:"ttl_access"`
}

// LoopConfig holds the while/doWhile iteration bound. The Engine validates
// it but does not pass it to the executor, which applies its own fixed
// 10 000-iteration cap.
type LoopConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

// DecimalConfig controls arithmetic rounding behavior.
type DecimalConfig struct {
	DivScale int32 `yaml:"div_scale"`
}

// NamingConfig holds the three regex patterns for input/computed/constant
// variable names. The evaluation context enforces only the computed
// pattern, on writes; the input and constant patterns are compiled but not
// checked.
type NamingConfig struct {
	InputPattern    string `yaml:"input_pattern"`
	ComputedPattern string `yaml:"computed_pattern"`
	ConstantPattern string `yaml:"constant_pattern"`
}

// EngineConfig is the full configuration schema, restricted to spec.md
// §6.5's enumerated keys.
type EngineConfig struct {
	Cache   CacheConfig   `yaml:"cache"`
	Loop    LoopConfig    `yaml:"loop"`
	Decimal DecimalConfig `yaml:"decimal"`
	Naming  NamingConfig  `yaml:"naming"`
}
