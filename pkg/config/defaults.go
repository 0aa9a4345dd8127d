package config

import "time"

// Default values for configuration fields, per spec.md §6.5.
const (
	DefaultCacheProvider = "local"

	DefaultASTCacheMaxSize   = 1000
	DefaultASTCacheTTLWrite  = 2 * time.Hour
	DefaultASTCacheTTLAccess = 30 * time.Minute

	DefaultLoopMaxIterations = 10000

	DefaultDecimalDivScale = int32(10)

	DefaultNamingInputPattern    = `^[a-z][a-zA-Z0-9]*$`
	DefaultNamingComputedPattern = `^[a-z][a-z0-9_]*$`
	DefaultNamingConstantPattern = `^[A-Z][A-Z0-9_]*$`
)

// ApplyDefaults fills in every zero-valued field of cfg with its documented
// default, the way the teacher's own ApplyDefaults leaves explicitly-set
// fields untouched.
func ApplyDefaults(cfg *EngineConfig) {
	if cfg.Cache.Provider == "" {
		cfg.Cache.Provider = DefaultCacheProvider
	}
	if cfg.Cache.AST.MaxSize == 0 {
		cfg.Cache.AST.MaxSize = DefaultASTCacheMaxSize
	}
	if cfg.Cache.AST.TTLWrite == 0 {
		cfg.Cache.AST.TTLWrite = DefaultASTCacheTTLWrite
	}
	if cfg.Cache.AST.TTLAccess == 0 {
		cfg.Cache.AST.TTLAccess = DefaultASTCacheTTLAccess
	}
	if cfg.Loop.MaxIterations == 0 {
		cfg.Loop.MaxIterations = DefaultLoopMaxIterations
	}
	if cfg.Decimal.DivScale == 0 {
		cfg.Decimal.DivScale = DefaultDecimalDivScale
	}
	if cfg.Naming.InputPattern == "" {
		cfg.Naming.InputPattern = DefaultNamingInputPattern
	}
	if cfg.Naming.ComputedPattern == "" {
		cfg.Naming.ComputedPattern = DefaultNamingComputedPattern
	}
	if cfg.Naming.ConstantPattern == "" {
		cfg.Naming.ConstantPattern = DefaultNamingConstantPattern
	}
}
