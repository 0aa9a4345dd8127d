package config

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldError is a validation failure for a specific configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in one Validate call.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks cfg against the invariants spec.md §6.5 implies (cache
// provider is one of the two supported values, sizes/scales are positive,
// naming patterns compile) and collects every failure rather than stopping
// at the first.
func Validate(cfg *EngineConfig) error {
	var errs []FieldError

	if cfg.Cache.Provider != "local" && cfg.Cache.Provider != "remote" {
		errs = append(errs, FieldError{
			Field:   "cache.provider",
			Message: fmt.Sprintf("must be \"local\" or \"remote\", got %q", cfg.Cache.Provider),
		})
	}
	if cfg.Cache.AST.MaxSize <= 0 {
		errs = append(errs, FieldError{Field: "cache.ast.max_size", Message: "must be positive"})
	}
	if cfg.Cache.AST.TTLWrite <= 0 {
		errs = append(errs, FieldError{Field: "cache.ast.ttl_write", Message: "must be positive"})
	}
	if cfg.Cache.AST.TTLAccess <= 0 {
		errs = append(errs, FieldError{Field: "cache.ast.ttl_access", Message: "must be positive"})
	}
	if cfg.Loop.MaxIterations <= 0 {
		errs = append(errs, FieldError{Field: "loop.max_iterations", Message: "must be positive"})
	}
	if cfg.Decimal.DivScale <= 0 {
		errs = append(errs, FieldError{Field: "decimal.div_scale", Message: "must be positive"})
	}
	errs = append(errs, validatePattern("naming.input_pattern", cfg.Naming.InputPattern)...)
	errs = append(errs, validatePattern("naming.computed_pattern", cfg.Naming.ComputedPattern)...)
	errs = append(errs, validatePattern("naming.constant_pattern", cfg.Naming.ConstantPattern)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validatePattern(field, pattern string) []FieldError {
	if pattern == "" {
		return []FieldError{{Field: field, Message: "must not be empty"}}
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return []FieldError{{Field: field, Message: fmt.Sprintf("invalid regex: %v", err)}}
	}
	return nil
}
