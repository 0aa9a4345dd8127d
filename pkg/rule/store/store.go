// Package store provides reference implementations of the Engine's two
// persistence-facing collaborator interfaces: ConstantStore and
// RuleDefinitionStore. Neither interface is part of the core evaluation
// pipeline's required dependencies — spec.md treats persistence as an
// external concern — but the repository ships adapters the way the
// teacher ships reference PolicySources for its own out-of-core policy
// loading concern.
package store

import "context"

// ConstantStore resolves named constant codes to their current values.
// Lookup errors are recoverable: the Engine falls back to a constant's
// declared default, or leaves it unbound, rather than aborting evaluation.
type ConstantStore interface {
	GetMany(ctx context.Context, codes []string) (map[string]interface{}, error)
}

// RuleDefinitionStore resolves a rule code to its YAML source text, used
// by the Engine's code-based evaluation convenience entry point.
type RuleDefinitionStore interface {
	GetByCode(ctx context.Context, code string) (string, bool, error)
}

// ErrNotFound is returned by store implementations (where the interface
// doesn't already carry a found bool) when a requested key is absent.
type ErrNotFound struct {
	Code string
}

func (e *ErrNotFound) Error() string {
	return "rule code not found: " + e.Code
}
