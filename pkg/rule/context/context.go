// Package context implements the per-evaluation EvaluationContext: three
// precedence-ordered namespaces (computed > constants > inputs), the
// circuit-breaker flag, and the diagnostic/cancellation plumbing threaded
// through the evaluator and executor.
package context

import (
	"context"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"rulecraft/engine/pkg/rule/errors"
)

// DiagnosticEvent is one accumulated observation during an evaluation
// (an undefined variable reference, an invalid "matches" pattern, a call to
// an unknown function, a notification).
type DiagnosticEvent struct {
	Kind    string
	Message string
	Loc     errors.Location
}

// NamingRules holds the compiled patterns the context enforces on writes
// to the computed namespace and (informationally) on input/constant names.
type NamingRules struct {
	ComputedPattern *regexp.Regexp
	InputPattern    *regexp.Regexp
	ConstantPattern *regexp.Regexp
}

// DefaultNamingRules matches spec.md's snake_case/camelCase/UPPER_SNAKE
// conventions for computed/input/constant names respectively.
func DefaultNamingRules() NamingRules {
	return NamingRules{
		ComputedPattern: regexp.MustCompile(`^[a-z][a-z0-9_]*$`),
		InputPattern:    regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`),
		ConstantPattern: regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`),
	}
}

// EvaluationContext is created fresh for each Engine.Evaluate call and
// discarded on return; it is not safe to retain or share across calls.
type EvaluationContext struct {
	mu sync.RWMutex

	computed  map[string]interface{}
	constants map[string]interface{}
	inputs    map[string]interface{}

	naming NamingRules

	operationID string
	breakerTripped bool
	breakerMessage string
	breakerErrorCode string

	diagnostics []DiagnosticEvent

	ctx context.Context
}

// New constructs an EvaluationContext over the given input snapshot. The
// constants map starts empty; the Engine seeds it once, before any action
// executes, rather than on the first constant reference.
func New(ctx context.Context, inputs map[string]interface{}, naming NamingRules) *EvaluationContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &EvaluationContext{
		computed:    make(map[string]interface{}),
		constants:   make(map[string]interface{}),
		inputs:      inputs,
		naming:      naming,
		operationID: uuid.NewString(),
		ctx:         ctx,
	}
}

// OperationID returns the opaque identifier assigned to this evaluation.
func (c *EvaluationContext) OperationID() string { return c.operationID }

// Context returns the cancellation/deadline context the evaluation was
// started with.
func (c *EvaluationContext) Context() context.Context { return c.ctx }

// Cancelled reports whether the underlying context has been cancelled,
// used by the evaluator/executor to abort with EVAL_CANCELLED.
func (c *EvaluationContext) Cancelled() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// SeedConstants installs the constant snapshot for this evaluation. The
// Engine calls it at most once, at the start of the evaluation and before
// execution, for every constant the rule declares, whether or not the rule
// body references it.
func (c *EvaluationContext) SeedConstants(values map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range values {
		c.constants[k] = v
	}
}

// HasConstants reports whether the constants namespace has already been
// seeded, so the Engine only fetches from the ConstantStore once.
func (c *EvaluationContext) HasConstants() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.constants) > 0
}

// Resolve looks up name with precedence computed > constants > inputs,
// per spec.md's "Evaluation context" invariant. The second return value
// is false if name is undefined in all three namespaces.
func (c *EvaluationContext) Resolve(name string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.computed[name]; ok {
		return v, true
	}
	if v, ok := c.constants[name]; ok {
		return v, true
	}
	if v, ok := c.inputs[name]; ok {
		return v, true
	}
	return nil, false
}

// Write validates name against the computed naming pattern and, if valid,
// stores value in the computed namespace. A naming violation returns a
// *errors.Error with CodeNamingWrite and does not write the value.
func (c *EvaluationContext) Write(name string, value interface{}, loc errors.Location) error {
	if c.naming.ComputedPattern != nil && !c.naming.ComputedPattern.MatchString(name) {
		return errors.New(errors.CodeNamingWrite,
			"computed variable name \""+name+"\" does not match the required snake_case pattern", loc).
			WithSuggestion("rename to snake_case, e.g. \"" + name + "_value\"")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.computed[name] = value
	return nil
}

// Delete removes name from the computed namespace, used by ForEach/DoWhile
// loop-variable binding to restore pre-loop state when the name was not
// previously computed.
func (c *EvaluationContext) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.computed, name)
}

// Computed returns a snapshot copy of the computed namespace, for the
// evaluator's final result and for the validator's dependency analysis.
func (c *EvaluationContext) Computed() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]interface{}, len(c.computed))
	for k, v := range c.computed {
		out[k] = v
	}
	return out
}

// TripBreaker trips the circuit breaker; once tripped it cannot be reset
// within the same evaluation (spec.md's "Once the circuit breaker is
// tripped, no further action executes" invariant).
func (c *EvaluationContext) TripBreaker(message, errorCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakerTripped = true
	c.breakerMessage = message
	c.breakerErrorCode = errorCode
}

// BreakerTripped reports whether the circuit breaker has tripped.
func (c *EvaluationContext) BreakerTripped() (bool, string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.breakerTripped, c.breakerMessage, c.breakerErrorCode
}

// RecordDiagnostic appends an accumulated diagnostic event.
func (c *EvaluationContext) RecordDiagnostic(kind, message string, loc errors.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, DiagnosticEvent{Kind: kind, Message: message, Loc: loc})
}

// Diagnostics returns the accumulated diagnostic events in order.
func (c *EvaluationContext) Diagnostics() []DiagnosticEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]DiagnosticEvent, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}
