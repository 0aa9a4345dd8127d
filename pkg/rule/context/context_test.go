package context

import (
	"context"
	"testing"

	"rulecraft/engine/pkg/rule/errors"
)

func TestResolvePrecedenceComputedOverConstantsOverInputs(t *testing.T) {
	c := New(context.Background(), map[string]interface{}{"x": "from_input"}, DefaultNamingRules())
	c.SeedConstants(map[string]interface{}{"x": "from_constant"})
	if err := c.Write("x", "from_computed", errors.Location{}); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	v, ok := c.Resolve("x")
	if !ok || v != "from_computed" {
		t.Errorf("Resolve(x) = %v, %v, want from_computed, true", v, ok)
	}
}

func TestResolveFallsBackToConstantsThenInputs(t *testing.T) {
	c := New(context.Background(), map[string]interface{}{"y": "input_y"}, DefaultNamingRules())
	c.SeedConstants(map[string]interface{}{"y": "constant_y"})
	v, _ := c.Resolve("y")
	if v != "constant_y" {
		t.Errorf("Resolve(y) = %v, want constant_y (constants beat inputs)", v)
	}
}

func TestResolveUndefinedReturnsFalse(t *testing.T) {
	c := New(context.Background(), nil, DefaultNamingRules())
	_, ok := c.Resolve("nonexistent")
	if ok {
		t.Error("Resolve(nonexistent) returned ok=true, want false")
	}
}

func TestWriteRejectsNonSnakeCaseName(t *testing.T) {
	c := New(context.Background(), nil, DefaultNamingRules())
	err := c.Write("MyVariable", 1.0, errors.Location{Line: 1, Column: 1})
	if err == nil {
		t.Fatal("expected a naming error for a non-snake_case computed write")
	}
}

func TestWriteAcceptsSnakeCaseName(t *testing.T) {
	c := New(context.Background(), nil, DefaultNamingRules())
	if err := c.Write("monthly_payment", 42.0, errors.Location{}); err != nil {
		t.Fatalf("unexpected error for valid snake_case name: %v", err)
	}
	if v, ok := c.Resolve("monthly_payment"); !ok || v != 42.0 {
		t.Errorf("Resolve(monthly_payment) = %v, %v, want 42.0, true", v, ok)
	}
}

func TestTripBreakerRecordsMessageAndCode(t *testing.T) {
	c := New(context.Background(), nil, DefaultNamingRules())
	c.TripBreaker("too many retries", "EXT_TIMEOUT")
	tripped, msg, code := c.BreakerTripped()
	if !tripped || msg != "too many retries" || code != "EXT_TIMEOUT" {
		t.Errorf("BreakerTripped() = %v %q %q, want true, message, code", tripped, msg, code)
	}
}

func TestOperationIDIsUniquePerContext(t *testing.T) {
	c1 := New(context.Background(), nil, DefaultNamingRules())
	c2 := New(context.Background(), nil, DefaultNamingRules())
	if c1.OperationID() == c2.OperationID() {
		t.Error("two distinct contexts produced the same operation id")
	}
}

func TestCancelledReflectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(ctx, nil, DefaultNamingRules())
	if c.Cancelled() {
		t.Fatal("Cancelled() = true before cancellation")
	}
	cancel()
	if !c.Cancelled() {
		t.Error("Cancelled() = false after cancellation")
	}
}
