package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"rulecraft/engine/pkg/config"
	"rulecraft/engine/pkg/rule/store"
)

func TestEvaluateAppliesThenBranch(t *testing.T) {
	e, err := New(nil, Dependencies{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ruleText := `
name: credit_tier
inputs:
  credit_score: number
when: "credit_score greater_than 700"
then: "set tier to \"gold\""
else: "set tier to \"standard\""
`
	result, err := e.Evaluate(context.Background(), ruleText, map[string]interface{}{
		"credit_score": decimal.NewFromInt(750),
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false, Error = %q", result.Error)
	}
	if !result.ConditionResult {
		t.Error("ConditionResult = false, want true for a matched when clause")
	}
	if result.Outputs["tier"] != "gold" {
		t.Errorf("Outputs[tier] = %v, want gold", result.Outputs["tier"])
	}
}

func TestEvaluateReportsConditionResultFalseOnElseBranch(t *testing.T) {
	e, err := New(nil, Dependencies{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ruleText := `
name: credit_tier
when: "credit_score greater_than 700"
then: "set tier to \"gold\""
else: "set tier to \"standard\""
`
	result, err := e.Evaluate(context.Background(), ruleText, map[string]interface{}{
		"credit_score": decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.ConditionResult {
		t.Error("ConditionResult = true, want false for an unmatched when clause")
	}
	if result.Outputs["tier"] != "standard" {
		t.Errorf("Outputs[tier] = %v, want standard", result.Outputs["tier"])
	}
}

func TestEvaluateReportsCircuitBreaker(t *testing.T) {
	e, err := New(nil, Dependencies{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ruleText := `
name: breaker_test
then:
  - "circuit_breaker \"too risky\""
  - "set unreachable to true"
`
	result, err := e.Evaluate(context.Background(), ruleText, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.CircuitBreakerTriggered || result.CircuitBreakerMessage != "too risky" {
		t.Errorf("CircuitBreakerTriggered/Message = %v %q, want true, \"too risky\"", result.CircuitBreakerTriggered, result.CircuitBreakerMessage)
	}
	if _, ok := result.Outputs["unreachable"]; ok {
		t.Error("action following a tripped breaker should not have executed")
	}
}

func TestEvaluateSurfacesDivisionByZeroAsFailure(t *testing.T) {
	e, err := New(nil, Dependencies{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Evaluate(context.Background(), "name: div_zero\nthen: \"set result to 1 / 0\"\n", nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.Success {
		t.Fatal("Success = true, want false for a division-by-zero abort")
	}
	if result.Error == "" {
		t.Error("Error is empty, want a division-by-zero message")
	}
}

func TestEvaluateReusesCachedASTAcrossCalls(t *testing.T) {
	e, err := New(nil, Dependencies{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ruleText := "name: noop\nthen: \"set x to 1\"\n"
	for i := 0; i < 3; i++ {
		if _, err := e.Evaluate(context.Background(), ruleText, nil); err != nil {
			t.Fatalf("Evaluate call %d: %v", i, err)
		}
	}
	stats := e.cache.Stats()
	if stats.Hits == 0 {
		t.Errorf("Stats().Hits = 0, want at least one cache hit across repeated identical rule text")
	}
}

func TestSeedConstantsFallsBackToDeclaredDefaultOnStoreMiss(t *testing.T) {
	e, err := New(nil, Dependencies{
		ConstantStore: newFakeConstantStore(map[string]interface{}{}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ruleText := `
name: uses_constant
constants:
  - name: threshold
    code: THRESHOLD
    default: 42
then: "set doubled to threshold * 2"
`
	result, err := e.Evaluate(context.Background(), ruleText, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false, Error = %q", result.Error)
	}
	doubled, ok := result.Outputs["doubled"].(decimal.Decimal)
	if !ok || !doubled.Equal(decimal.NewFromInt(84)) {
		t.Errorf("Outputs[doubled] = %v, want 84 (constant store miss should fall back to declared default 42)", result.Outputs["doubled"])
	}
}

func TestSeedConstantsPrefersStoreValueOverDeclaredDefault(t *testing.T) {
	e, err := New(nil, Dependencies{
		ConstantStore: newFakeConstantStore(map[string]interface{}{
			"THRESHOLD": decimal.NewFromInt(10),
		}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ruleText := `
name: uses_constant
constants:
  - name: threshold
    code: THRESHOLD
    default: 42
then: "set doubled to threshold * 2"
`
	result, err := e.Evaluate(context.Background(), ruleText, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	doubled, ok := result.Outputs["doubled"].(decimal.Decimal)
	if !ok || !doubled.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Outputs[doubled] = %v, want 20 (constant store value should win over declared default)", result.Outputs["doubled"])
	}
}

func TestEvaluateByCodeResolvesFromRuleDefinitionStore(t *testing.T) {
	defs := map[string]string{
		"CREDIT_TIER": "name: credit_tier\nthen: \"set tier to \\\"gold\\\"\"\n",
	}
	e, err := New(nil, Dependencies{
		RuleDefinitionStore: newFakeRuleStore(defs),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.EvaluateByCode(context.Background(), "CREDIT_TIER", nil)
	if err != nil {
		t.Fatalf("EvaluateByCode: %v", err)
	}
	if result.Outputs["tier"] != "gold" {
		t.Errorf("Outputs[tier] = %v, want gold", result.Outputs["tier"])
	}
}

func TestEvaluateByCodeReturnsErrNotFoundOnMiss(t *testing.T) {
	e, err := New(nil, Dependencies{
		RuleDefinitionStore: newFakeRuleStore(map[string]string{}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = e.EvaluateByCode(context.Background(), "MISSING", nil)
	if _, ok := err.(*store.ErrNotFound); !ok {
		t.Errorf("err = %T(%v), want *store.ErrNotFound", err, err)
	}
}

func TestEvaluateAsyncDeliversOneResult(t *testing.T) {
	e, err := New(nil, Dependencies{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := e.EvaluateAsync(context.Background(), "name: noop\nthen: \"set x to 1\"\n", nil)
	async, ok := <-out
	if !ok {
		t.Fatal("channel closed without delivering a result")
	}
	if async.Err != nil {
		t.Fatalf("async.Err = %v", async.Err)
	}
	if async.Result == nil || !async.Result.Success {
		t.Fatalf("async.Result = %+v, want a successful result", async.Result)
	}
	if _, ok := <-out; ok {
		t.Error("channel delivered a second value, want exactly one before close")
	}
}

func TestParseReturnsDiagnosticsOnMalformedRule(t *testing.T) {
	e, err := New(nil, Dependencies{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, diags, err := e.Parse("not: valid: yaml: [")
	if err == nil {
		t.Fatal("expected a parse error for malformed YAML")
	}
	if diags == nil || len(diags.Errors) == 0 {
		t.Error("expected at least one diagnostic in the returned list")
	}
}

func TestValidateFlagsUndeclaredInput(t *testing.T) {
	e, err := New(nil, Dependencies{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report := e.Validate("name: uses_undeclared\nthen: \"set y to undeclared_input\"\n")
	if report == nil {
		t.Fatal("Validate returned nil report")
	}
	found := false
	for _, iss := range report.Issues {
		if iss.Code == "DEPS_001" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a DEPS_001 issue for the undeclared read, got %+v", report.Issues)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Provider = "memcached"
	if _, err := New(cfg, Dependencies{}); err == nil {
		t.Error("expected New to reject an unknown cache provider")
	}
}

// --- fakes ------------------------------------------------------------

type fakeConstantStore struct {
	values map[string]interface{}
}

func newFakeConstantStore(values map[string]interface{}) *fakeConstantStore {
	return &fakeConstantStore{values: values}
}

func (f *fakeConstantStore) GetMany(ctx context.Context, codes []string) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for _, code := range codes {
		if v, ok := f.values[code]; ok {
			out[code] = v
		}
	}
	return out, nil
}

type fakeRuleStore struct {
	defs map[string]string
}

func newFakeRuleStore(defs map[string]string) *fakeRuleStore {
	return &fakeRuleStore{defs: defs}
}

func (f *fakeRuleStore) GetByCode(ctx context.Context, code string) (string, bool, error) {
	text, ok := f.defs[code]
	return text, ok, nil
}
