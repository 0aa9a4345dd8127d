package exec

import (
	gocontext "context"
	"testing"

	"github.com/shopspring/decimal"

	"rulecraft/engine/pkg/rule/context"
	"rulecraft/engine/pkg/rule/yamlrule"
)

func newTestExecutor(inputs map[string]interface{}) (*Executor, *context.EvaluationContext) {
	ctx := context.New(gocontext.Background(), inputs, context.DefaultNamingRules())
	return New(ctx, nil, nil, nil, nil), ctx
}

func TestExecuteSimpleBodyThenBranch(t *testing.T) {
	rule, err := yamlrule.Parse([]byte(`
name: credit_tier
inputs:
  credit_score: number
when: "credit_score greater_than 700"
then: "set tier to \"gold\""
else: "set tier to \"standard\""
`), "test.yaml")
	if err != nil {
		t.Fatalf("parse rule: %v", err)
	}
	x, ctx := newTestExecutor(map[string]interface{}{"credit_score": decimal.NewFromInt(750)})
	if err := x.ExecuteRule(rule); err != nil {
		t.Fatalf("execute: %v", err)
	}
	tier, ok := ctx.Resolve("tier")
	if !ok || tier != "gold" {
		t.Errorf("tier = %v, %v, want gold, true", tier, ok)
	}
}

func TestExecuteSimpleBodyElseBranch(t *testing.T) {
	rule, err := yamlrule.Parse([]byte(`
name: credit_tier
when: "credit_score greater_than 700"
then: "set tier to \"gold\""
else: "set tier to \"standard\""
`), "test.yaml")
	if err != nil {
		t.Fatalf("parse rule: %v", err)
	}
	x, ctx := newTestExecutor(map[string]interface{}{"credit_score": decimal.NewFromInt(500)})
	if err := x.ExecuteRule(rule); err != nil {
		t.Fatalf("execute: %v", err)
	}
	tier, _ := ctx.Resolve("tier")
	if tier != "standard" {
		t.Errorf("tier = %v, want standard", tier)
	}
}

func TestCircuitBreakerStopsFurtherActions(t *testing.T) {
	rule, err := yamlrule.Parse([]byte(`
name: breaker_test
then:
  - "circuit_breaker \"too risky\""
  - "set unreachable to true"
`), "test.yaml")
	if err != nil {
		t.Fatalf("parse rule: %v", err)
	}
	x, ctx := newTestExecutor(nil)
	if err := x.ExecuteRule(rule); err != nil {
		t.Fatalf("execute: %v", err)
	}
	tripped, msg, _ := ctx.BreakerTripped()
	if !tripped || msg != "too risky" {
		t.Errorf("BreakerTripped() = %v %q, want true, \"too risky\"", tripped, msg)
	}
	if _, ok := ctx.Resolve("unreachable"); ok {
		t.Error("action following a tripped breaker should not have executed")
	}
}

func TestDivisionByZeroAbortsExecution(t *testing.T) {
	rule, err := yamlrule.Parse([]byte(`
name: div_zero
then: "set result to 1 / 0"
`), "test.yaml")
	if err != nil {
		t.Fatalf("parse rule: %v", err)
	}
	x, _ := newTestExecutor(nil)
	if err := x.ExecuteRule(rule); err == nil {
		t.Fatal("expected division-by-zero to abort execution with an error")
	}
}

func TestForEachAccumulatesOverList(t *testing.T) {
	rule, err := yamlrule.Parse([]byte(`
name: sum_items
then:
  - "set total to 0"
  - "forEach item in items":
      - "add item to total"
`), "test.yaml")
	if err != nil {
		t.Fatalf("parse rule: %v", err)
	}
	items := []interface{}{decimal.NewFromInt(10), decimal.NewFromInt(20), decimal.NewFromInt(5)}
	x, ctx := newTestExecutor(map[string]interface{}{"items": items})
	if err := x.ExecuteRule(rule); err != nil {
		t.Fatalf("execute: %v", err)
	}
	total, _ := ctx.Resolve("total")
	d := total.(decimal.Decimal)
	if !d.Equal(decimal.NewFromInt(35)) {
		t.Errorf("total = %v, want 35", total)
	}
}

func TestAppendSeedsOneElementListFromExistingScalar(t *testing.T) {
	rule, err := yamlrule.Parse([]byte(`
name: append_to_scalar
then: "append \"b\" to tags"
`), "test.yaml")
	if err != nil {
		t.Fatalf("parse rule: %v", err)
	}
	x, ctx := newTestExecutor(map[string]interface{}{"tags": "a"})
	if err := x.ExecuteRule(rule); err != nil {
		t.Fatalf("execute: %v", err)
	}
	tags, ok := ctx.Resolve("tags")
	if !ok {
		t.Fatal("tags not resolved")
	}
	list, ok := tags.([]interface{})
	if !ok || len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Errorf("tags = %#v, want [a b] (existing scalar seeded as a one-element list)", tags)
	}
}

func TestAppendOntoExistingList(t *testing.T) {
	rule, err := yamlrule.Parse([]byte(`
name: append_to_list
then: "append \"c\" to tags"
`), "test.yaml")
	if err != nil {
		t.Fatalf("parse rule: %v", err)
	}
	x, ctx := newTestExecutor(map[string]interface{}{"tags": []interface{}{"a", "b"}})
	if err := x.ExecuteRule(rule); err != nil {
		t.Fatalf("execute: %v", err)
	}
	tags, _ := ctx.Resolve("tags")
	list, ok := tags.([]interface{})
	if !ok || len(list) != 3 || list[2] != "c" {
		t.Errorf("tags = %#v, want [a b c]", tags)
	}
}
