package yamlrule

import (
	"testing"

	"rulecraft/engine/pkg/lang/ast"
)

func TestParseSimpleBody(t *testing.T) {
	doc := []byte(`
name: credit_tier
inputs:
  credit_score: number
outputs:
  tier: string
when: "credit_score greater_than 700"
then: "set tier to \"gold\""
else: "set tier to \"standard\""
`)
	rule, err := Parse(doc, "credit_tier.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	body, ok := rule.Body.(*ast.SimpleBody)
	if !ok {
		t.Fatalf("Body = %#v, want *SimpleBody", rule.Body)
	}
	if len(body.When) != 1 || len(body.Then) != 1 || len(body.Else) != 1 {
		t.Errorf("SimpleBody = %+v, want 1 when/then/else entry each", body)
	}
	if rule.InputDecl["credit_score"] != "number" {
		t.Errorf("InputDecl = %v, want credit_score:number", rule.InputDecl)
	}
}

func TestParseInputsAsSequence(t *testing.T) {
	doc := []byte(`
name: simple_rule
inputs: [amount, currency]
then: "set total to amount"
`)
	rule, err := Parse(doc, "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if rule.InputDecl["amount"] != "any" || rule.InputDecl["currency"] != "any" {
		t.Errorf("InputDecl = %v, want amount/currency defaulted to any", rule.InputDecl)
	}
}

func TestParseThenOnlyBody(t *testing.T) {
	doc := []byte(`
name: unconditional
then: "set greeting to \"hello\""
`)
	rule, err := Parse(doc, "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, ok := rule.Body.(*ast.ThenOnlyBody); !ok {
		t.Fatalf("Body = %#v, want *ThenOnlyBody", rule.Body)
	}
}

func TestParseComplexBodyPrecedence(t *testing.T) {
	// conditions + when/then/else both present: conditions (complex) wins.
	doc := []byte(`
name: precedence_test
conditions: "score greater_than 500"
then: "set result to \"complex\""
when: "score greater_than 999"
`)
	rule, err := Parse(doc, "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, ok := rule.Body.(*ast.ComplexBody); !ok {
		t.Fatalf("Body = %#v, want *ComplexBody (conditions should outrank when/then/else)", rule.Body)
	}
}

func TestParseMultiBodyPrecedence(t *testing.T) {
	doc := []byte(`
name: multi_test
rules:
  - name: sub_a
    when: "score greater_than 700"
    then: "set tier to \"gold\""
  - name: sub_b
    then: "set tier to \"standard\""
conditions: "score greater_than 0"
then: "set ignored to true"
`)
	rule, err := Parse(doc, "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	multi, ok := rule.Body.(*ast.MultiBody)
	if !ok {
		t.Fatalf("Body = %#v, want *MultiBody (rules should outrank conditions)", rule.Body)
	}
	if len(multi.Rules) != 2 {
		t.Fatalf("MultiBody.Rules has %d entries, want 2", len(multi.Rules))
	}
}

func TestParseTypedSetActionShape(t *testing.T) {
	doc := []byte(`
name: typed_set
then:
  - set:
      variable: tier
      value: "\"gold\""
`)
	rule, err := Parse(doc, "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	body := rule.Body.(*ast.ThenOnlyBody)
	if len(body.Then) != 1 {
		t.Fatalf("Then has %d actions, want 1", len(body.Then))
	}
	set, ok := body.Then[0].(*ast.Set)
	if !ok || set.Variable != "tier" {
		t.Fatalf("action = %#v, want Set(tier)", body.Then[0])
	}
}

func TestParseYAMLFoldedForEachShape(t *testing.T) {
	doc := []byte(`
name: folded_loop
then:
  - "forEach item in items":
      - "add item.amount to total"
`)
	rule, err := Parse(doc, "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	body := rule.Body.(*ast.ThenOnlyBody)
	fe, ok := body.Then[0].(*ast.ForEach)
	if !ok || fe.Var != "item" {
		t.Fatalf("action = %#v, want ForEach(item)", body.Then[0])
	}
}

func TestParseTypedDoActionShape(t *testing.T) {
	doc := []byte(`
name: typed_do
then:
  - do:
      actions:
        - "add 1 to counter"
      while: "counter less_than 10"
`)
	rule, err := Parse(doc, "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	body := rule.Body.(*ast.ThenOnlyBody)
	if len(body.Then) != 1 {
		t.Fatalf("Then has %d actions, want 1", len(body.Then))
	}
	dw, ok := body.Then[0].(*ast.DoWhile)
	if !ok {
		t.Fatalf("action = %#v, want *ast.DoWhile", body.Then[0])
	}
	if len(dw.Body) != 1 {
		t.Fatalf("DoWhile.Body has %d actions, want 1", len(dw.Body))
	}
	if dw.Cond == nil {
		t.Fatal("DoWhile.Cond is nil, want the parsed \"counter less_than 10\" condition")
	}
}

func TestParseMissingNameRecordsError(t *testing.T) {
	doc := []byte(`
then: "set x to 1"
`)
	_, err := Parse(doc, "test.yaml")
	if err == nil {
		t.Fatal("expected an error for a rule document missing \"name\"")
	}
}
