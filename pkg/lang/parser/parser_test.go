package parser

import (
	"testing"

	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/lang/lexer"
)

func mustExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	e, err := ParseExpressionSource(src)
	if err != nil {
		t.Fatalf("ParseExpressionSource(%q) error: %v", src, err)
	}
	return e
}

func mustCond(t *testing.T, src string) ast.Condition {
	t.Helper()
	c, err := ParseConditionSource(src)
	if err != nil {
		t.Fatalf("ParseConditionSource(%q) error: %v", src, err)
	}
	return c
}

func mustAction(t *testing.T, src string) ast.Action {
	t.Helper()
	a, err := ParseActionSource(src)
	if err != nil {
		t.Fatalf("ParseActionSource(%q) error: %v", src, err)
	}
	return a
}

func TestParseArithmeticPrecedence(t *testing.T) {
	e := mustExpr(t, "1 + 2 * 3")
	bin, ok := e.(*ast.Binary)
	if !ok || bin.Op != ast.BinAdd {
		t.Fatalf("top-level op = %#v, want Binary(+)", e)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.BinMul {
		t.Fatalf("right operand = %#v, want Binary(*) — multiplication should bind tighter than addition", bin.Right)
	}
}

func TestParsePowerIsRightAssociativeOverUnary(t *testing.T) {
	e := mustExpr(t, "2 ** -3")
	bin, ok := e.(*ast.Binary)
	if !ok || bin.Op != ast.BinPow {
		t.Fatalf("expr = %#v, want Binary(**)", e)
	}
	if _, ok := bin.Right.(*ast.Unary); !ok {
		t.Errorf("right operand of ** = %#v, want Unary(negate)", bin.Right)
	}
}

func TestParseComparisonOperatorAliasesNormalize(t *testing.T) {
	wordForm := mustExpr(t, "score at_least 700")
	symbolForm := mustExpr(t, "score >= 700")
	w, ok1 := wordForm.(*ast.Binary)
	s, ok2 := symbolForm.(*ast.Binary)
	if !ok1 || !ok2 {
		t.Fatalf("expected Binary nodes, got %#v and %#v", wordForm, symbolForm)
	}
	if w.Op != ast.BinAtLeast || s.Op != ast.BinAtLeast {
		t.Errorf("operator aliases at_least/>= did not normalize to the same op: %v vs %v", w.Op, s.Op)
	}
}

func TestParseVariablePropertyPath(t *testing.T) {
	e := mustExpr(t, "customer.profile.age")
	v, ok := e.(*ast.Variable)
	if !ok {
		t.Fatalf("expr = %#v, want *Variable", e)
	}
	if v.Name != "customer" || len(v.PropertyPath) != 2 || v.PropertyPath[0] != "profile" || v.PropertyPath[1] != "age" {
		t.Errorf("Variable = %+v, want name=customer path=[profile age]", v)
	}
}

func TestParseIndexedVariable(t *testing.T) {
	e := mustExpr(t, "items[2]")
	v, ok := e.(*ast.Variable)
	if !ok || v.IndexExpr == nil {
		t.Fatalf("expr = %#v, want *Variable with IndexExpr set", e)
	}
}

func TestParseFunctionCall(t *testing.T) {
	e := mustExpr(t, "round(amount, 2)")
	fc, ok := e.(*ast.FunctionCall)
	if !ok || fc.Name != "round" || len(fc.Arguments) != 2 {
		t.Fatalf("expr = %#v, want FunctionCall(round, 2 args)", e)
	}
}

func TestParseListLiteral(t *testing.T) {
	e := mustExpr(t, "[1, 2, 3]")
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LiteralList {
		t.Fatalf("expr = %#v, want list literal", e)
	}
	if elems, ok := lit.Value.([]ast.Expression); !ok || len(elems) != 3 {
		t.Errorf("list literal elements = %#v, want 3 expressions", lit.Value)
	}
}

func TestParseBetweenCondition(t *testing.T) {
	c := mustCond(t, "age between 18 and 65")
	cmp, ok := c.(*ast.Comparison)
	if !ok || cmp.Op != ast.CmpBetween || cmp.RangeEnd == nil {
		t.Fatalf("cond = %#v, want Comparison(between) with RangeEnd set", c)
	}
}

func TestParseLogicalAndOfComparisons(t *testing.T) {
	c := mustCond(t, "credit_score greater_than 700 and debt_to_income less_than 0.4")
	logical, ok := c.(*ast.Logical)
	if !ok || logical.Op != ast.LogAnd || len(logical.Operands) != 2 {
		t.Fatalf("cond = %#v, want Logical(and) with 2 operands", c)
	}
	for _, op := range logical.Operands {
		if _, ok := op.(*ast.Comparison); !ok {
			t.Errorf("operand = %#v, want *Comparison", op)
		}
	}
}

func TestParseBareExpressionConditionCoercesToBoolean(t *testing.T) {
	c := mustCond(t, "is_premium_customer")
	ec, ok := c.(*ast.ExpressionCondition)
	if !ok {
		t.Fatalf("cond = %#v, want *ExpressionCondition wrapping a bare variable", c)
	}
	if _, ok := ec.Expr.(*ast.Variable); !ok {
		t.Errorf("wrapped expr = %#v, want *Variable", ec.Expr)
	}
}

func TestParseSetAction(t *testing.T) {
	a := mustAction(t, "set monthly_payment to principal * rate")
	set, ok := a.(*ast.Set)
	if !ok || set.Variable != "monthly_payment" {
		t.Fatalf("action = %#v, want Set(monthly_payment)", a)
	}
}

func TestParseIfThenElseAction(t *testing.T) {
	a := mustAction(t, "if credit_score greater_than 700 then set tier to \"gold\" else set tier to \"standard\"")
	cond, ok := a.(*ast.Conditional)
	if !ok || len(cond.Then) != 1 || len(cond.Else) != 1 {
		t.Fatalf("action = %#v, want Conditional with 1 then-action and 1 else-action", a)
	}
}

func TestParseArithmeticActions(t *testing.T) {
	a := mustAction(t, "add 100 to balance")
	aa, ok := a.(*ast.ArithmeticAction)
	if !ok || aa.Op != ast.ActAdd || aa.Variable != "balance" {
		t.Fatalf("action = %#v, want ArithmeticAction(add, balance)", a)
	}

	b := mustAction(t, "multiply balance by 1.05")
	ba, ok := b.(*ast.ArithmeticAction)
	if !ok || ba.Op != ast.ActMultiply || ba.Variable != "balance" {
		t.Fatalf("action = %#v, want ArithmeticAction(multiply, balance)", b)
	}
}

func TestParseForEachAction(t *testing.T) {
	a := mustAction(t, "forEach item in items : add item.amount to total")
	fe, ok := a.(*ast.ForEach)
	if !ok || fe.Var != "item" || fe.Index != "" || len(fe.Body) != 1 {
		t.Fatalf("action = %#v, want ForEach(item, body of 1)", a)
	}
}

func TestParseForEachWithIndexAction(t *testing.T) {
	a := mustAction(t, "forEach item, idx in items : set last_index to idx")
	fe, ok := a.(*ast.ForEach)
	if !ok || fe.Index != "idx" {
		t.Fatalf("action = %#v, want ForEach with index variable idx", a)
	}
}

func TestParseWhileAction(t *testing.T) {
	a := mustAction(t, "while balance greater_than 0 : subtract 10 from balance")
	w, ok := a.(*ast.While)
	if !ok || len(w.Body) != 1 {
		t.Fatalf("action = %#v, want While with 1 body action", a)
	}
}

func TestParseDoWhileAction(t *testing.T) {
	a := mustAction(t, "do : subtract 10 from balance while balance greater_than 0")
	dw, ok := a.(*ast.DoWhile)
	if !ok || len(dw.Body) != 1 {
		t.Fatalf("action = %#v, want DoWhile with 1 body action", a)
	}
}

func TestParseCircuitBreakerAction(t *testing.T) {
	a := mustAction(t, `circuit_breaker "too many retries"`)
	cb, ok := a.(*ast.CircuitBreakerAction)
	if !ok || cb.Message != "too many retries" {
		t.Fatalf("action = %#v, want CircuitBreakerAction with message", a)
	}
}

func TestParseCallAction(t *testing.T) {
	a := mustAction(t, "call send_notification with [user_id, \"payment_due\"]")
	fc, ok := a.(*ast.FunctionCallAction)
	if !ok || fc.Name != "send_notification" || len(fc.Arguments) != 2 {
		t.Fatalf("action = %#v, want FunctionCallAction(send_notification, 2 args)", a)
	}
}

func TestParseActionListCommaSeparated(t *testing.T) {
	list, err := ParseActionListSource("set a to 1, set b to 2")
	if err != nil {
		t.Fatalf("ParseActionListSource error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("action list length = %d, want 2", len(list))
	}
}

func TestParseUnexpectedTokenRecordsDiagnostic(t *testing.T) {
	_, err := ParseExpressionSource("+ +")
	if err == nil {
		t.Fatal("expected a parse error for a malformed expression")
	}
}

func TestParseUnclosedGroupRecordsDiagnostic(t *testing.T) {
	_, err := ParseExpressionSource("(1 + 2")
	if err == nil {
		t.Fatal("expected a parse error for an unclosed group")
	}
}

func TestParseMaxDepthExceeded(t *testing.T) {
	// Deeply nested parenthesized groups recurse through logicOr() once per
	// level (via primary()'s "(" expression ")" production).
	src := ""
	for i := 0; i < 50; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < 50; i++ {
		src += ")"
	}

	_, err := parseExpressionWithDepth(src, 5)
	if err == nil {
		t.Fatal("expected PARSE_007 max-depth error for deeply nested groups")
	}
}

func TestParseJsonPathCall(t *testing.T) {
	e := mustExpr(t, `json_path(response, "data.items[0].price")`)
	jp, ok := e.(*ast.JsonPath)
	if !ok {
		t.Fatalf("expr = %#v, want *ast.JsonPath", e)
	}
	if jp.Path != "data.items[0].price" {
		t.Errorf("Path = %q, want %q", jp.Path, "data.items[0].price")
	}
	v, ok := jp.Source.(*ast.Variable)
	if !ok || v.Name != "response" {
		t.Errorf("Source = %#v, want Variable(response)", jp.Source)
	}
}

func TestParseRestCallWithBodyAndTimeout(t *testing.T) {
	e := mustExpr(t, `rest_call("POST", endpoint, payload, 5)`)
	rc, ok := e.(*ast.RestCall)
	if !ok {
		t.Fatalf("expr = %#v, want *ast.RestCall", e)
	}
	if rc.Method != "POST" {
		t.Errorf("Method = %q, want POST", rc.Method)
	}
	if rc.Body == nil {
		t.Error("Body is nil, want the payload expression")
	}
	if rc.Timeout == nil {
		t.Error("Timeout is nil, want the 5-second literal")
	}
}

func TestParseRestCallWithoutOptionalArgs(t *testing.T) {
	e := mustExpr(t, `rest_call("GET", endpoint)`)
	rc, ok := e.(*ast.RestCall)
	if !ok {
		t.Fatalf("expr = %#v, want *ast.RestCall", e)
	}
	if rc.Body != nil || rc.Timeout != nil {
		t.Errorf("rc = %#v, want nil Body and Timeout for a 2-arg call", rc)
	}
}

func parseExpressionWithDepth(src string, depth int) (ast.Expression, error) {
	toks := lexer.New(src, src).Tokenize()
	p := New(toks, src).WithMaxDepth(depth)
	e := p.ParseExpression()
	if p.Errors().HasErrors() {
		return nil, p.Errors().ToError()
	}
	return e, nil
}
