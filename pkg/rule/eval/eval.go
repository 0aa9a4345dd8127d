// Package eval implements the expression/condition evaluator: an
// ast.Visitor that walks Expression and Condition nodes against an
// *context.EvaluationContext and produces dynamic values (decimal.Decimal,
// string, bool, []interface{}, map[string]interface{}, or nil).
//
// Evaluator also satisfies the Action-family methods of ast.Visitor so it
// implements the full interface, but those are never meaningfully invoked:
// pkg/rule/exec.Executor embeds *Evaluator and overrides every action
// method, relying on the expression/condition methods promoted from the
// embedded Evaluator.
package eval

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/rule/context"
	"rulecraft/engine/pkg/rule/errors"
)

// HttpClient is the collaborator the evaluator uses to perform RestCall
// expressions. The engine supplies a real implementation; tests supply a
// stub.
type HttpClient interface {
	Do(method, url string, headers map[string]string, body string, timeout time.Duration) (status int, respBody string, err error)
}

// FunctionLookup resolves built-in (and user-extended) function calls.
// found is false for an unrecognized name, which the evaluator turns into
// a warning + null result rather than a hard error (spec.md §4.F).
type FunctionLookup interface {
	Call(name string, args []interface{}) (result interface{}, found bool, err error)
}

// Evaluator computes Expression/Condition node values against a shared
// EvaluationContext.
type Evaluator struct {
	Ctx       *context.EvaluationContext
	Functions FunctionLookup
	Http      HttpClient
}

// New constructs an Evaluator. functions or http may be nil; RestCall and
// function-call nodes then fail/degrade gracefully rather than panicking.
func New(ctx *context.EvaluationContext, functions FunctionLookup, http HttpClient) *Evaluator {
	return &Evaluator{Ctx: ctx, Functions: functions, Http: http}
}

// Eval evaluates any Expression node.
func (e *Evaluator) Eval(expr ast.Expression) (interface{}, error) {
	return expr.Accept(e)
}

// EvalCond evaluates any Condition node to a bool.
func (e *Evaluator) EvalCond(cond ast.Condition) (bool, error) {
	v, err := cond.Accept(e)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

func (e *Evaluator) cancelErr(loc errors.Location) error {
	return errors.New(errors.CodeEvalCancelled, "evaluation cancelled", loc)
}

// --- Expressions ---------------------------------------------------------

func (e *Evaluator) VisitLiteral(n *ast.Literal) (interface{}, error) {
	switch n.Kind {
	case ast.LiteralNumber:
		switch v := n.Value.(type) {
		case float64:
			return decimal.NewFromFloat(v), nil
		case decimal.Decimal:
			return v, nil
		}
		return decimal.Zero, nil
	case ast.LiteralList:
		if exprs, ok := n.Value.([]ast.Expression); ok {
			out := make([]interface{}, len(exprs))
			for i, sub := range exprs {
				v, err := e.Eval(sub)
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return out, nil
		}
		return []interface{}{}, nil
	case ast.LiteralNull:
		return nil, nil
	default:
		return n.Value, nil
	}
}

func (e *Evaluator) VisitVariable(n *ast.Variable) (interface{}, error) {
	if e.Ctx.Cancelled() {
		return nil, e.cancelErr(n.Location())
	}
	v, ok := e.Ctx.Resolve(n.Name)
	if !ok {
		e.Ctx.RecordDiagnostic("undefined_variable", "reference to undefined variable \""+n.Name+"\"", n.Location())
		return nil, nil
	}
	for _, prop := range n.PropertyPath {
		v = resolveProperty(v, prop)
	}
	if n.IndexExpr != nil {
		idx, err := e.Eval(n.IndexExpr)
		if err != nil {
			return nil, err
		}
		v = resolveIndex(v, idx)
	}
	return v, nil
}

// resolveProperty implements spec.md's property-access rule: map key,
// else a bean-style get<X>/is<X> accessor, else a direct struct field —
// the last two don't apply to our purely dynamic (map/slice) runtime
// values, so only map-key lookup is meaningful here.
func resolveProperty(v interface{}, prop string) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return m[prop]
}

func resolveIndex(v interface{}, idx interface{}) interface{} {
	list, ok := toListValue(v)
	if !ok {
		return nil
	}
	d, ok := toDecimal(idx)
	if !ok {
		return nil
	}
	i := int(d.IntPart())
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

func (e *Evaluator) VisitUnary(n *ast.Unary) (interface{}, error) {
	switch n.Op {
	case ast.OpExists:
		v, err := e.Eval(n.Operand)
		return v != nil, err
	case ast.OpIsNull:
		v, err := e.Eval(n.Operand)
		if err != nil {
			return nil, err
		}
		return v == nil, nil
	}

	v, err := e.Eval(n.Operand)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpNegate:
		d, ok := toDecimal(v)
		if !ok {
			return nil, errors.New(errors.CodeEvalTypeError, "cannot negate a non-numeric value", n.Location())
		}
		return d.Neg(), nil
	case ast.OpNot:
		return !toBoolValue(v), nil
	case ast.OpIsNumber:
		return isNumeric(v), nil
	case ast.OpIsString:
		_, ok := v.(string)
		return ok, nil
	case ast.OpIsBool:
		_, ok := v.(bool)
		return ok, nil
	case ast.OpIsList:
		_, ok := toListValue(v)
		return ok, nil
	case ast.OpToUpper:
		return upper(toStringValue(v)), nil
	case ast.OpToLower:
		return lower(toStringValue(v)), nil
	case ast.OpTrim:
		return trimSpace(toStringValue(v)), nil
	case ast.OpLength:
		return decimal.NewFromInt(int64(lengthOf(v))), nil
	}
	return nil, errors.New(errors.CodeEvalInternal, fmt.Sprintf("unhandled unary operator %q", n.Op), n.Location())
}

func (e *Evaluator) VisitBinary(n *ast.Binary) (interface{}, error) {
	left, err := e.Eval(n.Left)
	if err != nil {
		return nil, err
	}

	if n.Op == ast.BinAnd {
		if !toBoolValue(left) {
			return false, nil
		}
		right, err := e.Eval(n.Right)
		if err != nil {
			return nil, err
		}
		return toBoolValue(right), nil
	}
	if n.Op == ast.BinOr {
		if toBoolValue(left) {
			return true, nil
		}
		right, err := e.Eval(n.Right)
		if err != nil {
			return nil, err
		}
		return toBoolValue(right), nil
	}

	right, err := e.Eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.BinAdd:
		return evalAdd(left, right)
	case ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinMod, ast.BinPow:
		return evalArith(n.Op, left, right, n.Location())
	case ast.BinEqual:
		return valuesEqual(left, right), nil
	case ast.BinNotEqual:
		return !valuesEqual(left, right), nil
	case ast.BinGreater, ast.BinLess, ast.BinAtLeast, ast.BinAtMost:
		return compareNumeric(n.Op, left, right, n.Location())
	case ast.BinContains:
		return containsOp(left, right), nil
	case ast.BinStartsWith:
		return hasPrefix(toStringValue(left), toStringValue(right)), nil
	case ast.BinEndsWith:
		return hasSuffix(toStringValue(left), toStringValue(right)), nil
	case ast.BinMatches:
		return matchesOp(e, toStringValue(left), toStringValue(right), n.Location()), nil
	case ast.BinInList:
		return inList(left, right), nil
	}
	return nil, errors.New(errors.CodeEvalInternal, fmt.Sprintf("unhandled binary operator %q", n.Op), n.Location())
}

// evalAdd implements "+"'s dual role: numeric addition when both operands
// are numeric, string concatenation otherwise (spec.md §4.F).
func evalAdd(left, right interface{}) (interface{}, error) {
	if isNumeric(left) && isNumeric(right) {
		dl, _ := toDecimal(left)
		dr, _ := toDecimal(right)
		return dl.Add(dr), nil
	}
	return toStringValue(left) + toStringValue(right), nil
}

func evalArith(op ast.BinaryOp, left, right interface{}, loc errors.Location) (interface{}, error) {
	dl, ok1 := toDecimal(left)
	dr, ok2 := toDecimal(right)
	if !ok1 || !ok2 {
		return nil, errors.New(errors.CodeEvalTypeError, fmt.Sprintf("operator %q requires numeric operands", op), loc)
	}
	switch op {
	case ast.BinSub:
		return dl.Sub(dr), nil
	case ast.BinMul:
		return dl.Mul(dr), nil
	case ast.BinDiv:
		if dr.IsZero() {
			return nil, errors.New(errors.CodeEvalDivByZero, "division by zero", loc)
		}
		return dl.DivRound(dr, DivScale), nil
	case ast.BinMod:
		if dr.IsZero() {
			return nil, errors.New(errors.CodeEvalDivByZero, "modulo by zero", loc)
		}
		return dl.Mod(dr), nil
	case ast.BinPow:
		return decimalPow(dl, dr), nil
	}
	return nil, errors.New(errors.CodeEvalInternal, "unreachable arithmetic operator", loc)
}

func compareNumeric(op ast.BinaryOp, left, right interface{}, loc errors.Location) (interface{}, error) {
	dl, ok1 := toDecimal(left)
	dr, ok2 := toDecimal(right)
	if !ok1 || !ok2 {
		return nil, errors.New(errors.CodeEvalTypeError, fmt.Sprintf("operator %q requires numeric operands, got %T and %T", op, left, right), loc)
	}
	switch op {
	case ast.BinGreater:
		return dl.GreaterThan(dr), nil
	case ast.BinLess:
		return dl.LessThan(dr), nil
	case ast.BinAtLeast:
		return dl.GreaterThanOrEqual(dr), nil
	case ast.BinAtMost:
		return dl.LessThanOrEqual(dr), nil
	}
	return false, nil
}

func containsOp(left, right interface{}) bool {
	if list, ok := toListValue(left); ok {
		for _, item := range list {
			if valuesEqual(item, right) {
				return true
			}
		}
		return false
	}
	return contains(toStringValue(left), toStringValue(right))
}

func inList(left, right interface{}) bool {
	list, ok := toListValue(right)
	if !ok {
		return false
	}
	for _, item := range list {
		if valuesEqual(item, left) {
			return true
		}
	}
	return false
}

// matchesOp applies a regular expression match. An invalid pattern is a
// warning, never a hard error, and evaluates to false (spec.md's resolved
// "matches" Open Question).
func matchesOp(e *Evaluator, subject, pattern string, loc errors.Location) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		e.Ctx.RecordDiagnostic("invalid_regex", "invalid \"matches\" pattern: "+err.Error(), loc)
		return false
	}
	return re.FindStringIndex(subject) != nil
}

func (e *Evaluator) VisitArithmeticExpr(n *ast.ArithmeticExpr) (interface{}, error) {
	operands := make([]decimal.Decimal, len(n.Operands))
	for i, o := range n.Operands {
		v, err := e.Eval(o)
		if err != nil {
			return nil, err
		}
		d, ok := toDecimal(v)
		if !ok {
			return nil, errors.New(errors.CodeEvalTypeError, fmt.Sprintf("%s requires numeric operands", n.Op), n.Location())
		}
		operands[i] = d
	}
	switch n.Op {
	case ast.ArithAdd, ast.ArithSum:
		return sumDecimals(operands), nil
	case ast.ArithSubtract:
		return foldDecimals(operands, func(a, b decimal.Decimal) decimal.Decimal { return a.Sub(b) }), nil
	case ast.ArithMultiply:
		return foldDecimals(operands, func(a, b decimal.Decimal) decimal.Decimal { return a.Mul(b) }), nil
	case ast.ArithDivide:
		return foldDivide(operands, n.Location())
	case ast.ArithModulo:
		return foldDecimals(operands, func(a, b decimal.Decimal) decimal.Decimal { return a.Mod(b) }), nil
	case ast.ArithPower:
		return foldDecimals(operands, decimalPow), nil
	case ast.ArithMin:
		return minDecimals(operands), nil
	case ast.ArithMax:
		return maxDecimals(operands), nil
	case ast.ArithAverage:
		if len(operands) == 0 {
			return decimal.Zero, nil
		}
		return sumDecimals(operands).DivRound(decimal.NewFromInt(int64(len(operands))), DivScale), nil
	case ast.ArithAbs:
		return operands[0].Abs(), nil
	case ast.ArithRound:
		return operands[0].Round(0), nil
	case ast.ArithFloor:
		return operands[0].Floor(), nil
	case ast.ArithCeil:
		return operands[0].Ceil(), nil
	case ast.ArithSqrt:
		f, _ := operands[0].Float64()
		if f < 0 {
			return nil, nil
		}
		return decimal.NewFromFloat(sqrtFloat(f)), nil
	}
	return nil, errors.New(errors.CodeEvalInternal, fmt.Sprintf("unhandled arithmetic op %q", n.Op), n.Location())
}

func (e *Evaluator) VisitFunctionCall(n *ast.FunctionCall) (interface{}, error) {
	args := make([]interface{}, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := e.Eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if e.Functions == nil {
		e.Ctx.RecordDiagnostic("unknown_function", "no function table configured; call to \""+n.Name+"\" ignored", n.Location())
		return nil, nil
	}
	result, found, err := e.Functions.Call(n.Name, args)
	if err != nil {
		return nil, err
	}
	if !found {
		e.Ctx.RecordDiagnostic("unknown_function", "call to undefined function \""+n.Name+"\"", n.Location())
		return nil, nil
	}
	return result, nil
}

func (e *Evaluator) VisitJsonPath(n *ast.JsonPath) (interface{}, error) {
	src, err := e.Eval(n.Source)
	if err != nil {
		return nil, err
	}
	return resolveJSONPath(src, n.Path), nil
}

func (e *Evaluator) VisitRestCall(n *ast.RestCall) (interface{}, error) {
	if e.Http == nil {
		return nil, errors.New(errors.CodeExtUnavailable, "no HTTP client configured for rest_call", n.Location())
	}
	urlV, err := e.Eval(n.URL)
	if err != nil {
		return nil, err
	}
	var bodyStr string
	if n.Body != nil {
		b, err := e.Eval(n.Body)
		if err != nil {
			return nil, err
		}
		bodyStr = toStringValue(b)
	}
	headers := make(map[string]string, len(n.Headers))
	for k, hv := range n.Headers {
		v, err := e.Eval(hv)
		if err != nil {
			return nil, err
		}
		headers[k] = toStringValue(v)
	}
	timeout := 30 * time.Second
	if n.Timeout != nil {
		tv, err := e.Eval(n.Timeout)
		if err != nil {
			return nil, err
		}
		if d, ok := toDecimal(tv); ok {
			timeout = time.Duration(d.IntPart()) * time.Second
		}
	}
	status, body, err := e.Http.Do(n.Method, toStringValue(urlV), headers, bodyStr, timeout)
	if err != nil {
		return nil, errors.New(errors.CodeExtUnavailable, "rest_call failed: "+err.Error(), n.Location())
	}
	return map[string]interface{}{"status": decimal.NewFromInt(int64(status)), "body": body}, nil
}

// --- Conditions ------------------------------------------------------------

func (e *Evaluator) VisitComparison(n *ast.Comparison) (interface{}, error) {
	left, err := e.Eval(n.Left)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.CmpBetween, ast.CmpNotBetween:
		lo, err := e.Eval(n.Right)
		if err != nil {
			return nil, err
		}
		hi, err := e.Eval(n.RangeEnd)
		if err != nil {
			return nil, err
		}
		dv, ok1 := toDecimal(left)
		dlo, ok2 := toDecimal(lo)
		dhi, ok3 := toDecimal(hi)
		if !ok1 || !ok2 || !ok3 {
			return nil, errors.New(errors.CodeEvalTypeError, "between requires numeric operands", n.Location())
		}
		inRange := (dv.GreaterThanOrEqual(dlo) && dv.LessThanOrEqual(dhi)) ||
			(dv.GreaterThanOrEqual(dhi) && dv.LessThanOrEqual(dlo))
		if n.Op == ast.CmpNotBetween {
			return !inRange, nil
		}
		return inRange, nil
	}

	right, err := e.Eval(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.CmpEqual:
		return valuesEqual(left, right), nil
	case ast.CmpNotEqual:
		return !valuesEqual(left, right), nil
	case ast.CmpGreaterThan:
		return compareNumeric(ast.BinGreater, left, right, n.Location())
	case ast.CmpLessThan:
		return compareNumeric(ast.BinLess, left, right, n.Location())
	case ast.CmpAtLeast:
		return compareNumeric(ast.BinAtLeast, left, right, n.Location())
	case ast.CmpAtMost:
		return compareNumeric(ast.BinAtMost, left, right, n.Location())
	case ast.CmpContains:
		return containsOp(left, right), nil
	case ast.CmpStartsWith:
		return hasPrefix(toStringValue(left), toStringValue(right)), nil
	case ast.CmpEndsWith:
		return hasSuffix(toStringValue(left), toStringValue(right)), nil
	case ast.CmpMatches:
		return matchesOp(e, toStringValue(left), toStringValue(right), n.Location()), nil
	case ast.CmpInList:
		return inList(left, right), nil
	}
	return nil, errors.New(errors.CodeEvalInternal, fmt.Sprintf("unhandled comparison op %q", n.Op), n.Location())
}

func (e *Evaluator) VisitLogical(n *ast.Logical) (interface{}, error) {
	switch n.Op {
	case ast.LogNot:
		if len(n.Operands) != 1 {
			return nil, errors.New(errors.CodeEvalInternal, "not requires exactly one operand", n.Location())
		}
		v, err := e.EvalCond(n.Operands[0])
		if err != nil {
			return nil, err
		}
		return !v, nil
	case ast.LogAnd:
		for _, o := range n.Operands {
			v, err := e.EvalCond(o)
			if err != nil {
				return nil, err
			}
			if !v {
				return false, nil
			}
		}
		return true, nil
	case ast.LogOr:
		for _, o := range n.Operands {
			v, err := e.EvalCond(o)
			if err != nil {
				return nil, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil
	}
	return nil, errors.New(errors.CodeEvalInternal, fmt.Sprintf("unhandled logical op %q", n.Op), n.Location())
}

func (e *Evaluator) VisitExpressionCondition(n *ast.ExpressionCondition) (interface{}, error) {
	if n.Expr == nil {
		return true, nil
	}
	v, err := e.Eval(n.Expr)
	if err != nil {
		return nil, err
	}
	return toBoolValue(v), nil
}

// --- Actions (stubs; pkg/rule/exec.Executor overrides these) --------------

func (e *Evaluator) actionStub(name string, loc errors.Location) (interface{}, error) {
	return nil, errors.New(errors.CodeEvalInternal,
		name+" was Accept()-ed on a plain Evaluator; action nodes must be executed by pkg/rule/exec.Executor", loc)
}

func (e *Evaluator) VisitSet(n *ast.Set) (interface{}, error) { return e.actionStub("Set", n.Location()) }
func (e *Evaluator) VisitCalculate(n *ast.Calculate) (interface{}, error) {
	return e.actionStub("Calculate", n.Location())
}
func (e *Evaluator) VisitRun(n *ast.Run) (interface{}, error) { return e.actionStub("Run", n.Location()) }
func (e *Evaluator) VisitAssignment(n *ast.Assignment) (interface{}, error) {
	return e.actionStub("Assignment", n.Location())
}
func (e *Evaluator) VisitFunctionCallAction(n *ast.FunctionCallAction) (interface{}, error) {
	return e.actionStub("FunctionCallAction", n.Location())
}
func (e *Evaluator) VisitConditional(n *ast.Conditional) (interface{}, error) {
	return e.actionStub("Conditional", n.Location())
}
func (e *Evaluator) VisitArithmeticAction(n *ast.ArithmeticAction) (interface{}, error) {
	return e.actionStub("ArithmeticAction", n.Location())
}
func (e *Evaluator) VisitListAction(n *ast.ListAction) (interface{}, error) {
	return e.actionStub("ListAction", n.Location())
}
func (e *Evaluator) VisitCircuitBreaker(n *ast.CircuitBreakerAction) (interface{}, error) {
	return e.actionStub("CircuitBreakerAction", n.Location())
}
func (e *Evaluator) VisitForEach(n *ast.ForEach) (interface{}, error) {
	return e.actionStub("ForEach", n.Location())
}
func (e *Evaluator) VisitWhile(n *ast.While) (interface{}, error) {
	return e.actionStub("While", n.Location())
}
func (e *Evaluator) VisitDoWhile(n *ast.DoWhile) (interface{}, error) {
	return e.actionStub("DoWhile", n.Location())
}
