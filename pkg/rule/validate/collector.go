package validate

import "rulecraft/engine/pkg/lang/ast"

// varRef is one variable reference found while walking an expression or
// condition tree, with the location it was referenced at.
type varRef struct {
	name string
	loc  ast.Location
}

// varCollector implements ast.Visitor purely to gather every Variable node
// reachable from an expression or condition; action nodes are never fed to
// it directly (dependencies.go and logic.go walk actions separately via
// ast.Walk and only hand this collector each action's expression/condition
// operands).
type varCollector struct {
	refs []varRef
}

func collectVars(e ast.Expression) []varRef {
	if e == nil {
		return nil
	}
	c := &varCollector{}
	_, _ = e.Accept(c)
	return c.refs
}

func collectCondVars(cond ast.Condition) []varRef {
	if cond == nil {
		return nil
	}
	c := &varCollector{}
	_, _ = cond.Accept(c)
	return c.refs
}

func (c *varCollector) VisitLiteral(n *ast.Literal) (interface{}, error) {
	if n.Kind == ast.LiteralList {
		if items, ok := n.Value.([]ast.Expression); ok {
			for _, item := range items {
				_, _ = item.Accept(c)
			}
		}
	}
	return nil, nil
}

func (c *varCollector) VisitVariable(n *ast.Variable) (interface{}, error) {
	c.refs = append(c.refs, varRef{name: n.Name, loc: n.Location()})
	if n.IndexExpr != nil {
		_, _ = n.IndexExpr.Accept(c)
	}
	return nil, nil
}

func (c *varCollector) VisitUnary(n *ast.Unary) (interface{}, error) {
	_, _ = n.Operand.Accept(c)
	return nil, nil
}

func (c *varCollector) VisitBinary(n *ast.Binary) (interface{}, error) {
	_, _ = n.Left.Accept(c)
	_, _ = n.Right.Accept(c)
	return nil, nil
}

func (c *varCollector) VisitArithmeticExpr(n *ast.ArithmeticExpr) (interface{}, error) {
	for _, o := range n.Operands {
		_, _ = o.Accept(c)
	}
	return nil, nil
}

func (c *varCollector) VisitFunctionCall(n *ast.FunctionCall) (interface{}, error) {
	for _, a := range n.Arguments {
		_, _ = a.Accept(c)
	}
	return nil, nil
}

func (c *varCollector) VisitJsonPath(n *ast.JsonPath) (interface{}, error) {
	_, _ = n.Source.Accept(c)
	return nil, nil
}

func (c *varCollector) VisitRestCall(n *ast.RestCall) (interface{}, error) {
	_, _ = n.URL.Accept(c)
	if n.Body != nil {
		_, _ = n.Body.Accept(c)
	}
	for _, h := range n.Headers {
		_, _ = h.Accept(c)
	}
	return nil, nil
}

func (c *varCollector) VisitComparison(n *ast.Comparison) (interface{}, error) {
	_, _ = n.Left.Accept(c)
	if n.Right != nil {
		_, _ = n.Right.Accept(c)
	}
	if n.RangeEnd != nil {
		_, _ = n.RangeEnd.Accept(c)
	}
	return nil, nil
}

func (c *varCollector) VisitLogical(n *ast.Logical) (interface{}, error) {
	for _, o := range n.Operands {
		_, _ = o.Accept(c)
	}
	return nil, nil
}

func (c *varCollector) VisitExpressionCondition(n *ast.ExpressionCondition) (interface{}, error) {
	_, _ = n.Expr.Accept(c)
	return nil, nil
}

// Action nodes are never handed to this collector; stubs satisfy Visitor.
func (c *varCollector) VisitSet(*ast.Set) (interface{}, error)                               { return nil, nil }
func (c *varCollector) VisitCalculate(*ast.Calculate) (interface{}, error)                    { return nil, nil }
func (c *varCollector) VisitRun(*ast.Run) (interface{}, error)                                { return nil, nil }
func (c *varCollector) VisitAssignment(*ast.Assignment) (interface{}, error)                  { return nil, nil }
func (c *varCollector) VisitFunctionCallAction(*ast.FunctionCallAction) (interface{}, error)  { return nil, nil }
func (c *varCollector) VisitConditional(*ast.Conditional) (interface{}, error)                { return nil, nil }
func (c *varCollector) VisitArithmeticAction(*ast.ArithmeticAction) (interface{}, error)      { return nil, nil }
func (c *varCollector) VisitListAction(*ast.ListAction) (interface{}, error)                  { return nil, nil }
func (c *varCollector) VisitCircuitBreaker(*ast.CircuitBreakerAction) (interface{}, error)    { return nil, nil }
func (c *varCollector) VisitForEach(*ast.ForEach) (interface{}, error)                        { return nil, nil }
func (c *varCollector) VisitWhile(*ast.While) (interface{}, error)                            { return nil, nil }
func (c *varCollector) VisitDoWhile(*ast.DoWhile) (interface{}, error)                        { return nil, nil }

// actionExpressions returns the expression/condition operands directly
// carried by one action node, for dependency and logic analysis. It does
// not recurse into nested action lists (ForEach/While/Conditional bodies);
// callers walk those via ast.Walk separately.
func actionExpressions(a ast.Action) (exprs []ast.Expression, conds []ast.Condition) {
	switch n := a.(type) {
	case *ast.Set:
		exprs = append(exprs, n.Value)
	case *ast.Calculate:
		exprs = append(exprs, n.Expression)
	case *ast.Run:
		exprs = append(exprs, n.Expression)
	case *ast.Assignment:
		exprs = append(exprs, n.Value)
	case *ast.FunctionCallAction:
		exprs = append(exprs, n.Arguments...)
	case *ast.Conditional:
		conds = append(conds, n.Cond)
	case *ast.ArithmeticAction:
		exprs = append(exprs, n.Value)
	case *ast.ListAction:
		exprs = append(exprs, n.Value)
	case *ast.ForEach:
		exprs = append(exprs, n.Iterable)
	case *ast.While:
		conds = append(conds, n.Cond)
	case *ast.DoWhile:
		conds = append(conds, n.Cond)
	}
	return exprs, conds
}

// actionWrites returns the variable name one action writes, or "" for
// Conditional/ForEach/While/DoWhile, whose nested actions ast.Walk visits
// separately. The loop and index variables a ForEach binds in the computed
// namespace are not reported.
func actionWrites(a ast.Action) string {
	switch n := a.(type) {
	case *ast.Set:
		return n.Variable
	case *ast.Calculate:
		return n.Variable
	case *ast.Run:
		return n.Variable
	case *ast.Assignment:
		return n.Variable
	case *ast.FunctionCallAction:
		return n.ResultVariable
	case *ast.ArithmeticAction:
		return n.Variable
	case *ast.ListAction:
		return n.ListVariable
	}
	return ""
}
