package ast

// Visitor provides an interface for traversing the AST. The evaluator,
// executor, and static validator each implement Visitor to perform their
// own operation (value computation, side-effecting execution, diagnostic
// collection) over the same node shapes.
type Visitor interface {
	// Expressions
	VisitLiteral(*Literal) (interface{}, error)
	VisitVariable(*Variable) (interface{}, error)
	VisitUnary(*Unary) (interface{}, error)
	VisitBinary(*Binary) (interface{}, error)
	VisitArithmeticExpr(*ArithmeticExpr) (interface{}, error)
	VisitFunctionCall(*FunctionCall) (interface{}, error)
	VisitJsonPath(*JsonPath) (interface{}, error)
	VisitRestCall(*RestCall) (interface{}, error)

	// Conditions
	VisitComparison(*Comparison) (interface{}, error)
	VisitLogical(*Logical) (interface{}, error)
	VisitExpressionCondition(*ExpressionCondition) (interface{}, error)

	// Actions
	VisitSet(*Set) (interface{}, error)
	VisitCalculate(*Calculate) (interface{}, error)
	VisitRun(*Run) (interface{}, error)
	VisitAssignment(*Assignment) (interface{}, error)
	VisitFunctionCallAction(*FunctionCallAction) (interface{}, error)
	VisitConditional(*Conditional) (interface{}, error)
	VisitArithmeticAction(*ArithmeticAction) (interface{}, error)
	VisitListAction(*ListAction) (interface{}, error)
	VisitCircuitBreaker(*CircuitBreakerAction) (interface{}, error)
	VisitForEach(*ForEach) (interface{}, error)
	VisitWhile(*While) (interface{}, error)
	VisitDoWhile(*DoWhile) (interface{}, error)
}

// Walk traverses every action (and, transitively, every expression/condition
// reachable from a rule's body) in source order, calling fn for each
// Action node. It is used by the validator and the cache's dependency
// scanner, which don't need double dispatch — just "see everything once".
func Walk(rule *Rule, fn func(Action) error) error {
	return walkBody(rule.Body, fn)
}

func walkBody(body RuleBody, fn func(Action) error) error {
	switch b := body.(type) {
	case *SimpleBody:
		return walkActions(b.Then, fn, func() error { return walkActions(b.Else, fn, nil) })
	case *MultiBody:
		for _, sub := range b.Rules {
			if err := walkBody(sub.Body, fn); err != nil {
				return err
			}
		}
		return nil
	case *ComplexBody:
		if err := walkActionBlock(b.Then, fn); err != nil {
			return err
		}
		if b.Else != nil {
			return walkActionBlock(b.Else, fn)
		}
		return nil
	case *ThenOnlyBody:
		return walkActions(b.Then, fn, nil)
	}
	return nil
}

func walkActionBlock(blk *ActionBlock, fn func(Action) error) error {
	if blk == nil {
		return nil
	}
	if err := walkActions(blk.Actions, fn, nil); err != nil {
		return err
	}
	if blk.Nested != nil {
		return walkBody(blk.Nested, fn)
	}
	return nil
}

func walkActions(actions []Action, fn func(Action) error, then func() error) error {
	for _, a := range actions {
		if err := fn(a); err != nil {
			return err
		}
		if err := walkNestedActions(a, fn); err != nil {
			return err
		}
	}
	if then != nil {
		return then()
	}
	return nil
}

// walkNestedActions descends into action kinds that themselves carry child
// action lists (Conditional, ForEach, While, DoWhile).
func walkNestedActions(a Action, fn func(Action) error) error {
	switch n := a.(type) {
	case *Conditional:
		if err := walkActions(n.Then, fn, nil); err != nil {
			return err
		}
		return walkActions(n.Else, fn, nil)
	case *ForEach:
		return walkActions(n.Body, fn, nil)
	case *While:
		return walkActions(n.Body, fn, nil)
	case *DoWhile:
		return walkActions(n.Body, fn, nil)
	}
	return nil
}
