// Package exec implements the action executor: an ast.Visitor that carries
// out Set/Calculate/Run/Conditional/loop/circuit-breaker actions against a
// shared EvaluationContext, building on the expression evaluator for every
// right-hand-side value it needs.
package exec

import (
	"log/slog"

	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/rule/context"
	"rulecraft/engine/pkg/rule/errors"
	"rulecraft/engine/pkg/rule/eval"
)

// maxLoopIterations bounds while/doWhile execution; exceeding it trips the
// circuit breaker with CodeLoopMaxIterations rather than looping forever.
const maxLoopIterations = 10000

// SideEffectingLookup resolves the side-effecting function table used by
// FunctionCallAction ("call name with [...]"), distinct from the
// expression evaluator's read-only FunctionLookup: these may perform I/O
// (logging, notification) and some write their own named result variable.
type SideEffectingLookup interface {
	Call(ctx *context.EvaluationContext, name string, args []interface{}) (result interface{}, found bool, err error)
}

// Executor carries out a rule's actions. It embeds *eval.Evaluator so the
// expression/condition Visit methods are promoted unchanged; only the
// action-family methods below are overridden.
type Executor struct {
	*eval.Evaluator
	sideEffecting SideEffectingLookup
	logger        *slog.Logger

	conditionResult bool
}

// New constructs an Executor sharing ctx with its embedded Evaluator.
func New(ctx *context.EvaluationContext, functions eval.FunctionLookup, sideEffecting SideEffectingLookup, http eval.HttpClient, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		Evaluator:     eval.New(ctx, functions, http),
		sideEffecting: sideEffecting,
		logger:        logger,
	}
}

// ExecuteRule runs rule.Body to completion (or until the circuit breaker
// trips), returning the first execution error encountered.
func (x *Executor) ExecuteRule(rule *ast.Rule) error {
	return x.executeBody(rule.Body)
}

// ConditionResult reports the outcome of the rule's top-level condition:
// When/If's evaluated value for a Simple/Complex body, true if any sub-rule
// matched for a Multi body, and true unconditionally for a ThenOnly body.
func (x *Executor) ConditionResult() bool {
	return x.conditionResult
}

func (x *Executor) executeBody(body ast.RuleBody) error {
	if tripped, _, _ := x.Ctx.BreakerTripped(); tripped {
		return nil
	}
	switch b := body.(type) {
	case *ast.SimpleBody:
		ok, err := x.evalConjunction(b.When)
		if err != nil {
			return err
		}
		x.conditionResult = ok
		if ok {
			return x.executeActions(b.Then)
		}
		return x.executeActions(b.Else)
	case *ast.MultiBody:
		matched := false
		for _, sub := range b.Rules {
			if tripped, _, _ := x.Ctx.BreakerTripped(); tripped {
				return nil
			}
			if err := x.executeBody(sub.Body); err != nil {
				return err
			}
			matched = matched || x.conditionResult
		}
		x.conditionResult = matched
		return nil
	case *ast.ComplexBody:
		cond := true
		if b.If != nil {
			var err error
			cond, err = x.EvalCond(b.If)
			if err != nil {
				return err
			}
		}
		x.conditionResult = cond
		if cond {
			return x.executeActionBlock(b.Then)
		}
		if b.Else != nil {
			return x.executeActionBlock(b.Else)
		}
		return nil
	case *ast.ThenOnlyBody:
		x.conditionResult = true
		return x.executeActions(b.Then)
	}
	return nil
}

func (x *Executor) executeActionBlock(blk *ast.ActionBlock) error {
	if blk == nil {
		return nil
	}
	if err := x.executeActions(blk.Actions); err != nil {
		return err
	}
	if blk.Nested != nil {
		return x.executeBody(blk.Nested)
	}
	return nil
}

func (x *Executor) evalConjunction(conds []ast.Condition) (bool, error) {
	for _, c := range conds {
		ok, err := x.EvalCond(c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (x *Executor) executeActions(actions []ast.Action) error {
	for _, a := range actions {
		if tripped, _, _ := x.Ctx.BreakerTripped(); tripped {
			return nil
		}
		if x.Ctx.Cancelled() {
			return errors.New(errors.CodeEvalCancelled, "evaluation cancelled", a.Location())
		}
		if _, err := a.Accept(x); err != nil {
			return err
		}
	}
	return nil
}

func (x *Executor) write(name string, value interface{}, loc errors.Location) error {
	if err := x.Ctx.Write(name, value, loc); err != nil {
		x.logger.Warn("rejected computed write", "variable", name, "error", err)
		return err
	}
	return nil
}

// --- Actions --------------------------------------------------------------

func (x *Executor) VisitSet(n *ast.Set) (interface{}, error) {
	v, err := x.Eval(n.Value)
	if err != nil {
		return nil, err
	}
	return nil, x.write(n.Variable, v, n.Location())
}

func (x *Executor) VisitCalculate(n *ast.Calculate) (interface{}, error) {
	v, err := x.Eval(n.Expression)
	if err != nil {
		return nil, err
	}
	return nil, x.write(n.Variable, v, n.Location())
}

func (x *Executor) VisitRun(n *ast.Run) (interface{}, error) {
	v, err := x.Eval(n.Expression)
	if err != nil {
		return nil, err
	}
	return nil, x.write(n.Variable, v, n.Location())
}

func (x *Executor) VisitAssignment(n *ast.Assignment) (interface{}, error) {
	v, err := x.Eval(n.Value)
	if err != nil {
		return nil, err
	}
	return nil, x.write(n.Variable, v, n.Location())
}

func (x *Executor) VisitFunctionCallAction(n *ast.FunctionCallAction) (interface{}, error) {
	args := make([]interface{}, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := x.Eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if x.sideEffecting == nil {
		x.Ctx.RecordDiagnostic("unknown_function", "no side-effecting function table configured; call to \""+n.Name+"\" ignored", n.Location())
		return nil, nil
	}
	result, found, err := x.sideEffecting.Call(x.Ctx, n.Name, args)
	if err != nil {
		return nil, err
	}
	if !found {
		x.Ctx.RecordDiagnostic("unknown_function", "call to undefined function \""+n.Name+"\"", n.Location())
		return nil, nil
	}
	if n.ResultVariable != "" {
		if err := x.write(n.ResultVariable, result, n.Location()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (x *Executor) VisitConditional(n *ast.Conditional) (interface{}, error) {
	ok, err := x.EvalCond(n.Cond)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, x.executeActions(n.Then)
	}
	return nil, x.executeActions(n.Else)
}

func (x *Executor) VisitArithmeticAction(n *ast.ArithmeticAction) (interface{}, error) {
	current, _ := x.Ctx.Resolve(n.Variable)
	delta, err := x.Eval(n.Value)
	if err != nil {
		return nil, err
	}
	result, err := applyCompoundOp(n.Op, current, delta, n.Location())
	if err != nil {
		return nil, err
	}
	return nil, x.write(n.Variable, result, n.Location())
}

func (x *Executor) VisitListAction(n *ast.ListAction) (interface{}, error) {
	current, _ := x.Ctx.Resolve(n.ListVariable)
	list, ok := current.([]interface{})
	if !ok && current != nil {
		list = []interface{}{current}
	}
	v, err := x.Eval(n.Value)
	if err != nil {
		return nil, err
	}
	var result []interface{}
	switch n.Op {
	case ast.ListAppend:
		result = append(append([]interface{}{}, list...), v)
	case ast.ListPrepend:
		result = append([]interface{}{v}, list...)
	case ast.ListRemove:
		result = removeFirstMatch(list, v)
	}
	return nil, x.write(n.ListVariable, result, n.Location())
}

func (x *Executor) VisitCircuitBreaker(n *ast.CircuitBreakerAction) (interface{}, error) {
	x.Ctx.TripBreaker(n.Message, n.ErrorCode)
	x.logger.Warn("circuit breaker tripped", "message", n.Message, "error_code", n.ErrorCode, "operation_id", x.Ctx.OperationID())
	return nil, nil
}

func (x *Executor) VisitForEach(n *ast.ForEach) (interface{}, error) {
	iterV, err := x.Eval(n.Iterable)
	if err != nil {
		return nil, err
	}
	list, _ := iterV.([]interface{})

	prevVar, hadVar := x.Ctx.Resolve(n.Var)
	var prevIdx interface{}
	var hadIdx bool
	if n.Index != "" {
		prevIdx, hadIdx = x.Ctx.Resolve(n.Index)
	}
	defer restoreBinding(x.Ctx, n.Var, prevVar, hadVar)
	if n.Index != "" {
		defer restoreBinding(x.Ctx, n.Index, prevIdx, hadIdx)
	}

	for i, item := range list {
		if tripped, _, _ := x.Ctx.BreakerTripped(); tripped {
			return nil, nil
		}
		if x.Ctx.Cancelled() {
			return nil, errors.New(errors.CodeEvalCancelled, "evaluation cancelled", n.Location())
		}
		if err := x.write(n.Var, item, n.Location()); err != nil {
			return nil, err
		}
		if n.Index != "" {
			if err := x.write(n.Index, indexValue(i), n.Location()); err != nil {
				return nil, err
			}
		}
		if err := x.executeActions(n.Body); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (x *Executor) VisitWhile(n *ast.While) (interface{}, error) {
	for i := 0; ; i++ {
		if i >= maxLoopIterations {
			x.Ctx.TripBreaker("while loop exceeded maximum iteration count", string(errors.CodeLoopMaxIterations))
			return nil, nil
		}
		if tripped, _, _ := x.Ctx.BreakerTripped(); tripped {
			return nil, nil
		}
		ok, err := x.EvalCond(n.Cond)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if err := x.executeActions(n.Body); err != nil {
			return nil, err
		}
	}
}

func (x *Executor) VisitDoWhile(n *ast.DoWhile) (interface{}, error) {
	for i := 0; ; i++ {
		if i >= maxLoopIterations {
			x.Ctx.TripBreaker("do-while loop exceeded maximum iteration count", string(errors.CodeLoopMaxIterations))
			return nil, nil
		}
		if err := x.executeActions(n.Body); err != nil {
			return nil, err
		}
		if tripped, _, _ := x.Ctx.BreakerTripped(); tripped {
			return nil, nil
		}
		ok, err := x.EvalCond(n.Cond)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}
}

func restoreBinding(ctx *context.EvaluationContext, name string, prev interface{}, had bool) {
	if had {
		_ = ctx.Write(name, prev, errors.Location{})
		return
	}
	ctx.Delete(name)
}

func removeFirstMatch(list []interface{}, target interface{}) []interface{} {
	out := make([]interface{}, 0, len(list))
	removed := false
	for _, item := range list {
		if !removed && valuesEqualPublic(item, target) {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out
}
