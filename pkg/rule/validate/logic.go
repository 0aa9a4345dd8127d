package validate

import (
	"fmt"

	"rulecraft/engine/pkg/lang/ast"
)

// checkLogic flags conditions and actions that are syntactically valid but
// semantically suspect (spec.md §4.I check 4): contradictory/redundant
// comparisons, impossible ranges, floating-point equality, literal
// division by zero, and self-assignment.
func checkLogic(rule *ast.Rule) []Issue {
	var issues []Issue

	_ = ast.Walk(rule, func(a ast.Action) error {
		exprs, conds := actionExpressions(a)
		for _, c := range conds {
			issues = append(issues, checkLogicalNode(c)...)
		}
		for _, e := range exprs {
			issues = append(issues, checkDivisorExpr(e)...)
		}
		if name, val := selfAssignment(a); name != "" {
			issues = append(issues, Issue{
				Code: "LOGIC_006", Category: CategoryLogic, Severity: SeverityWarning,
				Message:    fmt.Sprintf("%q is assigned to itself", name),
				Suggestion: "remove the redundant assignment",
				Location:   val.Location().String(),
			})
		}
		return nil
	})

	return issues
}

// checkLogicalNode recurses into a Logical tree looking for a same-operand
// equals/not_equals pair under one "and", and floating-point equality
// comparisons.
func checkLogicalNode(cond ast.Condition) []Issue {
	var issues []Issue
	switch n := cond.(type) {
	case *ast.Logical:
		if n.Op == ast.LogAnd {
			issues = append(issues, findContradictions(n.Operands)...)
			issues = append(issues, findRedundantComparisons(n.Operands)...)
		}
		for _, o := range n.Operands {
			issues = append(issues, checkLogicalNode(o)...)
		}
	case *ast.Comparison:
		issues = append(issues, checkComparison(n)...)
	}
	return issues
}

func findContradictions(operands []ast.Condition) []Issue {
	var issues []Issue
	cmps := comparisonsOf(operands)
	for i := 0; i < len(cmps); i++ {
		for j := i + 1; j < len(cmps); j++ {
			a, b := cmps[i], cmps[j]
			if !sameOperands(a, b) {
				continue
			}
			if (a.Op == ast.CmpEqual && b.Op == ast.CmpNotEqual) ||
				(a.Op == ast.CmpNotEqual && b.Op == ast.CmpEqual) {
				issues = append(issues, Issue{
					Code: "LOGIC_001", Category: CategoryLogic, Severity: SeverityError,
					Message:    "condition requires a value to both equal and not equal the same operand",
					Suggestion: "remove one of the contradictory comparisons",
					Location:   a.Location().String(),
				})
			}
		}
	}
	return issues
}

func findRedundantComparisons(operands []ast.Condition) []Issue {
	var issues []Issue
	cmps := comparisonsOf(operands)
	for i := 0; i < len(cmps); i++ {
		for j := i + 1; j < len(cmps); j++ {
			a, b := cmps[i], cmps[j]
			if !sameOperands(a, b) {
				continue
			}
			if (a.Op == ast.CmpAtLeast && b.Op == ast.CmpGreaterThan) ||
				(a.Op == ast.CmpGreaterThan && b.Op == ast.CmpAtLeast) ||
				(a.Op == ast.CmpAtMost && b.Op == ast.CmpLessThan) ||
				(a.Op == ast.CmpLessThan && b.Op == ast.CmpAtMost) {
				issues = append(issues, Issue{
					Code: "LOGIC_002", Category: CategoryLogic, Severity: SeverityWarning,
					Message:    "comparison is redundant alongside a stricter one on the same operands",
					Suggestion: "drop the weaker comparison",
					Location:   a.Location().String(),
				})
			}
		}
	}
	return issues
}

func comparisonsOf(conds []ast.Condition) []*ast.Comparison {
	var out []*ast.Comparison
	for _, c := range conds {
		if cmp, ok := c.(*ast.Comparison); ok {
			out = append(out, cmp)
		}
	}
	return out
}

// sameOperands reports whether two comparisons reference the same Left
// variable name, a conservative heuristic good enough to catch the common
// copy-paste contradiction.
func sameOperands(a, b *ast.Comparison) bool {
	va, ok1 := a.Left.(*ast.Variable)
	vb, ok2 := b.Left.(*ast.Variable)
	return ok1 && ok2 && va.Name == vb.Name
}

func checkComparison(cmp *ast.Comparison) []Issue {
	var issues []Issue
	if cmp.Op == ast.CmpBetween || cmp.Op == ast.CmpNotBetween {
		lo, loOK := literalFloat(cmp.Right)
		hi, hiOK := literalFloat(cmp.RangeEnd)
		if loOK && hiOK && lo > hi {
			issues = append(issues, Issue{
				Code: "LOGIC_003", Category: CategoryLogic, Severity: SeverityError,
				Message:    "between range's lower bound is greater than its upper bound",
				Suggestion: "swap the bounds, or confirm the range is intentional",
				Location:   cmp.Location().String(),
			})
		}
	}
	if cmp.Op == ast.CmpEqual || cmp.Op == ast.CmpNotEqual {
		if isNonIntegerFloatLiteral(cmp.Left) || isNonIntegerFloatLiteral(cmp.Right) {
			issues = append(issues, Issue{
				Code: "LOGIC_004", Category: CategoryLogic, Severity: SeverityWarning,
				Message:    "exact equality against a non-integer decimal literal is fragile",
				Suggestion: "use between, or compare against a rounded value",
				Location:   cmp.Location().String(),
			})
		}
	}
	return issues
}

func isNonIntegerFloatLiteral(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LiteralNumber {
		return false
	}
	f, ok := lit.Value.(float64)
	return ok && f != float64(int64(f))
}

func literalFloat(e ast.Expression) (float64, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LiteralNumber {
		return 0, false
	}
	f, ok := lit.Value.(float64)
	return f, ok
}

func checkDivisorExpr(e ast.Expression) []Issue {
	var issues []Issue
	var walk func(ast.Expression)
	walk = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.Binary:
			if n.Op == ast.BinDiv || n.Op == ast.BinMod {
				if f, ok := literalFloat(n.Right); ok && f == 0 {
					issues = append(issues, Issue{
						Code: "LOGIC_005", Category: CategoryLogic, Severity: SeverityCritical,
						Message:    "division by a literal zero always fails at evaluation time",
						Suggestion: "fix the divisor; this will raise EVAL_DIV_BY_ZERO on every run",
						Location:   n.Location().String(),
					})
				}
			}
			walk(n.Left)
			walk(n.Right)
		case *ast.ArithmeticExpr:
			if n.Op == ast.ArithDivide {
				for _, o := range n.Operands[1:] {
					if f, ok := literalFloat(o); ok && f == 0 {
						issues = append(issues, Issue{
							Code: "LOGIC_005", Category: CategoryLogic, Severity: SeverityCritical,
							Message:    "division by a literal zero always fails at evaluation time",
							Suggestion: "fix the divisor; this will raise EVAL_DIV_BY_ZERO on every run",
							Location:   n.Location().String(),
						})
					}
				}
			}
			for _, o := range n.Operands {
				walk(o)
			}
		}
	}
	walk(e)
	return issues
}

// selfAssignment detects "set x to x" with no property path, index, or
// computation involved.
func selfAssignment(a ast.Action) (string, ast.Expression) {
	var name string
	var val ast.Expression
	switch n := a.(type) {
	case *ast.Set:
		name, val = n.Variable, n.Value
	case *ast.Calculate:
		name, val = n.Variable, n.Expression
	case *ast.Assignment:
		name, val = n.Variable, n.Value
	default:
		return "", nil
	}
	v, ok := val.(*ast.Variable)
	if ok && v.Name == name && len(v.PropertyPath) == 0 && v.IndexExpr == nil {
		return name, val
	}
	return "", nil
}
