package validate

import (
	"fmt"

	"rulecraft/engine/pkg/lang/ast"
)

const (
	maxLogicalOperandsBeforeWarn = 2
	maxConditionCharsBeforeWarn  = 100
	maxActionsPerBlockBeforeWarn = 10
)

// checkPerformance flags shapes that are correct but costly to evaluate
// repeatedly (spec.md §4.I check 5): deeply chained logical operators,
// long conditions, and oversized then/else blocks.
func checkPerformance(rule *ast.Rule) []Issue {
	var issues []Issue

	for _, cond := range conditionsOf(rule) {
		issues = append(issues, checkConditionSize(cond)...)
	}

	for _, actions := range actionBlocksOf(rule) {
		if len(actions) > maxActionsPerBlockBeforeWarn {
			loc := "rule"
			if len(actions) > 0 {
				loc = actions[0].Location().String()
			}
			issues = append(issues, Issue{
				Code: "PERF_002", Category: CategoryPerformance, Severity: SeverityWarning,
				Message:    fmt.Sprintf("action block has %d actions, consider splitting into sub-rules", len(actions)),
				Suggestion: "break large then/else blocks into a multi-rule body",
				Location:   loc,
			})
		}
	}

	return issues
}

func checkConditionSize(cond ast.Condition) []Issue {
	var issues []Issue
	if n, ok := cond.(*ast.Logical); ok && len(n.Operands) > maxLogicalOperandsBeforeWarn {
		issues = append(issues, Issue{
			Code: "PERF_001", Category: CategoryPerformance, Severity: SeverityWarning,
			Message:    fmt.Sprintf("condition chains %d logical operands, consider extracting sub-conditions", len(n.Operands)),
			Suggestion: "split into nested sub-rules or helper constants",
			Location:   cond.Location().String(),
		})
	}
	if n := conditionCharLength(cond); n > maxConditionCharsBeforeWarn {
		issues = append(issues, Issue{
			Code: "PERF_003", Category: CategoryPerformance, Severity: SeverityInfo,
			Message:    fmt.Sprintf("condition estimated length %d suggests a long expression", n),
			Suggestion: "factor repeated sub-expressions into computed variables",
			Location:   cond.Location().String(),
		})
	}
	return issues
}

// conditionCharLength approximates source length via the condition's
// complexity score (character counts aren't available post-parse; complexity
// is a reasonable proxy already computed by every node).
func conditionCharLength(cond ast.Condition) int {
	return cond.Complexity() * 8
}

func conditionsOf(rule *ast.Rule) []ast.Condition {
	var conds []ast.Condition
	var walkBody func(ast.RuleBody)
	walkBody = func(b ast.RuleBody) {
		switch n := b.(type) {
		case *ast.SimpleBody:
			conds = append(conds, n.When...)
		case *ast.MultiBody:
			for _, sub := range n.Rules {
				walkBody(sub.Body)
			}
		case *ast.ComplexBody:
			if n.If != nil {
				conds = append(conds, n.If)
			}
		}
	}
	walkBody(rule.Body)

	_ = ast.Walk(rule, func(a ast.Action) error {
		if n, ok := a.(*ast.Conditional); ok {
			conds = append(conds, n.Cond)
		}
		if n, ok := a.(*ast.While); ok {
			conds = append(conds, n.Cond)
		}
		if n, ok := a.(*ast.DoWhile); ok {
			conds = append(conds, n.Cond)
		}
		return nil
	})
	return conds
}

func actionBlocksOf(rule *ast.Rule) [][]ast.Action {
	var blocks [][]ast.Action
	var walkBody func(ast.RuleBody)
	walkBody = func(b ast.RuleBody) {
		switch n := b.(type) {
		case *ast.SimpleBody:
			blocks = append(blocks, n.Then, n.Else)
		case *ast.MultiBody:
			for _, sub := range n.Rules {
				walkBody(sub.Body)
			}
		case *ast.ComplexBody:
			if n.Then != nil {
				blocks = append(blocks, n.Then.Actions)
				if n.Then.Nested != nil {
					walkBody(n.Then.Nested)
				}
			}
			if n.Else != nil {
				blocks = append(blocks, n.Else.Actions)
				if n.Else.Nested != nil {
					walkBody(n.Else.Nested)
				}
			}
		case *ast.ThenOnlyBody:
			blocks = append(blocks, n.Then)
		}
	}
	walkBody(rule.Body)
	return blocks
}
