package validate

import (
	"fmt"
	"strings"

	"rulecraft/engine/pkg/lang/ast"
)

const (
	minDescriptionLength = 20
	minRuleNameLength    = 5
	maxRuleNameLength    = 100
)

// checkBestPractices covers spec.md §4.I check 6: missing/short
// descriptions, a missing version, rule-name length and style, and magic
// numbers in literal expressions.
func checkBestPractices(rule *ast.Rule) []Issue {
	var issues []Issue

	if len(rule.Description) < minDescriptionLength {
		issues = append(issues, Issue{
			Code: "BP_001", Category: CategoryBestPractices, Severity: SeverityInfo,
			Message:    "rule description is missing or too short to be useful",
			Suggestion: fmt.Sprintf("write a description of at least %d characters explaining the rule's intent", minDescriptionLength),
			Location:   "description",
		})
	}

	if strings.TrimSpace(rule.Version) == "" {
		issues = append(issues, Issue{
			Code: "BP_002", Category: CategoryBestPractices, Severity: SeverityInfo,
			Message:    "rule has no version declared",
			Suggestion: "add a version string so changes can be tracked over time",
			Location:   "version",
		})
	}

	if n := len(rule.Name); n < minRuleNameLength || n > maxRuleNameLength {
		issues = append(issues, Issue{
			Code: "BP_003", Category: CategoryBestPractices, Severity: SeverityWarning,
			Message:    fmt.Sprintf("rule name length %d is outside the recommended [%d, %d] range", n, minRuleNameLength, maxRuleNameLength),
			Suggestion: "give the rule a clearer, appropriately-sized name",
			Location:   "name",
		})
	}
	if strings.ContainsAny(rule.Name, "_-") {
		issues = append(issues, Issue{
			Code: "BP_004", Category: CategoryBestPractices, Severity: SeverityInfo,
			Message:    "rule name contains underscores or hyphens",
			Suggestion: "prefer spaced, human-readable rule names",
			Location:   "name",
		})
	}

	_ = ast.Walk(rule, func(a ast.Action) error {
		exprs, _ := actionExpressions(a)
		for _, e := range exprs {
			issues = append(issues, findMagicNumbers(e)...)
		}
		return nil
	})

	return issues
}

// findMagicNumbers flags numeric literals other than 0, 1, and 100 (the
// three values common enough in rate/percentage math to not warrant a
// named constant).
func findMagicNumbers(e ast.Expression) []Issue {
	var issues []Issue
	var walk func(ast.Expression)
	walk = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.Literal:
			if n.Kind == ast.LiteralNumber {
				if f, ok := n.Value.(float64); ok && f != 0 && f != 1 && f != 100 {
					issues = append(issues, Issue{
						Code: "BP_005", Category: CategoryBestPractices, Severity: SeverityInfo,
						Message:    fmt.Sprintf("magic number %v in expression", f),
						Suggestion: "declare this as a named constant",
						Location:   n.Location().String(),
					})
				}
			}
			if n.Kind == ast.LiteralList {
				if items, ok := n.Value.([]ast.Expression); ok {
					for _, item := range items {
						walk(item)
					}
				}
			}
		case *ast.Unary:
			walk(n.Operand)
		case *ast.Binary:
			walk(n.Left)
			walk(n.Right)
		case *ast.ArithmeticExpr:
			for _, o := range n.Operands {
				walk(o)
			}
		case *ast.FunctionCall:
			for _, a := range n.Arguments {
				walk(a)
			}
		case *ast.JsonPath:
			walk(n.Source)
		}
	}
	walk(e)
	return issues
}
