package validate

import (
	"fmt"

	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/rule/context"
)

// checkNaming enforces spec.md §4.I check 2: input declarations should read
// camelCase, computed writes snake_case, and constant references
// UPPER_SNAKE — the same patterns context.DefaultNamingRules enforces at
// evaluation time, applied here statically so violations surface before a
// rule ever runs.
func checkNaming(rule *ast.Rule) []Issue {
	rules := context.DefaultNamingRules()
	var issues []Issue

	for name := range rule.InputDecl {
		if !rules.InputPattern.MatchString(name) {
			issues = append(issues, Issue{
				Code: "NAMING_001", Category: CategoryNaming, Severity: SeverityWarning,
				Message:    fmt.Sprintf("input %q should be camelCase", name),
				Suggestion: "rename inputs to camelCase, e.g. \"annualIncome\"",
				Location:   "inputs." + name,
			})
		}
	}

	for _, c := range rule.Constants {
		if !rules.ConstantPattern.MatchString(c.Name) {
			issues = append(issues, Issue{
				Code: "NAMING_002", Category: CategoryNaming, Severity: SeverityWarning,
				Message:    fmt.Sprintf("constant %q should be UPPER_SNAKE_CASE", c.Name),
				Suggestion: "rename constants to UPPER_SNAKE_CASE, e.g. \"MAX_LOAN_AMOUNT\"",
				Location:   "constants." + c.Name,
			})
		}
	}

	_ = ast.Walk(rule, func(a ast.Action) error {
		name := actionWrites(a)
		if name == "" {
			return nil
		}
		if !rules.ComputedPattern.MatchString(name) {
			issues = append(issues, Issue{
				Code: "NAMING_003", Category: CategoryNaming, Severity: SeverityWarning,
				Message:    fmt.Sprintf("computed write %q should be snake_case", name),
				Suggestion: "rename to snake_case, e.g. \"" + name + "_value\"",
				Location:   a.Location().String(),
			})
		}
		return nil
	})

	return issues
}
