package validate

import (
	"fmt"

	"rulecraft/engine/pkg/lang/ast"
)

// checkDependencies walks the rule's action lists in declaration order,
// tracking which names are known (inputs, constants, or already written
// earlier in the same pass) and flagging any variable reference that is
// not yet known (spec.md §4.I check 3). then/else branches are folded into
// one running set rather than tracked independently — a deliberate
// simplification, since only one branch executes at runtime and the
// validator cannot know which.
func checkDependencies(rule *ast.Rule) []Issue {
	known := make(map[string]bool, len(rule.InputDecl)+len(rule.Constants))
	for name := range rule.InputDecl {
		known[name] = true
	}
	for _, c := range rule.Constants {
		known[c.Name] = true
	}

	var issues []Issue
	seen := make(map[string]bool) // dedupe repeated reads of the same undeclared name

	_ = ast.Walk(rule, func(a ast.Action) error {
		exprs, conds := actionExpressions(a)
		var refs []varRef
		for _, e := range exprs {
			refs = append(refs, collectVars(e)...)
		}
		for _, c := range conds {
			refs = append(refs, collectCondVars(c)...)
		}
		for _, ref := range refs {
			if known[ref.name] || seen[ref.name] {
				continue
			}
			seen[ref.name] = true
			issues = append(issues, Issue{
				Code: "DEPS_001", Category: CategoryDependencies, Severity: SeverityError,
				Message:    fmt.Sprintf("%q is read but never declared as an input, constant, or prior computed write", ref.name),
				Suggestion: "declare it under inputs/constants, or write it earlier in the rule",
				Location:   ref.loc.String(),
			})
		}
		if name := actionWrites(a); name != "" {
			known[name] = true
		}
		return nil
	})

	return issues
}
