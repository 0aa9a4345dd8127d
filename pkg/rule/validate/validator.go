package validate

import (
	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/rule/errors"
)

// Validator runs the six independent static-check categories in sequence
// and accumulates their issues into one Report, mirroring the teacher's
// orchestrator-plus-sub-validators shape: later passes are skipped once an
// earlier pass already found a category-defining problem that would make
// their output noise rather than signal.
type Validator struct{}

// New constructs a Validator. It carries no state of its own; every check
// is a pure function of the rule (and, for syntax, the raw source).
func New() *Validator {
	return &Validator{}
}

// Validate runs syntax, naming, dependencies, logic, performance, and
// best-practices checks over rule and returns the aggregated Report.
// source is the raw YAML text (used only by the syntax pass); parseErrs
// carries any diagnostics already accumulated by the lexer/parser/YAML
// adapter before the AST was produced, and may be nil if rule parsed
// cleanly. If rule is nil (parsing failed outright), only the syntax pass
// runs, over source and parseErrs alone.
func (v *Validator) Validate(rule *ast.Rule, source string, parseErrs *errors.List) *Report {
	var issues []Issue
	issues = append(issues, checkSyntaxPreParse(source)...)
	issues = append(issues, issuesFromParseErrors(parseErrs)...)

	if hasCriticalSyntax(issues) || rule == nil {
		return NewReport(issues)
	}

	issues = append(issues, checkNaming(rule)...)
	issues = append(issues, checkDependencies(rule)...)
	issues = append(issues, checkLogic(rule)...)
	issues = append(issues, checkPerformance(rule)...)
	issues = append(issues, checkBestPractices(rule)...)

	return NewReport(issues)
}

func hasCriticalSyntax(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Category == CategorySyntax && iss.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
