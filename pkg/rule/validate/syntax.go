package validate

import (
	"strings"

	"rulecraft/engine/pkg/rule/errors"
)

// checkSyntaxPreParse scans raw rule source for structural problems a YAML
// parser itself wouldn't cleanly attribute: unmatched brackets/braces/
// quotes and tab indentation (spec.md §4.I check 1).
func checkSyntaxPreParse(source string) []Issue {
	var issues []Issue
	lines := strings.Split(source, "\n")

	var brackets, braces int
	inQuote := rune(0)
	for lineNo, line := range lines {
		if strings.HasPrefix(line, "\t") {
			issues = append(issues, Issue{
				Code: "SYNTAX_001", Category: CategorySyntax, Severity: SeverityError,
				Message:    "line uses tab indentation, which YAML disallows",
				Suggestion: "replace leading tabs with spaces",
				Location:   lineLocation(lineNo + 1),
			})
		}
		for _, r := range line {
			switch {
			case inQuote != 0:
				if r == inQuote {
					inQuote = 0
				}
			case r == '\'' || r == '"':
				inQuote = r
			case r == '[':
				brackets++
			case r == ']':
				brackets--
			case r == '{':
				braces++
			case r == '}':
				braces--
			}
		}
	}

	if inQuote != 0 {
		issues = append(issues, Issue{
			Code: "SYNTAX_002", Category: CategorySyntax, Severity: SeverityCritical,
			Message:    "unterminated quote in rule source",
			Suggestion: "check for a missing closing quote",
			Location:   "document",
		})
	}
	if brackets != 0 {
		issues = append(issues, Issue{
			Code: "SYNTAX_003", Category: CategorySyntax, Severity: SeverityCritical,
			Message:    "unmatched '[' or ']' in rule source",
			Suggestion: "check list literal brackets are balanced",
			Location:   "document",
		})
	}
	if braces != 0 {
		issues = append(issues, Issue{
			Code: "SYNTAX_004", Category: CategorySyntax, Severity: SeverityCritical,
			Message:    "unmatched '{' or '}' in rule source",
			Suggestion: "check mapping braces are balanced",
			Location:   "document",
		})
	}
	return issues
}

// issuesFromParseErrors converts accumulated parser diagnostics into
// syntax-category issues (spec.md §4.I: "plus every PARSE_nnn produced by
// 4.C").
func issuesFromParseErrors(errs *errors.List) []Issue {
	if errs == nil {
		return nil
	}
	issues := make([]Issue, 0, len(errs.Errors))
	for _, e := range errs.Errors {
		issues = append(issues, Issue{
			Code:       string(e.Code),
			Category:   CategorySyntax,
			Severity:   SeverityError,
			Message:    e.Message,
			Suggestion: e.Suggestion,
			Location:   e.Location.String(),
		})
	}
	return issues
}

func lineLocation(line int) string {
	return "line[" + itoa(line) + "]"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}
