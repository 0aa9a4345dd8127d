// Package yamlrule adapts an already-deserialized YAML rule document into
// a *ast.Rule, reusing pkg/lang/parser for every expression/condition/
// action fragment so there is exactly one authoritative grammar.
package yamlrule

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/rule/errors"
)

// document is the intermediate structure a rule YAML document decodes
// into before being built into an AST. Fields mirror spec.md §4.D's
// recognized top-level keys; interface{}-typed fields accept either the
// map or sequence shape the adapter must disambiguate at build time.
type document struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Metadata    map[string]string `yaml:"metadata"`

	Inputs  interface{} `yaml:"inputs"`
	Input   interface{} `yaml:"input"`
	Outputs interface{} `yaml:"outputs"`
	Output  interface{} `yaml:"output"`

	Constants []constantDoc `yaml:"constants"`

	When interface{} `yaml:"when"`
	Then interface{} `yaml:"then"`
	Else interface{} `yaml:"else"`

	Rules      []ruleDoc     `yaml:"rules"`
	Conditions interface{}   `yaml:"conditions"`

	CircuitBreaker *circuitBreakerDoc `yaml:"circuit_breaker"`

	node *yaml.Node
}

type constantDoc struct {
	Name    string      `yaml:"name"`
	Code    string      `yaml:"code"`
	Type    string      `yaml:"type"`
	Default interface{} `yaml:"default"`
}

type circuitBreakerDoc struct {
	Enabled          bool `yaml:"enabled"`
	FailureThreshold int  `yaml:"failure_threshold"`
	Timeout          int  `yaml:"timeout"`
	RecoveryTimeout  int  `yaml:"recovery_timeout"`
}

// ruleDoc is a single entry of a "rules" sequence: a named sub-rule that
// may itself carry when/then/else or a nested if/then/else shape.
type ruleDoc struct {
	Name       string      `yaml:"name"`
	When       interface{} `yaml:"when"`
	Then       interface{} `yaml:"then"`
	Else       interface{} `yaml:"else"`
	If         interface{} `yaml:"if"`
	Conditions interface{} `yaml:"conditions"`
	node       *yaml.Node
}

// Parse decodes YAML bytes into a *ast.Rule. name identifies the source
// for diagnostics (typically a file path or a rule id).
func Parse(data []byte, name string) (*ast.Rule, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, errors.New(errors.CodeParseUnexpectedToken,
			fmt.Sprintf("invalid YAML: %v", err),
			errors.Location{Line: 1, Column: 1})
	}
	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, errors.New(errors.CodeParseUnexpectedToken,
			fmt.Sprintf("invalid rule document shape: %v", err),
			errors.Location{Line: 1, Column: 1})
	}
	doc.node = &node

	b := newBuilder(name)
	rule, err := b.buildRule(&doc)
	if err != nil {
		return nil, err
	}
	if b.errs.HasErrors() {
		return nil, b.errs.ToError()
	}
	return rule, nil
}
