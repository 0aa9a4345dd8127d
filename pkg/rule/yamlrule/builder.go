package yamlrule

import (
	"fmt"
	"strings"

	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/lang/parser"
	"rulecraft/engine/pkg/rule/errors"
)

// builder constructs a *ast.Rule from a decoded document, collecting
// structural errors so a batch caller sees everything wrong with a rule
// document in one pass.
type builder struct {
	source string
	errs   *errors.List
}

func newBuilder(source string) *builder {
	return &builder{source: source, errs: errors.NewList()}
}

func (b *builder) buildRule(doc *document) (*ast.Rule, error) {
	rule := &ast.Rule{
		Name:        doc.Name,
		Description: doc.Description,
		Version:     doc.Version,
		Metadata:    doc.Metadata,
		InputDecl:   b.buildDecl(firstNonNil(doc.Inputs, doc.Input)),
		OutputDecl:  b.buildDecl(firstNonNil(doc.Outputs, doc.Output)),
		Constants:   b.buildConstants(doc.Constants),
		Loc:         errors.Location{Line: 1, Column: 1},
	}

	if doc.CircuitBreaker != nil {
		rule.CircuitBreaker = &ast.CircuitBreakerConfig{
			Enabled:          doc.CircuitBreaker.Enabled,
			FailureThreshold: doc.CircuitBreaker.FailureThreshold,
			Timeout:          doc.CircuitBreaker.Timeout,
			RecoveryTimeout:  doc.CircuitBreaker.RecoveryTimeout,
		}
	}

	body, err := b.buildBody(doc)
	if err != nil {
		return nil, err
	}
	rule.Body = body

	if rule.Name == "" {
		b.errs.AddNew(errors.CodeParseInvalidAction, "rule is missing a required \"name\" field", rule.Loc)
	}

	return rule, nil
}

// buildBody implements spec.md §4.D's precedence: rules (multi) >
// conditions (complex) > when/then/else (simple); an unconditional then
// with neither produces ThenOnly.
func (b *builder) buildBody(doc *document) (ast.RuleBody, error) {
	switch {
	case len(doc.Rules) > 0:
		return b.buildMultiBody(doc.Rules)
	case doc.Conditions != nil:
		return b.buildComplexBody(doc.Conditions, doc.Then, doc.Else)
	case doc.When != nil:
		return b.buildSimpleBody(doc.When, doc.Then, doc.Else)
	case doc.Then != nil:
		actions, err := b.buildActionItems(doc.Then)
		if err != nil {
			return nil, err
		}
		return &ast.ThenOnlyBody{Then: actions}, nil
	default:
		b.errs.AddNew(errors.CodeParseInvalidAction,
			"rule has none of rules/conditions/when/then — nothing to evaluate",
			errors.Location{Line: 1, Column: 1})
		return &ast.ThenOnlyBody{}, nil
	}
}

func (b *builder) buildSimpleBody(when, then, els interface{}) (ast.RuleBody, error) {
	whenConds, err := b.buildConditionItems(when)
	if err != nil {
		return nil, err
	}
	thenActs, err := b.buildActionItems(then)
	if err != nil {
		return nil, err
	}
	elseActs, err := b.buildActionItems(els)
	if err != nil {
		return nil, err
	}
	return &ast.SimpleBody{When: whenConds, Then: thenActs, Else: elseActs}, nil
}

func (b *builder) buildComplexBody(conditions, then, els interface{}) (ast.RuleBody, error) {
	cond, err := b.buildSingleCondition(conditions)
	if err != nil {
		return nil, err
	}
	thenBlock, err := b.buildActionBlock(then)
	if err != nil {
		return nil, err
	}
	var elseBlock *ast.ActionBlock
	if els != nil {
		elseBlock, err = b.buildActionBlock(els)
		if err != nil {
			return nil, err
		}
	}
	return &ast.ComplexBody{If: cond, Then: thenBlock, Else: elseBlock}, nil
}

func (b *builder) buildActionBlock(raw interface{}) (*ast.ActionBlock, error) {
	actions, err := b.buildActionItems(raw)
	if err != nil {
		return nil, err
	}
	return &ast.ActionBlock{Actions: actions}, nil
}

func (b *builder) buildMultiBody(docs []ruleDoc) (ast.RuleBody, error) {
	var subs []*ast.SubRule
	for i := range docs {
		rd := &docs[i]
		var body ast.RuleBody
		var err error
		switch {
		case rd.If != nil:
			body, err = b.buildComplexBody(rd.If, rd.Then, rd.Else)
		case rd.Conditions != nil:
			body, err = b.buildComplexBody(rd.Conditions, rd.Then, rd.Else)
		case rd.When != nil:
			body, err = b.buildSimpleBody(rd.When, rd.Then, rd.Else)
		default:
			var actions []ast.Action
			actions, err = b.buildActionItems(rd.Then)
			body = &ast.ThenOnlyBody{Then: actions}
		}
		if err != nil {
			return nil, err
		}
		subs = append(subs, &ast.SubRule{Name: rd.Name, Body: body, Loc: errors.Location{Line: 1, Column: 1}})
	}
	return &ast.MultiBody{Rules: subs}, nil
}

// buildDecl normalizes an inputs/outputs field that may be a map (name ->
// type label) or a sequence (bare names, type defaults to "any").
func (b *builder) buildDecl(raw interface{}) map[string]string {
	decl := make(map[string]string)
	if raw == nil {
		return decl
	}
	switch v := raw.(type) {
	case map[string]interface{}:
		for name, typ := range v {
			decl[name] = asString(typ)
		}
	case []interface{}:
		for _, item := range v {
			decl[asString(item)] = "any"
		}
	}
	return decl
}

func (b *builder) buildConstants(docs []constantDoc) []*ast.ConstantDecl {
	out := make([]*ast.ConstantDecl, 0, len(docs))
	for _, c := range docs {
		out = append(out, &ast.ConstantDecl{Name: c.Name, Code: c.Code, Type: c.Type, Default: c.Default})
	}
	return out
}

// buildConditionItems parses a when/conditions field that may be a scalar
// condition string or a sequence of condition strings.
func (b *builder) buildConditionItems(raw interface{}) ([]ast.Condition, error) {
	var out []ast.Condition
	for _, item := range scalarOrSequence(raw) {
		src, ok := item.(string)
		if !ok {
			b.errs.AddNew(errors.CodeParseInvalidAction,
				fmt.Sprintf("expected a condition string, got %T", item), errors.Location{Line: 1, Column: 1})
			continue
		}
		cond, err := parser.ParseConditionSource(src)
		if err != nil {
			b.addParseErr(err)
			continue
		}
		out = append(out, cond)
	}
	return out, nil
}

func (b *builder) buildSingleCondition(raw interface{}) (ast.Condition, error) {
	items, err := b.buildConditionItems(raw)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &ast.ExpressionCondition{}, nil
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &ast.Logical{Op: ast.LogAnd, Operands: items}, nil
}

// buildActionItems parses a then/else field that may be a scalar action
// string (itself possibly comma-separated), a sequence of action strings,
// or a sequence mixing strings with single-key loop/typed-action mappings.
func (b *builder) buildActionItems(raw interface{}) ([]ast.Action, error) {
	var out []ast.Action
	for _, item := range scalarOrSequence(raw) {
		switch v := item.(type) {
		case string:
			actions, err := parser.ParseActionListSource(v)
			if err != nil {
				b.addParseErr(err)
				continue
			}
			out = append(out, actions...)
		case map[string]interface{}:
			act, err := b.buildMappingAction(v)
			if err != nil {
				b.addParseErr(err)
				continue
			}
			out = append(out, act)
		default:
			b.errs.AddNew(errors.CodeParseInvalidAction,
				fmt.Sprintf("expected an action string or mapping, got %T", item), errors.Location{Line: 1, Column: 1})
		}
	}
	return out, nil
}

// buildMappingAction rewrites a single-key mapping — either the
// YAML-folded loop form or a typed action shape — into the canonical
// action string and re-parses it so there is exactly one authoritative
// parser path (spec.md §4.D).
func (b *builder) buildMappingAction(m map[string]interface{}) (ast.Action, error) {
	if len(m) != 1 {
		return nil, errors.New(errors.CodeParseInvalidAction,
			"action mapping must have exactly one key", errors.Location{Line: 1, Column: 1})
	}
	var key string
	var value interface{}
	for k, v := range m {
		key, value = k, v
	}

	if _, typed := value.(map[string]interface{}); !typed {
		switch {
		case strings.HasPrefix(key, "forEach "):
			body := joinBodyValues(value)
			return b.reparse(fmt.Sprintf("%s : %s", key, body))
		case strings.HasPrefix(key, "while "):
			body := joinBodyValues(value)
			return b.reparse(fmt.Sprintf("%s : %s", key, body))
		case key == "do":
			body := joinBodyValues(value)
			return b.reparse(fmt.Sprintf("do : %s", body))
		}
	}

	switch key {
	case "set":
		fields, _ := value.(map[string]interface{})
		return b.reparse(fmt.Sprintf("set %s to %s", asString(fields["variable"]), asString(fields["value"])))
	case "calculate":
		fields, _ := value.(map[string]interface{})
		return b.reparse(fmt.Sprintf("calculate %s as %s", asString(fields["variable"]), asString(fields["expression"])))
	case "call":
		fields, _ := value.(map[string]interface{})
		params := joinSequence(fields["parameters"], ", ")
		return b.reparse(fmt.Sprintf("call %s with [%s]", asString(fields["function"]), params))
	case "forEach":
		fields, _ := value.(map[string]interface{})
		idx := ""
		if v, ok := fields["index"]; ok {
			idx = ", " + asString(v)
		}
		body := joinSequence(fields["do"], "; ")
		return b.reparse(fmt.Sprintf("forEach %s%s in %s : %s", asString(fields["variable"]), idx, asString(fields["in"]), body))
	case "while":
		fields, _ := value.(map[string]interface{})
		body := joinSequence(fields["do"], "; ")
		return b.reparse(fmt.Sprintf("while %s : %s", asString(fields["condition"]), body))
	case "do":
		fields, _ := value.(map[string]interface{})
		body := joinSequence(fields["actions"], "; ")
		return b.reparse(fmt.Sprintf("do : %s while %s", body, asString(fields["while"])))
	}

	return nil, errors.New(errors.CodeParseInvalidAction,
		fmt.Sprintf("unrecognized action mapping key %q", key), errors.Location{Line: 1, Column: 1})
}

// reparse re-lexes and re-parses a canonical action string assembled by
// the YAML adapter's rewriting rules.
func (b *builder) reparse(canonical string) (ast.Action, error) {
	act, err := parser.ParseActionSource(canonical)
	if err != nil {
		return nil, err
	}
	return act, nil
}

func (b *builder) addParseErr(err error) {
	if list, ok := err.(*errors.List); ok {
		b.errs.Errors = append(b.errs.Errors, list.Errors...)
		return
	}
	if e, ok := err.(*errors.Error); ok {
		b.errs.Add(e)
		return
	}
	b.errs.AddNew(errors.CodeParseInvalidAction, err.Error(), errors.Location{Line: 1, Column: 1})
}

// scalarOrSequence normalizes a YAML field that may be a single scalar or
// a sequence into a uniform []interface{}.
func scalarOrSequence(raw interface{}) []interface{} {
	if raw == nil {
		return nil
	}
	if seq, ok := raw.([]interface{}); ok {
		return seq
	}
	return []interface{}{raw}
}

// joinBodyValues renders a loop body value (a sequence, per spec.md §4.D)
// as "; "-joined action text for the YAML-folded reconstruction rule.
func joinBodyValues(v interface{}) string {
	return joinSequence(v, "; ")
}

func joinSequence(v interface{}, sep string) string {
	seq := scalarOrSequence(v)
	parts := make([]string, 0, len(seq))
	for _, item := range seq {
		parts = append(parts, asString(item))
	}
	return strings.Join(parts, sep)
}

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func firstNonNil(a, b interface{}) interface{} {
	if a != nil {
		return a
	}
	return b
}
