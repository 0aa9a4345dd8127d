// Package parser turns a lexed token stream into expression, condition,
// and action AST nodes via three cooperating recursive-descent parsers
// that share one cursor, so a caller (typically pkg/rule/yamlrule) can
// parse a field as whichever grammar its position in the rule document
// calls for.
package parser

import (
	"fmt"

	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/lang/lexer"
	"rulecraft/engine/pkg/rule/errors"
)

const defaultMaxDepth = 64

// Parser holds the shared cursor and configuration for the three
// cooperating sub-grammars (expression, condition, action).
type Parser struct {
	toks    []lexer.Token
	pos     int
	source  string
	errs    *errors.List
	maxDepth int
	depth    int
	strictMode bool
}

// New constructs a Parser over already-lexed tokens. source is the
// original text, threaded through for error snippets.
func New(toks []lexer.Token, source string) *Parser {
	return &Parser{toks: toks, source: source, errs: errors.NewList(), maxDepth: defaultMaxDepth}
}

// WithMaxDepth caps expression/condition recursion depth; exceeding it
// yields PARSE_007.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// WithStrictMode records the strict-mode flag on the parser. No parse path
// consults the flag, so parsing behaves the same whichever value is set.
func (p *Parser) WithStrictMode(strict bool) *Parser {
	p.strictMode = strict
	return p
}

// Errors returns every diagnostic accumulated across panic-mode recovery.
func (p *Parser) Errors() *errors.List {
	return p.errs
}

// ParseExpressionSource lexes and parses src as a standalone expression.
func ParseExpressionSource(src string) (ast.Expression, error) {
	l := lexer.New(src, src)
	toks := l.Tokenize()
	if l.Errors().HasErrors() {
		return nil, l.Errors().ToError()
	}
	p := New(toks, src)
	expr := p.ParseExpression()
	if p.errs.HasErrors() {
		return nil, p.errs.ToError()
	}
	return expr, nil
}

// ParseConditionSource lexes and parses src as a standalone condition.
func ParseConditionSource(src string) (ast.Condition, error) {
	l := lexer.New(src, src)
	toks := l.Tokenize()
	if l.Errors().HasErrors() {
		return nil, l.Errors().ToError()
	}
	p := New(toks, src)
	cond := p.ParseCondition()
	if p.errs.HasErrors() {
		return nil, p.errs.ToError()
	}
	return cond, nil
}

// ParseActionSource lexes and parses src as a single action.
func ParseActionSource(src string) (ast.Action, error) {
	l := lexer.New(src, src)
	toks := l.Tokenize()
	if l.Errors().HasErrors() {
		return nil, l.Errors().ToError()
	}
	p := New(toks, src)
	act := p.ParseAction()
	if p.errs.HasErrors() {
		return nil, p.errs.ToError()
	}
	return act, nil
}

// ParseActionListSource lexes and parses src as a comma-separated action
// list (action_list in spec grammar).
func ParseActionListSource(src string) ([]ast.Action, error) {
	l := lexer.New(src, src)
	toks := l.Tokenize()
	if l.Errors().HasErrors() {
		return nil, l.Errors().ToError()
	}
	p := New(toks, src)
	list := p.parseActionList(lexer.Comma)
	if p.errs.HasErrors() {
		return nil, p.errs.ToError()
	}
	return list, nil
}

// ParseActionListSemiSource lexes and parses src as a semicolon-separated
// action list (action_list_semi in spec grammar, used inside loop bodies).
func ParseActionListSemiSource(src string) ([]ast.Action, error) {
	l := lexer.New(src, src)
	toks := l.Tokenize()
	if l.Errors().HasErrors() {
		return nil, l.Errors().ToError()
	}
	p := New(toks, src)
	list := p.parseActionList(lexer.Semicolon)
	if p.errs.HasErrors() {
		return nil, p.errs.ToError()
	}
	return list, nil
}

// --- shared cursor primitives ---

func (p *Parser) peek() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekKind() lexer.Kind {
	return p.toks[p.pos].Kind
}

func (p *Parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) atEnd() bool {
	return p.peekKind() == lexer.EOF
}

func (p *Parser) advance() lexer.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(k lexer.Kind) bool {
	return p.peekKind() == k
}

func (p *Parser) matchKind(kinds ...lexer.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(k lexer.Kind, code errors.Code, msg string) (lexer.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.errorAt(code, msg)
	return lexer.Token{}, false
}

func (p *Parser) errorAt(code errors.Code, msg string) {
	p.errs.Add(errors.New(code, msg, p.peek().Loc))
}

func (p *Parser) errorAtWithSuggestion(code errors.Code, msg, suggestion string) {
	p.errs.Add(errors.New(code, msg, p.peek().Loc).WithSuggestion(suggestion))
}

// enterDepth increments the recursion counter and records PARSE_007 once if
// the configured ceiling is exceeded, returning false so callers can bail
// out of the current production without recursing further.
func (p *Parser) enterDepth() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.errorAtWithSuggestion(errors.CodeParseMaxDepth,
			fmt.Sprintf("expression nesting exceeds maximum depth %d", p.maxDepth),
			"simplify the expression or split it across multiple computed variables")
		return false
	}
	return true
}

func (p *Parser) exitDepth() {
	p.depth--
}

// synchronize implements panic-mode recovery: advance past tokens until a
// newline, a ';' or ',' separator, an action-starting keyword, or EOF, so
// subsequent top-level
// productions (e.g. further actions in a batch) can still be attempted.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		switch p.peekKind() {
		case lexer.Newline, lexer.Semicolon, lexer.Comma,
			lexer.KwSet, lexer.KwCalculate, lexer.KwRun, lexer.KwCall,
			lexer.KwAdd, lexer.KwSubtract, lexer.KwMultiply, lexer.KwDivide,
			lexer.KwAppend, lexer.KwPrepend, lexer.KwRemove,
			lexer.KwIf, lexer.KwForEach, lexer.KwWhile, lexer.KwDo,
			lexer.KwCircuitBreaker:
			return
		}
		p.advance()
	}
}
