package parser

import (
	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/lang/lexer"
	"rulecraft/engine/pkg/rule/errors"
)

// ParseAction parses a single action per spec.md §4.C's action grammar.
func (p *Parser) ParseAction() ast.Action {
	tok := p.peek()
	switch tok.Kind {
	case lexer.KwSet:
		return p.parseSet()
	case lexer.KwCalculate:
		return p.parseCalculate()
	case lexer.KwRun:
		return p.parseRun()
	case lexer.KwCall:
		return p.parseCall()
	case lexer.KwIf:
		return p.parseConditionalAction()
	case lexer.KwAdd, lexer.KwSubtract:
		return p.parseAddSubtract()
	case lexer.KwMultiply, lexer.KwDivide:
		return p.parseMultiplyDivide()
	case lexer.KwAppend, lexer.KwPrepend:
		return p.parseAppendPrepend()
	case lexer.KwRemove:
		return p.parseRemove()
	case lexer.KwCircuitBreaker:
		return p.parseCircuitBreaker()
	case lexer.KwForEach:
		return p.parseForEach()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwDo:
		return p.parseDoWhile()
	}

	p.errorAtWithSuggestion(errors.CodeParseInvalidAction,
		"unrecognized action keyword: "+tok.Lexeme,
		"expected one of set/calculate/run/call/if/add/subtract/multiply/divide/append/prepend/remove/circuit_breaker/forEach/while/do")
	p.synchronize()
	return &ast.CircuitBreakerAction{Node: ast.Node{Loc: tok.Loc}, Message: "unparseable action"}
}

// parseActionList parses action ( sep action )*, where sep is Comma for
// action_list or Semicolon for action_list_semi.
func (p *Parser) parseActionList(sep lexer.Kind) []ast.Action {
	var list []ast.Action
	list = append(list, p.ParseAction())
	for p.matchKind(sep) {
		list = append(list, p.ParseAction())
	}
	return list
}

func (p *Parser) parseSet() ast.Action {
	kw := p.advance() // "set"
	name, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected a variable name after 'set'")
	p.expect(lexer.KwTo, errors.CodeParseExpectedToken, "expected 'to' after the variable name in a set action")
	value := p.ParseExpression()
	return &ast.Set{Node: ast.Node{Loc: kw.Loc}, Variable: name.Lexeme, Value: value}
}

func (p *Parser) parseCalculate() ast.Action {
	kw := p.advance() // "calculate"
	name, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected a variable name after 'calculate'")
	p.expect(lexer.KwAs, errors.CodeParseExpectedToken, "expected 'as' after the variable name in a calculate action")
	expr := p.ParseExpression()
	return &ast.Calculate{Node: ast.Node{Loc: kw.Loc}, Variable: name.Lexeme, Expression: expr}
}

func (p *Parser) parseRun() ast.Action {
	kw := p.advance() // "run"
	name, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected a variable name after 'run'")
	p.expect(lexer.KwAs, errors.CodeParseExpectedToken, "expected 'as' after the variable name in a run action")
	expr := p.ParseExpression()
	return &ast.Run{Node: ast.Node{Loc: kw.Loc}, Variable: name.Lexeme, Expression: expr}
}

func (p *Parser) parseCall() ast.Action {
	kw := p.advance() // "call"
	name, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected a function name after 'call'")
	p.expect(lexer.KwWith, errors.CodeParseExpectedToken, "expected 'with' after the function name in a call action")
	p.expect(lexer.LBracket, errors.CodeParseExpectedToken, "expected '[' to open the argument list")
	var args []ast.Expression
	if !p.check(lexer.RBracket) {
		args = append(args, p.ParseExpression())
		for p.matchKind(lexer.Comma) {
			args = append(args, p.ParseExpression())
		}
	}
	p.expect(lexer.RBracket, errors.CodeParseUnclosedGroup, "expected ']' to close the argument list")
	return &ast.FunctionCallAction{Node: ast.Node{Loc: kw.Loc}, Name: name.Lexeme, Arguments: args}
}

func (p *Parser) parseConditionalAction() ast.Action {
	kw := p.advance() // "if"
	cond := p.ParseCondition()
	p.expect(lexer.KwThen, errors.CodeParseExpectedToken, "expected 'then' after an if condition")
	then := p.parseActionList(lexer.Comma)
	var els []ast.Action
	if p.matchKind(lexer.KwElse) {
		els = p.parseActionList(lexer.Comma)
	}
	return &ast.Conditional{Node: ast.Node{Loc: kw.Loc}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseAddSubtract() ast.Action {
	kw := p.advance() // "add" | "subtract"
	op := ast.ActAdd
	targetKw := lexer.KwTo
	if kw.Kind == lexer.KwSubtract {
		op = ast.ActSubtract
		targetKw = lexer.KwFrom
	}
	value := p.ParseExpression()
	p.expect(targetKw, errors.CodeParseExpectedToken, "expected 'to'/'from' before the target variable")
	name, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected a target variable name")
	return &ast.ArithmeticAction{Node: ast.Node{Loc: kw.Loc}, Op: op, Variable: name.Lexeme, Value: value}
}

func (p *Parser) parseMultiplyDivide() ast.Action {
	kw := p.advance() // "multiply" | "divide"
	op := ast.ActMultiply
	if kw.Kind == lexer.KwDivide {
		op = ast.ActDivide
	}
	name, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected a target variable name")
	p.expect(lexer.KwBy, errors.CodeParseExpectedToken, "expected 'by' before the amount")
	value := p.ParseExpression()
	return &ast.ArithmeticAction{Node: ast.Node{Loc: kw.Loc}, Op: op, Variable: name.Lexeme, Value: value}
}

func (p *Parser) parseAppendPrepend() ast.Action {
	kw := p.advance() // "append" | "prepend"
	op := ast.ListAppend
	if kw.Kind == lexer.KwPrepend {
		op = ast.ListPrepend
	}
	value := p.ParseExpression()
	p.expect(lexer.KwTo, errors.CodeParseExpectedToken, "expected 'to' before the list variable")
	name, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected a list variable name")
	return &ast.ListAction{Node: ast.Node{Loc: kw.Loc}, Op: op, Value: value, ListVariable: name.Lexeme}
}

func (p *Parser) parseRemove() ast.Action {
	kw := p.advance() // "remove"
	value := p.ParseExpression()
	p.expect(lexer.KwFrom, errors.CodeParseExpectedToken, "expected 'from' before the list variable")
	name, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected a list variable name")
	return &ast.ListAction{Node: ast.Node{Loc: kw.Loc}, Op: ast.ListRemove, Value: value, ListVariable: name.Lexeme}
}

func (p *Parser) parseCircuitBreaker() ast.Action {
	kw := p.advance() // "circuit_breaker"
	msg, _ := p.expect(lexer.String, errors.CodeParseExpectedToken, "expected a string message after 'circuit_breaker'")
	message, _ := msg.Literal.(string)
	return &ast.CircuitBreakerAction{Node: ast.Node{Loc: kw.Loc}, Message: message}
}

func (p *Parser) parseForEach() ast.Action {
	kw := p.advance() // "forEach"
	varName, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected a loop variable name after 'forEach'")
	index := ""
	if p.matchKind(lexer.Comma) {
		idxTok, _ := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected an index variable name after ','")
		index = idxTok.Lexeme
	}
	p.expect(lexer.KwIn, errors.CodeParseExpectedToken, "expected 'in' after the forEach variable(s)")
	iterable := p.ParseExpression()
	p.expect(lexer.Colon, errors.CodeParseExpectedToken, "expected ':' before the forEach body")
	body := p.parseActionList(lexer.Semicolon)
	return &ast.ForEach{Node: ast.Node{Loc: kw.Loc}, Var: varName.Lexeme, Index: index, Iterable: iterable, Body: body}
}

func (p *Parser) parseWhile() ast.Action {
	kw := p.advance() // "while"
	cond := p.ParseCondition()
	p.expect(lexer.Colon, errors.CodeParseExpectedToken, "expected ':' before the while body")
	body := p.parseActionList(lexer.Semicolon)
	return &ast.While{Node: ast.Node{Loc: kw.Loc}, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Action {
	kw := p.advance() // "do"
	p.expect(lexer.Colon, errors.CodeParseExpectedToken, "expected ':' before the do body")
	body := p.parseActionList(lexer.Semicolon)
	p.expect(lexer.KwWhile, errors.CodeParseExpectedToken, "expected 'while' after a do body")
	cond := p.ParseCondition()
	return &ast.DoWhile{Node: ast.Node{Loc: kw.Loc}, Body: body, Cond: cond}
}
