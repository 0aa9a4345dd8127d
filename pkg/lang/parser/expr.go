package parser

import (
	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/lang/lexer"
	"rulecraft/engine/pkg/rule/errors"
)

// ParseExpression parses a full expression (logic_or precedence down to
// primary), producing Binary nodes for logical/comparison operators since
// there is no Condition type in a pure-expression context.
func (p *Parser) ParseExpression() ast.Expression {
	return p.logicOr()
}

func (p *Parser) logicOr() ast.Expression {
	if !p.enterDepth() {
		defer p.exitDepth()
		return p.errExpr()
	}
	defer p.exitDepth()

	left := p.logicAnd()
	for p.matchKind(lexer.KwOr) {
		loc := p.previous().Loc
		right := p.logicAnd()
		left = &ast.Binary{Node: ast.Node{Loc: loc}, Op: ast.BinOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) logicAnd() ast.Expression {
	left := p.equality()
	for p.matchKind(lexer.KwAnd) {
		loc := p.previous().Loc
		right := p.equality()
		left = &ast.Binary{Node: ast.Node{Loc: loc}, Op: ast.BinAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) equality() ast.Expression {
	left := p.comparison()
	for {
		var op ast.BinaryOp
		switch {
		case p.matchKind(lexer.KwEquals, lexer.EqEq):
			op = ast.BinEqual
		case p.matchKind(lexer.KwNotEquals, lexer.NotEq):
			op = ast.BinNotEqual
		default:
			return left
		}
		loc := p.previous().Loc
		right := p.comparison()
		left = &ast.Binary{Node: ast.Node{Loc: loc}, Op: op, Left: left, Right: right}
	}
}

var comparisonOpByKind = map[lexer.Kind]ast.BinaryOp{
	lexer.Gt:            ast.BinGreater,
	lexer.Lt:             ast.BinLess,
	lexer.GtEq:           ast.BinAtLeast,
	lexer.LtEq:           ast.BinAtMost,
	lexer.KwGreaterThan:  ast.BinGreater,
	lexer.KwLessThan:     ast.BinLess,
	lexer.KwAtLeast:      ast.BinAtLeast,
	lexer.KwAtMost:       ast.BinAtMost,
	lexer.KwContains:     ast.BinContains,
	lexer.KwStartsWith:   ast.BinStartsWith,
	lexer.KwEndsWith:     ast.BinEndsWith,
	lexer.KwMatches:      ast.BinMatches,
	lexer.KwInList:       ast.BinInList,
}

func (p *Parser) comparison() ast.Expression {
	left := p.term()
	for {
		op, ok := comparisonOpByKind[p.peekKind()]
		if !ok {
			return left
		}
		p.advance()
		loc := p.previous().Loc
		right := p.term()
		left = &ast.Binary{Node: ast.Node{Loc: loc}, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) term() ast.Expression {
	left := p.factor()
	for {
		var op ast.BinaryOp
		switch {
		case p.matchKind(lexer.Plus):
			op = ast.BinAdd
		case p.matchKind(lexer.Minus):
			op = ast.BinSub
		default:
			return left
		}
		loc := p.previous().Loc
		right := p.factor()
		left = &ast.Binary{Node: ast.Node{Loc: loc}, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) factor() ast.Expression {
	left := p.unary()
	for {
		var op ast.BinaryOp
		switch {
		case p.matchKind(lexer.Star):
			op = ast.BinMul
		case p.matchKind(lexer.Slash):
			op = ast.BinDiv
		case p.matchKind(lexer.Percent):
			op = ast.BinMod
		default:
			return left
		}
		loc := p.previous().Loc
		right := p.unary()
		left = &ast.Binary{Node: ast.Node{Loc: loc}, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) unary() ast.Expression {
	switch {
	case p.matchKind(lexer.Minus):
		loc := p.previous().Loc
		return &ast.Unary{Node: ast.Node{Loc: loc}, Op: ast.OpNegate, Operand: p.unary()}
	case p.matchKind(lexer.Plus):
		return p.unary()
	case p.matchKind(lexer.KwNot):
		loc := p.previous().Loc
		return &ast.Unary{Node: ast.Node{Loc: loc}, Op: ast.OpNot, Operand: p.unary()}
	}
	return p.power()
}

func (p *Parser) power() ast.Expression {
	base := p.primary()
	if p.matchKind(lexer.StarStar) {
		loc := p.previous().Loc
		exp := p.unary()
		return &ast.Binary{Node: ast.Node{Loc: loc}, Op: ast.BinPow, Left: base, Right: exp}
	}
	return base
}

func (p *Parser) primary() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		return &ast.Literal{Node: ast.Node{Loc: tok.Loc}, Kind: ast.LiteralNumber, Value: tok.Literal}
	case lexer.String:
		p.advance()
		return &ast.Literal{Node: ast.Node{Loc: tok.Loc}, Kind: ast.LiteralString, Value: tok.Literal}
	case lexer.Boolean:
		p.advance()
		return &ast.Literal{Node: ast.Node{Loc: tok.Loc}, Kind: ast.LiteralBoolean, Value: tok.Literal}
	case lexer.Null:
		p.advance()
		return &ast.Literal{Node: ast.Node{Loc: tok.Loc}, Kind: ast.LiteralNull, Value: nil}
	case lexer.LBracket:
		return p.listLiteral()
	case lexer.LParen:
		p.advance()
		inner := p.ParseExpression()
		p.expect(lexer.RParen, errors.CodeParseUnclosedGroup, "expected ')' to close grouped expression")
		return inner
	case lexer.Identifier:
		return p.identifierExpr()
	}

	p.errorAtWithSuggestion(errors.CodeParseUnexpectedToken,
		"unexpected token in expression: "+tok.Lexeme,
		"expected a literal, variable, function call, or '(' group")
	p.advance()
	return p.errExpr()
}

func (p *Parser) listLiteral() ast.Expression {
	open := p.advance() // '['
	var elems []ast.Expression
	if !p.check(lexer.RBracket) {
		elems = append(elems, p.ParseExpression())
		for p.matchKind(lexer.Comma) {
			elems = append(elems, p.ParseExpression())
		}
	}
	p.expect(lexer.RBracket, errors.CodeParseUnclosedGroup, "expected ']' to close list literal")
	return &ast.Literal{Node: ast.Node{Loc: open.Loc}, Kind: ast.LiteralList, Value: elems}
}

// identifierExpr parses IDENT ( "(" arg_list? ")" )? | IDENT ( "." IDENT | "[" expr "]" )*
// json_path and rest_call are special-cased here, the same way between is
// special-cased at the comparison level: both name an Expression variant
// with fields a generic FunctionCall can't carry (JsonPath's static Path,
// RestCall's Method/Headers), so their call syntax is intercepted before
// falling through to the generic function-call form.
func (p *Parser) identifierExpr() ast.Expression {
	name := p.advance() // Identifier

	if p.check(lexer.LParen) {
		switch name.Lexeme {
		case "json_path":
			return p.jsonPathCall(name)
		case "rest_call":
			return p.restCallCall(name)
		}
		args := p.argList()
		return &ast.FunctionCall{Node: ast.Node{Loc: name.Loc}, Name: name.Lexeme, Arguments: args}
	}

	v := &ast.Variable{Node: ast.Node{Loc: name.Loc}, Name: name.Lexeme}
	for {
		switch {
		case p.matchKind(lexer.Dot):
			prop, ok := p.expect(lexer.Identifier, errors.CodeParseExpectedToken, "expected property name after '.'")
			if !ok {
				return v
			}
			v.PropertyPath = append(v.PropertyPath, prop.Lexeme)
		case p.check(lexer.LBracket):
			p.advance()
			idx := p.ParseExpression()
			p.expect(lexer.RBracket, errors.CodeParseUnclosedGroup, "expected ']' to close index expression")
			v.IndexExpr = idx
			return v // chained indexing beyond one level is expressed via nested JsonPath/variable use, not here
		default:
			return v
		}
	}
}

// jsonPathCall parses "json_path" "(" expression "," STRING ")", building a
// JsonPath{Source, Path} node directly — the path is a static string, not a
// sub-expression, so it can't go through argList.
func (p *Parser) jsonPathCall(name lexer.Token) ast.Expression {
	p.advance() // '('
	source := p.ParseExpression()
	p.expect(lexer.Comma, errors.CodeParseExpectedToken, "expected ',' before json_path's path argument")
	path := p.expectStringLiteral("expected a string literal path for json_path(source, path)")
	p.expect(lexer.RParen, errors.CodeParseUnclosedGroup, "expected ')' to close json_path(...)")
	return &ast.JsonPath{Node: ast.Node{Loc: name.Loc}, Source: source, Path: path}
}

// restCallCall parses "rest_call" "(" STRING "," expression ( "," expression
// ( "," expression )? )? ")" — method, url, optional body, optional timeout.
// Per-header values have no expressible literal syntax (the grammar has no
// map-literal expression) so Headers is left unset by this call form.
func (p *Parser) restCallCall(name lexer.Token) ast.Expression {
	p.advance() // '('
	method := p.expectStringLiteral("expected a string literal HTTP method for rest_call(method, url, ...)")
	p.expect(lexer.Comma, errors.CodeParseExpectedToken, "expected ',' before rest_call's url argument")
	url := p.ParseExpression()
	call := &ast.RestCall{Node: ast.Node{Loc: name.Loc}, Method: method, URL: url}
	if p.matchKind(lexer.Comma) {
		call.Body = p.ParseExpression()
		if p.matchKind(lexer.Comma) {
			call.Timeout = p.ParseExpression()
		}
	}
	p.expect(lexer.RParen, errors.CodeParseUnclosedGroup, "expected ')' to close rest_call(...)")
	return call
}

func (p *Parser) expectStringLiteral(msg string) string {
	tok, ok := p.expect(lexer.String, errors.CodeParseExpectedToken, msg)
	if !ok {
		return ""
	}
	s, _ := tok.Literal.(string)
	return s
}

func (p *Parser) argList() []ast.Expression {
	p.advance() // '('
	var args []ast.Expression
	if !p.check(lexer.RParen) {
		args = append(args, p.ParseExpression())
		for p.matchKind(lexer.Comma) {
			args = append(args, p.ParseExpression())
		}
	}
	p.expect(lexer.RParen, errors.CodeParseUnclosedGroup, "expected ')' to close argument list")
	return args
}

// errExpr returns a placeholder literal so recursive-descent callers can
// keep building a (partial, diagnostic-only) tree after a recorded error.
func (p *Parser) errExpr() ast.Expression {
	return &ast.Literal{Node: ast.Node{Loc: p.peek().Loc}, Kind: ast.LiteralNull, Value: nil}
}
