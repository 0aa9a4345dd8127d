package parser

import (
	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/lang/lexer"
	"rulecraft/engine/pkg/rule/errors"
)

// ParseCondition parses a full condition (logic_or precedence down to
// comparison, falling through to a plain expression coerced to boolean).
// between/not_between are special-cased at the comparison level per
// spec's grammar note, since they need a third operand no Binary node
// carries.
func (p *Parser) ParseCondition() ast.Condition {
	return p.condLogicOr()
}

func (p *Parser) condLogicOr() ast.Condition {
	if !p.enterDepth() {
		defer p.exitDepth()
		return p.errCond()
	}
	defer p.exitDepth()

	left := p.condLogicAnd()
	var operands []ast.Condition
	for p.matchKind(lexer.KwOr) {
		operands = append(operands, p.condLogicAnd())
	}
	if len(operands) == 0 {
		return left
	}
	return &ast.Logical{Node: ast.Node{Loc: left.Location()}, Op: ast.LogOr, Operands: append([]ast.Condition{left}, operands...)}
}

func (p *Parser) condLogicAnd() ast.Condition {
	left := p.condEquality()
	var operands []ast.Condition
	for p.matchKind(lexer.KwAnd) {
		operands = append(operands, p.condEquality())
	}
	if len(operands) == 0 {
		return left
	}
	return &ast.Logical{Node: ast.Node{Loc: left.Location()}, Op: ast.LogAnd, Operands: append([]ast.Condition{left}, operands...)}
}

func (p *Parser) condEquality() ast.Condition {
	left := p.condComparison()
	for {
		var op ast.ComparisonOp
		switch {
		case p.matchKind(lexer.KwEquals, lexer.EqEq):
			op = ast.CmpEqual
		case p.matchKind(lexer.KwNotEquals, lexer.NotEq):
			op = ast.CmpNotEqual
		default:
			return left
		}
		loc := p.previous().Loc
		leftExpr, ok := asComparableOperand(left)
		if !ok {
			p.errorAt(errors.CodeParseInvalidAction, "left-hand side of a comparison must be a plain expression")
			return left
		}
		rightExpr := p.term()
		left = &ast.Comparison{Node: ast.Node{Loc: loc}, Op: op, Left: leftExpr, Right: rightExpr}
	}
}

var condComparisonOpByKind = map[lexer.Kind]ast.ComparisonOp{
	lexer.Gt:             ast.CmpGreaterThan,
	lexer.Lt:              ast.CmpLessThan,
	lexer.GtEq:            ast.CmpAtLeast,
	lexer.LtEq:            ast.CmpAtMost,
	lexer.KwGreaterThan:   ast.CmpGreaterThan,
	lexer.KwLessThan:      ast.CmpLessThan,
	lexer.KwAtLeast:       ast.CmpAtLeast,
	lexer.KwAtMost:        ast.CmpAtMost,
	lexer.KwContains:      ast.CmpContains,
	lexer.KwStartsWith:    ast.CmpStartsWith,
	lexer.KwEndsWith:      ast.CmpEndsWith,
	lexer.KwMatches:       ast.CmpMatches,
	lexer.KwInList:        ast.CmpInList,
}

// condComparison parses `term` then looks for between/not_between first
// (per spec's special-casing note), then the remaining comparison
// operators, then falls back to wrapping a bare expression.
func (p *Parser) condComparison() ast.Condition {
	left := p.term()

	if p.matchKind(lexer.KwBetween, lexer.KwNotBetween) {
		op := ast.CmpBetween
		if p.previous().Kind == lexer.KwNotBetween {
			op = ast.CmpNotBetween
		}
		loc := p.previous().Loc
		lower := p.term()
		p.expect(lexer.KwAnd, errors.CodeParseExpectedToken, "expected 'and' between the bounds of a between/not_between comparison")
		upper := p.term()
		return &ast.Comparison{Node: ast.Node{Loc: loc}, Op: op, Left: left, Right: lower, RangeEnd: upper}
	}

	if op, ok := condComparisonOpByKind[p.peekKind()]; ok {
		p.advance()
		loc := p.previous().Loc
		right := p.term()
		return &ast.Comparison{Node: ast.Node{Loc: loc}, Op: op, Left: left, Right: right}
	}

	if p.matchKind(lexer.KwNot) {
		// leading "not" on a bare expression: wrap as Logical{Not} over an
		// ExpressionCondition, matching the unary-not reading of "not x".
		loc := p.previous().Loc
		inner := p.condComparison()
		return &ast.Logical{Node: ast.Node{Loc: loc}, Op: ast.LogNot, Operands: []ast.Condition{inner}}
	}

	return &ast.ExpressionCondition{Node: ast.Node{Loc: left.Location()}, Expr: left}
}

// asComparableOperand recovers the underlying Expression from a condition
// produced earlier in the same chain, since equality/comparison operate on
// expressions, not nested conditions.
func asComparableOperand(c ast.Condition) (ast.Expression, bool) {
	if ec, ok := c.(*ast.ExpressionCondition); ok {
		return ec.Expr, true
	}
	return nil, false
}

func (p *Parser) errCond() ast.Condition {
	return &ast.ExpressionCondition{Node: ast.Node{Loc: p.peek().Loc}, Expr: p.errExpr()}
}
