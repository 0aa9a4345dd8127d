// Package ast defines the tagged-sum abstract syntax tree produced by
// pkg/lang/parser and consumed by the YAML adapter, evaluator, executor,
// and static validator.
package ast

import "rulecraft/engine/pkg/rule/errors"

// Location is re-exported from pkg/rule/errors so every AST node, parser
// error, and evaluation error shares one location type.
type Location = errors.Location

// ExpressionType is the static type an expression is declared to produce,
// used by the validator for type-mismatch diagnostics without evaluating.
type ExpressionType string

const (
	TypeString  ExpressionType = "string"
	TypeNumber  ExpressionType = "number"
	TypeBoolean ExpressionType = "boolean"
	TypeList    ExpressionType = "list"
	TypeAny     ExpressionType = "any"
)

// Node is the header every AST node embeds: a source location and a
// memoized complexity score (computed once, cached on first request).
type Node struct {
	Loc        Location
	complexity int
	complexitySet bool
}

// Location returns the node's source location.
func (n *Node) Location() Location {
	return n.Loc
}

// memoComplexity caches and returns a complexity value computed by fn on
// first call; subsequent calls return the cached value without recomputing.
func (n *Node) memoComplexity(fn func() int) int {
	if !n.complexitySet {
		n.complexity = fn()
		n.complexitySet = true
	}
	return n.complexity
}

// Expression is the sum type for every expression-family AST node.
type Expression interface {
	Location() Location
	Accept(v Visitor) (interface{}, error)
	HasVariableReferences() bool
	Complexity() int
	IsConstant() bool
	ExpressionType() ExpressionType
}

// Condition is the sum type for every condition-family AST node.
type Condition interface {
	Location() Location
	Accept(v Visitor) (interface{}, error)
	HasVariableReferences() bool
	Complexity() int
}

// Action is the sum type for every action-family AST node.
type Action interface {
	Location() Location
	Accept(v Visitor) (interface{}, error)
	HasVariableReferences() bool
	Complexity() int
}
