package ast

// LiteralKind is the type tag of a Literal node's value.
type LiteralKind string

const (
	LiteralString  LiteralKind = "string"
	LiteralNumber  LiteralKind = "number"
	LiteralBoolean LiteralKind = "boolean"
	LiteralList    LiteralKind = "list"
	LiteralNull    LiteralKind = "null"
)

// Literal is a constant value embedded directly in source.
type Literal struct {
	Node
	Kind  LiteralKind
	Value interface{} // string, float64, bool, []Expression, or nil
}

func (l *Literal) Accept(v Visitor) (interface{}, error) { return v.VisitLiteral(l) }
func (l *Literal) HasVariableReferences() bool           { return false }
func (l *Literal) IsConstant() bool                       { return true }
func (l *Literal) Complexity() int                        { return l.memoComplexity(func() int { return 1 }) }
func (l *Literal) ExpressionType() ExpressionType {
	switch l.Kind {
	case LiteralString:
		return TypeString
	case LiteralNumber:
		return TypeNumber
	case LiteralBoolean:
		return TypeBoolean
	case LiteralList:
		return TypeList
	default:
		return TypeAny
	}
}

// Variable is a reference to a named value in the evaluation context,
// optionally followed by a dotted property path and/or a single index
// expression (user.profile.age, items[2]). Only one index level is held;
// chained indexing such as matrix[i][j] is not represented.
type Variable struct {
	Node
	Name         string
	PropertyPath []string
	IndexExpr    Expression // nil unless this is an indexed reference
}

func (n *Variable) Accept(v Visitor) (interface{}, error) { return v.VisitVariable(n) }
func (n *Variable) HasVariableReferences() bool           { return true }
func (n *Variable) IsConstant() bool                       { return false }
func (n *Variable) Complexity() int {
	return n.memoComplexity(func() int {
		c := 1 + len(n.PropertyPath)
		if n.IndexExpr != nil {
			c += n.IndexExpr.Complexity()
		}
		return c
	})
}
func (n *Variable) ExpressionType() ExpressionType { return TypeAny }

// UnaryOp enumerates single-operand expression operators.
type UnaryOp string

const (
	OpNegate   UnaryOp = "negate"
	OpNot      UnaryOp = "not"
	OpExists   UnaryOp = "exists"
	OpIsNull   UnaryOp = "is_null"
	OpIsNumber UnaryOp = "is_number"
	OpIsString UnaryOp = "is_string"
	OpIsBool   UnaryOp = "is_boolean"
	OpIsList   UnaryOp = "is_list"
	OpToUpper  UnaryOp = "to_upper"
	OpToLower  UnaryOp = "to_lower"
	OpTrim     UnaryOp = "trim"
	OpLength   UnaryOp = "length"
)

// Unary applies a single-operand operator.
type Unary struct {
	Node
	Op      UnaryOp
	Operand Expression
}

func (n *Unary) Accept(v Visitor) (interface{}, error) { return v.VisitUnary(n) }
func (n *Unary) HasVariableReferences() bool           { return n.Operand.HasVariableReferences() }
func (n *Unary) IsConstant() bool                       { return n.Operand.IsConstant() }
func (n *Unary) Complexity() int {
	return n.memoComplexity(func() int { return 1 + n.Operand.Complexity() })
}
func (n *Unary) ExpressionType() ExpressionType {
	switch n.Op {
	case OpNot, OpExists, OpIsNull, OpIsNumber, OpIsString, OpIsBool, OpIsList:
		return TypeBoolean
	case OpToUpper, OpToLower, OpTrim:
		return TypeString
	case OpLength, OpNegate:
		return TypeNumber
	default:
		return TypeAny
	}
}

// BinaryOp enumerates two-operand expression operators: arithmetic,
// comparison, string, membership, and logical.
type BinaryOp string

const (
	BinAdd        BinaryOp = "+"
	BinSub        BinaryOp = "-"
	BinMul        BinaryOp = "*"
	BinDiv        BinaryOp = "/"
	BinMod        BinaryOp = "%"
	BinPow        BinaryOp = "**"
	BinEqual      BinaryOp = "equals"
	BinNotEqual   BinaryOp = "not_equals"
	BinGreater    BinaryOp = "greater_than"
	BinLess       BinaryOp = "less_than"
	BinAtLeast    BinaryOp = "at_least"
	BinAtMost     BinaryOp = "at_most"
	BinContains   BinaryOp = "contains"
	BinStartsWith BinaryOp = "starts_with"
	BinEndsWith   BinaryOp = "ends_with"
	BinMatches    BinaryOp = "matches"
	BinInList     BinaryOp = "in_list"
	BinAnd        BinaryOp = "and"
	BinOr         BinaryOp = "or"
)

// Binary applies a two-operand operator to left and right.
type Binary struct {
	Node
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (n *Binary) Accept(v Visitor) (interface{}, error) { return v.VisitBinary(n) }
func (n *Binary) HasVariableReferences() bool {
	return n.Left.HasVariableReferences() || n.Right.HasVariableReferences()
}
func (n *Binary) IsConstant() bool { return n.Left.IsConstant() && n.Right.IsConstant() }
func (n *Binary) Complexity() int {
	return n.memoComplexity(func() int { return 1 + n.Left.Complexity() + n.Right.Complexity() })
}
func (n *Binary) ExpressionType() ExpressionType {
	switch n.Op {
	case BinAdd, BinSub, BinMul, BinDiv, BinMod, BinPow:
		return TypeNumber
	case BinEqual, BinNotEqual, BinGreater, BinLess, BinAtLeast, BinAtMost,
		BinContains, BinStartsWith, BinEndsWith, BinMatches, BinInList, BinAnd, BinOr:
		return TypeBoolean
	default:
		return TypeAny
	}
}

// ArithmeticOp enumerates the n-ary arithmetic shortcut operators.
type ArithmeticOp string

const (
	ArithAdd      ArithmeticOp = "add"
	ArithSubtract ArithmeticOp = "subtract"
	ArithMultiply ArithmeticOp = "multiply"
	ArithDivide   ArithmeticOp = "divide"
	ArithModulo   ArithmeticOp = "modulo"
	ArithPower    ArithmeticOp = "power"
	ArithMin      ArithmeticOp = "min"
	ArithMax      ArithmeticOp = "max"
	ArithSum      ArithmeticOp = "sum"
	ArithAverage  ArithmeticOp = "average"
	ArithAbs      ArithmeticOp = "abs"
	ArithRound    ArithmeticOp = "round"
	ArithFloor    ArithmeticOp = "floor"
	ArithCeil     ArithmeticOp = "ceil"
	ArithSqrt     ArithmeticOp = "sqrt"
)

// ArithmeticExpr is the n-ary arithmetic shortcut form parsers emit for
// calls like add(a, b, c) or min(x, y).
type ArithmeticExpr struct {
	Node
	Op       ArithmeticOp
	Operands []Expression
}

func (n *ArithmeticExpr) Accept(v Visitor) (interface{}, error) { return v.VisitArithmeticExpr(n) }
func (n *ArithmeticExpr) HasVariableReferences() bool {
	for _, o := range n.Operands {
		if o.HasVariableReferences() {
			return true
		}
	}
	return false
}
func (n *ArithmeticExpr) IsConstant() bool {
	for _, o := range n.Operands {
		if !o.IsConstant() {
			return false
		}
	}
	return true
}
func (n *ArithmeticExpr) Complexity() int {
	return n.memoComplexity(func() int {
		c := 1
		for _, o := range n.Operands {
			c += o.Complexity()
		}
		return c
	})
}
func (n *ArithmeticExpr) ExpressionType() ExpressionType { return TypeNumber }

// FunctionCall invokes a named built-in (pkg/rule/builtins) or a
// user-extended function with positional arguments.
type FunctionCall struct {
	Node
	Name      string
	Arguments []Expression
}

func (n *FunctionCall) Accept(v Visitor) (interface{}, error) { return v.VisitFunctionCall(n) }
func (n *FunctionCall) HasVariableReferences() bool {
	for _, a := range n.Arguments {
		if a.HasVariableReferences() {
			return true
		}
	}
	return false
}
func (n *FunctionCall) IsConstant() bool { return false }
func (n *FunctionCall) Complexity() int {
	return n.memoComplexity(func() int {
		c := 2 // function calls cost more than a plain operator
		for _, a := range n.Arguments {
			c += a.Complexity()
		}
		return c
	})
}
func (n *FunctionCall) ExpressionType() ExpressionType { return TypeAny }

// JsonPath extracts a value at path from a source expression, e.g.
// data.items[0].price.
type JsonPath struct {
	Node
	Source Expression
	Path   string
}

func (n *JsonPath) Accept(v Visitor) (interface{}, error) { return v.VisitJsonPath(n) }
func (n *JsonPath) HasVariableReferences() bool           { return n.Source.HasVariableReferences() }
func (n *JsonPath) IsConstant() bool                       { return false }
func (n *JsonPath) Complexity() int {
	return n.memoComplexity(func() int { return 2 + n.Source.Complexity() })
}
func (n *JsonPath) ExpressionType() ExpressionType { return TypeAny }

// RestCall performs an outbound HTTP request via the Engine's injected
// HttpClient collaborator. It is never constant: its complexity and
// dependency analysis treat it as always impure.
type RestCall struct {
	Node
	Method  string
	URL     Expression
	Body    Expression // nil if none
	Headers map[string]Expression
	Timeout Expression // nil = collaborator default
}

func (n *RestCall) Accept(v Visitor) (interface{}, error) { return v.VisitRestCall(n) }
func (n *RestCall) HasVariableReferences() bool           { return true }
func (n *RestCall) IsConstant() bool                       { return false }
func (n *RestCall) Complexity() int {
	return n.memoComplexity(func() int {
		c := 10 // external calls are expensive by construction
		c += n.URL.Complexity()
		if n.Body != nil {
			c += n.Body.Complexity()
		}
		for _, h := range n.Headers {
			c += h.Complexity()
		}
		return c
	})
}
func (n *RestCall) ExpressionType() ExpressionType { return TypeAny }
