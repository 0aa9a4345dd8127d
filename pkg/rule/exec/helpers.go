package exec

import (
	"reflect"

	"github.com/shopspring/decimal"

	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/rule/errors"
)

func indexValue(i int) decimal.Decimal { return decimal.NewFromInt(int64(i)) }

func asDecimal(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	}
	return decimal.Zero, false
}

// applyCompoundOp implements the four ArithmeticAction operators: the
// current value of the target variable (zero if unset) combined with the
// newly evaluated delta.
func applyCompoundOp(op ast.ArithmeticActionOp, current, delta interface{}, loc errors.Location) (decimal.Decimal, error) {
	cur, ok := asDecimal(current)
	if !ok {
		cur = decimal.Zero
	}
	d, ok := asDecimal(delta)
	if !ok {
		return decimal.Zero, errors.New(errors.CodeEvalTypeError, "arithmetic action requires a numeric operand", loc)
	}
	switch op {
	case ast.ActAdd:
		return cur.Add(d), nil
	case ast.ActSubtract:
		return cur.Sub(d), nil
	case ast.ActMultiply:
		return cur.Mul(d), nil
	case ast.ActDivide:
		if d.IsZero() {
			return decimal.Zero, errors.New(errors.CodeEvalDivByZero, "division by zero in arithmetic action", loc)
		}
		return cur.DivRound(d, 10), nil
	}
	return decimal.Zero, errors.New(errors.CodeEvalInternal, "unhandled arithmetic action operator", loc)
}

// valuesEqualPublic mirrors eval's equality rule (numeric comparison when
// both sides are numeric, structural equality otherwise) for list removal.
func valuesEqualPublic(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	da, aok := asDecimal(a)
	db, bok := asDecimal(b)
	if aok && bok {
		return da.Equal(db)
	}
	return reflect.DeepEqual(a, b)
}
