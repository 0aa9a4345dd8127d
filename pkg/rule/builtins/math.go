package builtins

import (
	"math"

	"github.com/shopspring/decimal"
)

func mathMin(args []interface{}) (interface{}, error) {
	ds, ok := decimalArgs(args)
	if !ok || len(ds) == 0 {
		return nil, nil
	}
	m := ds[0]
	for _, d := range ds[1:] {
		if d.LessThan(m) {
			m = d
		}
	}
	return m, nil
}

func mathMax(args []interface{}) (interface{}, error) {
	ds, ok := decimalArgs(args)
	if !ok || len(ds) == 0 {
		return nil, nil
	}
	m := ds[0]
	for _, d := range ds[1:] {
		if d.GreaterThan(m) {
			m = d
		}
	}
	return m, nil
}

func mathAbs(args []interface{}) (interface{}, error) {
	d, ok := toDecimal(arg(args, 0))
	if !ok {
		return nil, nil
	}
	return d.Abs(), nil
}

// mathRound implements round(value, scale?); scale defaults to 0.
func mathRound(args []interface{}) (interface{}, error) {
	d, ok := toDecimal(arg(args, 0))
	if !ok {
		return nil, nil
	}
	scale := int32(0)
	if len(args) > 1 {
		if s, ok := toDecimal(args[1]); ok {
			scale = int32(s.IntPart())
		}
	}
	return d.Round(scale), nil
}

func mathCeil(args []interface{}) (interface{}, error) {
	d, ok := toDecimal(arg(args, 0))
	if !ok {
		return nil, nil
	}
	return d.Ceil(), nil
}

func mathFloor(args []interface{}) (interface{}, error) {
	d, ok := toDecimal(arg(args, 0))
	if !ok {
		return nil, nil
	}
	return d.Floor(), nil
}

// mathSqrt returns null for a negative operand rather than raising, per
// spec.md §4.H.
func mathSqrt(args []interface{}) (interface{}, error) {
	d, ok := toDecimal(arg(args, 0))
	if !ok {
		return nil, nil
	}
	f, _ := d.Float64()
	if f < 0 {
		return nil, nil
	}
	return decimal.NewFromFloat(math.Sqrt(f)), nil
}

func mathPow(args []interface{}) (interface{}, error) {
	base, ok1 := toDecimal(arg(args, 0))
	exp, ok2 := toDecimal(arg(args, 1))
	if !ok1 || !ok2 {
		return nil, nil
	}
	b, _ := base.Float64()
	x, _ := exp.Float64()
	return decimal.NewFromFloat(math.Pow(b, x)), nil
}

func decimalArgs(args []interface{}) ([]decimal.Decimal, bool) {
	out := make([]decimal.Decimal, 0, len(args))
	for _, a := range args {
		d, ok := toDecimal(a)
		if !ok {
			return nil, false
		}
		out = append(out, d)
	}
	return out, true
}
