package eval

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"rulecraft/engine/pkg/rule/errors"
)

func sumDecimals(ds []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

func foldDecimals(ds []decimal.Decimal, op func(a, b decimal.Decimal) decimal.Decimal) decimal.Decimal {
	if len(ds) == 0 {
		return decimal.Zero
	}
	acc := ds[0]
	for _, d := range ds[1:] {
		acc = op(acc, d)
	}
	return acc
}

func foldDivide(ds []decimal.Decimal, loc errors.Location) (decimal.Decimal, error) {
	if len(ds) == 0 {
		return decimal.Zero, nil
	}
	acc := ds[0]
	for _, d := range ds[1:] {
		if d.IsZero() {
			return decimal.Zero, errors.New(errors.CodeEvalDivByZero, "division by zero", loc)
		}
		acc = acc.DivRound(d, DivScale)
	}
	return acc, nil
}

func minDecimals(ds []decimal.Decimal) decimal.Decimal {
	if len(ds) == 0 {
		return decimal.Zero
	}
	m := ds[0]
	for _, d := range ds[1:] {
		if d.LessThan(m) {
			m = d
		}
	}
	return m
}

func maxDecimals(ds []decimal.Decimal) decimal.Decimal {
	if len(ds) == 0 {
		return decimal.Zero
	}
	m := ds[0]
	for _, d := range ds[1:] {
		if d.GreaterThan(m) {
			m = d
		}
	}
	return m
}

// decimalPow computes base**exp via float64, then re-wraps as a decimal —
// shopspring/decimal has no native arbitrary-precision power operation.
func decimalPow(base, exp decimal.Decimal) decimal.Decimal {
	b, _ := base.Float64()
	x, _ := exp.Float64()
	return decimal.NewFromFloat(math.Pow(b, x))
}

func sqrtFloat(f float64) float64 { return math.Sqrt(f) }

func upper(s string) string     { return strings.ToUpper(s) }
func lower(s string) string     { return strings.ToLower(s) }
func trimSpace(s string) string { return strings.TrimSpace(s) }
func contains(s, substr string) bool  { return strings.Contains(s, substr) }
func hasPrefix(s, prefix string) bool { return strings.HasPrefix(s, prefix) }
func hasSuffix(s, suffix string) bool { return strings.HasSuffix(s, suffix) }

func lengthOf(v interface{}) int {
	switch t := v.(type) {
	case string:
		return len([]rune(t))
	case []interface{}:
		return len(t)
	case map[string]interface{}:
		return len(t)
	default:
		return 0
	}
}
