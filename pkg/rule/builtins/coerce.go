// Package builtins implements the built-in function library (spec.md
// §4.H): math, string, date/time, aggregate, conversion, validation, and
// financial groups, plus the security-utility collaborator interface.
package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case bool:
		if t {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	}
	return decimal.Zero, false
}

func toStringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case decimal.Decimal:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toBoolValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case decimal.Decimal:
		return !t.IsZero()
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	default:
		return true
	}
}

func toList(v interface{}) ([]interface{}, bool) {
	l, ok := v.([]interface{})
	return l, ok
}

func arg(args []interface{}, i int) interface{} {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

// monetary rounds to 2 decimals, half-up, per spec.md §4.H.
func monetary(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// ratio rounds to 4 decimals, half-up, per spec.md §4.H.
func ratio(d decimal.Decimal) decimal.Decimal { return d.Round(4) }
