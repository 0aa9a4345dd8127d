package eval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DivScale is the rounding scale (decimal places) applied to "/" division
// results, per spec.md §4.F's half-up-to-10-places rule. It defaults to 10
// but is overridable at startup via the engine's decimal.div_scale config
// key, so it is a var rather than a const.
var DivScale int32 = 10

func isNumeric(v interface{}) bool {
	switch v.(type) {
	case decimal.Decimal, float64, int, int64:
		return true
	}
	return false
}

// toDecimal coerces a dynamic value to decimal.Decimal. Strings are parsed
// if they look numeric; anything else fails.
func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
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

// toStringValue renders any dynamic value as its string form, used by
// contains/starts_with/ends_with and string concatenation.
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

// toBoolValue implements spec.md §4.F's truthiness coercion: null->false,
// boolean->itself, number->value!=0, string->non-empty,
// list/mapping->non-empty.
func toBoolValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case decimal.Decimal:
		return !t.IsZero()
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}

// valuesEqual implements spec.md §4.F's equality rule: numeric comparison
// when both sides are numeric, structural equality otherwise, with null
// equal only to null.
func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isNumeric(a) && isNumeric(b) {
		da, _ := toDecimal(a)
		db, _ := toDecimal(b)
		return da.Equal(db)
	}
	return reflect.DeepEqual(a, b)
}

// toListValue coerces a dynamic value to a list. Non-list values yield
// nil, false.
func toListValue(v interface{}) ([]interface{}, bool) {
	l, ok := v.([]interface{})
	return l, ok
}
