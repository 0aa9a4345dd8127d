package builtins

import (
	"strings"

	"github.com/shopspring/decimal"
)

func strLength(args []interface{}) (interface{}, error) {
	return decimal.NewFromInt(int64(len([]rune(toStringValue(arg(args, 0)))))), nil
}

// strSubstring implements substring(s, start, end?); end defaults to the
// string's length. Out-of-range bounds are clamped rather than raising.
func strSubstring(args []interface{}) (interface{}, error) {
	s := []rune(toStringValue(arg(args, 0)))
	start := intArg(args, 1, 0)
	end := intArg(args, 2, len(s))
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start > end {
		start = end
	}
	return string(s[start:end]), nil
}

func strUpper(args []interface{}) (interface{}, error) {
	return strings.ToUpper(toStringValue(arg(args, 0))), nil
}

func strLower(args []interface{}) (interface{}, error) {
	return strings.ToLower(toStringValue(arg(args, 0))), nil
}

func strTrim(args []interface{}) (interface{}, error) {
	return strings.TrimSpace(toStringValue(arg(args, 0))), nil
}

func strContains(args []interface{}) (interface{}, error) {
	return strings.Contains(toStringValue(arg(args, 0)), toStringValue(arg(args, 1))), nil
}

func strStartsWith(args []interface{}) (interface{}, error) {
	return strings.HasPrefix(toStringValue(arg(args, 0)), toStringValue(arg(args, 1))), nil
}

func strEndsWith(args []interface{}) (interface{}, error) {
	return strings.HasSuffix(toStringValue(arg(args, 0)), toStringValue(arg(args, 1))), nil
}

func strReplace(args []interface{}) (interface{}, error) {
	return strings.ReplaceAll(toStringValue(arg(args, 0)), toStringValue(arg(args, 1)), toStringValue(arg(args, 2))), nil
}

func intArg(args []interface{}, i, def int) int {
	if i >= len(args) {
		return def
	}
	d, ok := toDecimal(args[i])
	if !ok {
		return def
	}
	return int(d.IntPart())
}
