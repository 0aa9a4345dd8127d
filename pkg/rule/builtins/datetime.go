package builtins

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts is the parse order spec.md §4.H requires: ISO-8601 first,
// then MM/dd/yyyy, dd-MM-yyyy, and two further common layouts.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// unitParts maps a unit name (with singular/plural/single-letter
// aliases) to a calendar-aware offset applied via time.AddDate. Months and
// years are not fixed-length, so dateadd adds them via AddDate directly
// rather than approximating with a duration.
func unitParts(unit string, amount int) (years, months, days int) {
	switch normalizeUnit(unit) {
	case "year":
		return amount, 0, 0
	case "month":
		return 0, amount, 0
	case "week":
		return 0, 0, amount * 7
	default: // "day"
		return 0, 0, amount
	}
}

func normalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch u {
	case "y", "yr", "yrs", "year", "years":
		return "year"
	case "mo", "mon", "month", "months":
		return "month"
	case "w", "wk", "wks", "week", "weeks":
		return "week"
	default:
		return "day"
	}
}

func (r *Registry) dtNow(args []interface{}) (interface{}, error) {
	return r.now().Format(time.RFC3339), nil
}

func (r *Registry) dtToday(args []interface{}) (interface{}, error) {
	return r.now().Format("2006-01-02"), nil
}

// dtDateAdd implements dateadd(date, amount, unit).
func (r *Registry) dtDateAdd(args []interface{}) (interface{}, error) {
	t, ok := parseDate(toStringValue(arg(args, 0)))
	if !ok {
		return nil, nil
	}
	amount := intArg(args, 1, 0)
	unit := toStringValue(arg(args, 2))
	y, m, d := unitParts(unit, amount)
	return t.AddDate(y, m, d).Format("2006-01-02"), nil
}

// dtDateDiff implements datediff(a, b, unit?); unit defaults to "days".
func (r *Registry) dtDateDiff(args []interface{}) (interface{}, error) {
	a, ok1 := parseDate(toStringValue(arg(args, 0)))
	b, ok2 := parseDate(toStringValue(arg(args, 1)))
	if !ok1 || !ok2 {
		return nil, nil
	}
	unit := "days"
	if len(args) > 2 {
		unit = toStringValue(args[2])
	}
	diffDays := int(b.Sub(a).Hours() / 24)
	switch normalizeUnit(unit) {
	case "year":
		return decimal.NewFromInt(int64(diffDays / 365)), nil
	case "month":
		return decimal.NewFromInt(int64(diffDays / 30)), nil
	case "week":
		return decimal.NewFromInt(int64(diffDays / 7)), nil
	default:
		return decimal.NewFromInt(int64(diffDays)), nil
	}
}

func (r *Registry) dtTimeHour(args []interface{}) (interface{}, error) {
	t, ok := parseDate(toStringValue(arg(args, 0)))
	if !ok {
		t = r.now()
	}
	return decimal.NewFromInt(int64(t.Hour())), nil
}
