package builtins

import (
	"regexp"
	"time"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\-. ()]{6,}[0-9]$`)
	ssnPattern   = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
)

func valIsEmail(args []interface{}) (interface{}, error) {
	return emailPattern.MatchString(toStringValue(arg(args, 0))), nil
}

func valIsPhone(args []interface{}) (interface{}, error) {
	return phonePattern.MatchString(toStringValue(arg(args, 0))), nil
}

func valIsSSN(args []interface{}) (interface{}, error) {
	return ssnPattern.MatchString(toStringValue(arg(args, 0))), nil
}

func valIsCreditScore(args []interface{}) (interface{}, error) {
	d, ok := toDecimal(arg(args, 0))
	if !ok {
		return false, nil
	}
	f, _ := d.Float64()
	return f >= 300 && f <= 850, nil
}

func valIsAccountNumber(args []interface{}) (interface{}, error) {
	s := toStringValue(arg(args, 0))
	return digitsOnly.MatchString(s) && len(s) >= 8 && len(s) <= 17, nil
}

// abaWeights is the routing-number checksum weight sequence spec.md §4.H
// names: 3 7 1 repeated across the 9 digits.
var abaWeights = [9]int{3, 7, 1, 3, 7, 1, 3, 7, 1}

func valIsRoutingNumber(args []interface{}) (interface{}, error) {
	s := toStringValue(arg(args, 0))
	if !digitsOnly.MatchString(s) || len(s) != 9 {
		return false, nil
	}
	sum := 0
	for i, r := range s {
		sum += int(r-'0') * abaWeights[i]
	}
	return sum%10 == 0, nil
}

func valIsBusinessDay(args []interface{}) (interface{}, error) {
	t, ok := parseDate(toStringValue(arg(args, 0)))
	if !ok {
		return false, nil
	}
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday, nil
}

func valIsWeekend(args []interface{}) (interface{}, error) {
	t, ok := parseDate(toStringValue(arg(args, 0)))
	if !ok {
		return false, nil
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday, nil
}

func ageInYears(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

func (r *Registry) valAgeAtLeast(args []interface{}) (interface{}, error) {
	dob, ok := parseDate(toStringValue(arg(args, 0)))
	if !ok {
		return false, nil
	}
	n := intArg(args, 1, 0)
	return ageInYears(dob, r.now()) >= n, nil
}

func (r *Registry) valAgeLessThan(args []interface{}) (interface{}, error) {
	dob, ok := parseDate(toStringValue(arg(args, 0)))
	if !ok {
		return false, nil
	}
	n := intArg(args, 1, 0)
	return ageInYears(dob, r.now()) < n, nil
}

func valLengthEquals(args []interface{}) (interface{}, error) {
	return lengthOf(arg(args, 0)) == intArg(args, 1, 0), nil
}

func valLengthGreaterThan(args []interface{}) (interface{}, error) {
	return lengthOf(arg(args, 0)) > intArg(args, 1, 0), nil
}

func valLengthLessThan(args []interface{}) (interface{}, error) {
	return lengthOf(arg(args, 0)) < intArg(args, 1, 0), nil
}

func lengthOf(v interface{}) int {
	switch t := v.(type) {
	case string:
		return len([]rune(t))
	case []interface{}:
		return len(t)
	default:
		return 0
	}
}
