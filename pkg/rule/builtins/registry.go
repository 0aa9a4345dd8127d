package builtins

import "time"

// Func is a pure built-in function: arguments in, dynamic value out. A
// nil result with a nil error is the established "no applicable value"
// outcome (e.g. sqrt of a negative number, division by a zero input).
type Func func(args []interface{}) (interface{}, error)

// Registry is the default FunctionLookup the evaluator and executor share:
// every group from spec.md §4.H registered under its surface name.
type Registry struct {
	funcs    map[string]Func
	security SecurityProvider
	clock    func() time.Time
}

// NewRegistry builds the default built-in function table. security may be
// nil, in which case encrypt/decrypt resolve to null (per the injected
// collaborator pattern); clock may be nil to default to time.Now.
func NewRegistry(security SecurityProvider, clock func() time.Time) *Registry {
	if clock == nil {
		clock = time.Now
	}
	r := &Registry{funcs: make(map[string]Func), security: security, clock: clock}
	r.register()
	return r
}

func (r *Registry) now() time.Time { return r.clock() }

func (r *Registry) register() {
	// Math
	r.funcs["min"] = mathMin
	r.funcs["max"] = mathMax
	r.funcs["abs"] = mathAbs
	r.funcs["round"] = mathRound
	r.funcs["ceil"] = mathCeil
	r.funcs["floor"] = mathFloor
	r.funcs["sqrt"] = mathSqrt
	r.funcs["pow"] = mathPow

	// String
	r.funcs["length"] = strLength
	r.funcs["substring"] = strSubstring
	r.funcs["upper"] = strUpper
	r.funcs["lower"] = strLower
	r.funcs["trim"] = strTrim
	r.funcs["contains"] = strContains
	r.funcs["starts_with"] = strStartsWith
	r.funcs["ends_with"] = strEndsWith
	r.funcs["replace"] = strReplace

	// Date/time
	r.funcs["now"] = r.dtNow
	r.funcs["today"] = r.dtToday
	r.funcs["dateadd"] = r.dtDateAdd
	r.funcs["datediff"] = r.dtDateDiff
	r.funcs["time_hour"] = r.dtTimeHour

	// Aggregate
	r.funcs["sum"] = aggSum
	r.funcs["avg"] = aggAvg
	r.funcs["first"] = aggFirst
	r.funcs["last"] = aggLast
	r.funcs["size"] = aggSize
	r.funcs["count"] = aggSize

	// Conversion
	r.funcs["tonumber"] = convToNumber
	r.funcs["tostring"] = convToString
	r.funcs["toboolean"] = convToBoolean

	// Validation predicates
	r.funcs["is_email"] = valIsEmail
	r.funcs["is_phone"] = valIsPhone
	r.funcs["is_ssn"] = valIsSSN
	r.funcs["is_credit_score"] = valIsCreditScore
	r.funcs["is_account_number"] = valIsAccountNumber
	r.funcs["is_routing_number"] = valIsRoutingNumber
	r.funcs["is_business_day"] = valIsBusinessDay
	r.funcs["is_weekend"] = valIsWeekend
	r.funcs["age_at_least"] = r.valAgeAtLeast
	r.funcs["age_less_than"] = r.valAgeLessThan
	r.funcs["length_equals"] = valLengthEquals
	r.funcs["length_greater_than"] = valLengthGreaterThan
	r.funcs["length_less_than"] = valLengthLessThan

	// Financial
	r.funcs["calculate_loan_payment"] = calcLoanPayment
	r.funcs["calculate_compound_interest"] = calcCompoundInterest
	r.funcs["calculate_amortization"] = calcAmortization
	r.funcs["debt_to_income_ratio"] = debtToIncomeRatio
	r.funcs["credit_utilization"] = creditUtilization
	r.funcs["loan_to_value"] = loanToValue
	r.funcs["calculate_apr"] = calcAPR
	r.funcs["payment_history_score"] = paymentHistoryScore

	// Security utilities
	r.funcs["encrypt"] = r.secEncrypt
	r.funcs["decrypt"] = r.secDecrypt
	r.funcs["mask_data"] = r.secMaskData
}

// Call implements pkg/rule/eval.FunctionLookup.
func (r *Registry) Call(name string, args []interface{}) (interface{}, bool, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, false, nil
	}
	result, err := fn(args)
	return result, true, err
}
