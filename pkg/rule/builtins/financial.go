package builtins

import (
	"math"

	"github.com/shopspring/decimal"
)

// calcLoanPayment is the pure evaluator-side form: monthly payment for a
// fully amortizing loan, given principal, annual interest rate (percent),
// and term in months. The spec.md resolved Open Question requires this
// form to never write to the evaluation context; pkg/rule/exec's
// side-effecting function table wraps it with a 4th result-variable arg.
func calcLoanPayment(args []interface{}) (interface{}, error) {
	principal, ok1 := toDecimal(arg(args, 0))
	annualRate, ok2 := toDecimal(arg(args, 1))
	termMonths, ok3 := toDecimal(arg(args, 2))
	if !ok1 || !ok2 || !ok3 || termMonths.IsZero() {
		return nil, nil
	}
	n := termMonths.IntPart()
	monthlyRate, _ := annualRate.Div(decimal.NewFromInt(1200)).Float64() // percent/year -> fraction/month
	p, _ := principal.Float64()

	if monthlyRate == 0 {
		return monetary(principal.DivRound(termMonths, 10)), nil
	}
	factor := math.Pow(1+monthlyRate, float64(n))
	payment := p * monthlyRate * factor / (factor - 1)
	return monetary(decimal.NewFromFloat(payment)), nil
}

// calcCompoundInterest returns the final balance after compounding
// principal at annualRate (percent) for the given number of years,
// compounded compoundingsPerYear times per year.
func calcCompoundInterest(args []interface{}) (interface{}, error) {
	principal, ok1 := toDecimal(arg(args, 0))
	annualRate, ok2 := toDecimal(arg(args, 1))
	years, ok3 := toDecimal(arg(args, 2))
	if !ok1 || !ok2 || !ok3 {
		return nil, nil
	}
	compoundingsPerYear := 12.0
	if len(args) > 3 {
		if c, ok := toDecimal(args[3]); ok {
			compoundingsPerYear, _ = c.Float64()
		}
	}
	if compoundingsPerYear == 0 {
		return nil, nil
	}
	p, _ := principal.Float64()
	r, _ := annualRate.Div(decimal.NewFromInt(100)).Float64()
	y, _ := years.Float64()
	amount := p * math.Pow(1+r/compoundingsPerYear, compoundingsPerYear*y)
	return monetary(decimal.NewFromFloat(amount)), nil
}

// calcAmortization returns the total interest paid over the life of a
// fully amortizing loan (total of payments minus principal).
func calcAmortization(args []interface{}) (interface{}, error) {
	paymentV, err := calcLoanPayment(args)
	if err != nil || paymentV == nil {
		return nil, err
	}
	payment := paymentV.(decimal.Decimal)
	principal, _ := toDecimal(arg(args, 0))
	termMonths, _ := toDecimal(arg(args, 2))
	total := payment.Mul(termMonths)
	return monetary(total.Sub(principal)), nil
}

func debtToIncomeRatio(args []interface{}) (interface{}, error) {
	debt, ok1 := toDecimal(arg(args, 0))
	income, ok2 := toDecimal(arg(args, 1))
	if !ok1 || !ok2 || income.IsZero() {
		return nil, nil
	}
	return ratio(debt.DivRound(income, 10)), nil
}

func creditUtilization(args []interface{}) (interface{}, error) {
	balance, ok1 := toDecimal(arg(args, 0))
	limit, ok2 := toDecimal(arg(args, 1))
	if !ok1 || !ok2 || limit.IsZero() {
		return nil, nil
	}
	return ratio(balance.DivRound(limit, 10)), nil
}

func loanToValue(args []interface{}) (interface{}, error) {
	loan, ok1 := toDecimal(arg(args, 0))
	value, ok2 := toDecimal(arg(args, 1))
	if !ok1 || !ok2 || value.IsZero() {
		return nil, nil
	}
	return ratio(loan.DivRound(value, 10)), nil
}

// calcAPR approximates an all-in annual percentage rate given principal,
// total up-front fees, the loan's stated annual rate (percent), and its
// term in months: the stated rate plus the fees' annualized contribution.
func calcAPR(args []interface{}) (interface{}, error) {
	principal, ok1 := toDecimal(arg(args, 0))
	fees, ok2 := toDecimal(arg(args, 1))
	annualRate, ok3 := toDecimal(arg(args, 2))
	termMonths, ok4 := toDecimal(arg(args, 3))
	if !ok1 || !ok2 || !ok3 || !ok4 || principal.IsZero() || termMonths.IsZero() {
		return nil, nil
	}
	years := termMonths.Div(decimal.NewFromInt(12))
	feeContribution := fees.DivRound(principal, 10).Div(years).Mul(decimal.NewFromInt(100))
	return ratio(annualRate.Add(feeContribution)), nil
}

func paymentHistoryScore(args []interface{}) (interface{}, error) {
	onTime, ok1 := toDecimal(arg(args, 0))
	total, ok2 := toDecimal(arg(args, 1))
	if !ok1 || !ok2 || total.IsZero() {
		return nil, nil
	}
	return monetary(onTime.DivRound(total, 10).Mul(decimal.NewFromInt(100))), nil
}
