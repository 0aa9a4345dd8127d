package builtins

import (
	"log/slog"

	"rulecraft/engine/pkg/rule/context"
	"rulecraft/engine/pkg/rule/errors"
)

// SideEffectingFunc is a function invoked only via the "call" action form,
// which may perform I/O or write additional computed variables beyond its
// return value.
type SideEffectingFunc func(ctx *context.EvaluationContext, args []interface{}) (interface{}, error)

// SideEffectingRegistry is the function table pkg/rule/exec's
// FunctionCallAction dispatches against: spec.md's resolved Open Question
// requires calculate_loan_payment's 4-argument, context-writing form to
// live here, never unified with the pure 3-arg builtins.Registry entry.
type SideEffectingRegistry struct {
	logger *slog.Logger
	funcs  map[string]SideEffectingFunc
}

// NewSideEffectingRegistry builds the default side-effecting function
// table: logging, notification stubs, and the 4-arg calculate_loan_payment
// form.
func NewSideEffectingRegistry(logger *slog.Logger) *SideEffectingRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &SideEffectingRegistry{logger: logger, funcs: make(map[string]SideEffectingFunc)}
	r.funcs["log"] = r.seLog
	r.funcs["notify"] = r.seNotify
	r.funcs["calculate_loan_payment"] = r.seCalculateLoanPayment
	return r
}

// Call implements pkg/rule/exec.SideEffectingLookup.
func (r *SideEffectingRegistry) Call(ctx *context.EvaluationContext, name string, args []interface{}) (interface{}, bool, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, false, nil
	}
	result, err := fn(ctx, args)
	return result, true, err
}

func (r *SideEffectingRegistry) seLog(ctx *context.EvaluationContext, args []interface{}) (interface{}, error) {
	r.logger.Info("rule log action", "message", toStringValue(arg(args, 0)), "operation_id", ctx.OperationID())
	return nil, nil
}

func (r *SideEffectingRegistry) seNotify(ctx *context.EvaluationContext, args []interface{}) (interface{}, error) {
	ctx.RecordDiagnostic("notification", toStringValue(arg(args, 0)), errors.Location{})
	return nil, nil
}

// seCalculateLoanPayment is the 4-argument form: principal, annual rate,
// term months, and the name of the computed variable to receive the
// payment. It computes via the same pure formula as builtins.Registry's
// 3-arg calculate_loan_payment and writes the result itself.
func (r *SideEffectingRegistry) seCalculateLoanPayment(ctx *context.EvaluationContext, args []interface{}) (interface{}, error) {
	payment, err := calcLoanPayment(args[:minInt(3, len(args))])
	if err != nil {
		return nil, err
	}
	if len(args) > 3 {
		resultVar := toStringValue(args[3])
		if err := ctx.Write(resultVar, payment, errors.Location{}); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
