package builtins

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSqrtOfNegativeReturnsNull(t *testing.T) {
	r := NewRegistry(nil, nil)
	v, found, err := r.Call("sqrt", []interface{}{decimal.NewFromInt(-4)})
	if err != nil || !found {
		t.Fatalf("Call(sqrt, -4) = %v, %v, %v", v, found, err)
	}
	if v != nil {
		t.Errorf("sqrt(-4) = %v, want nil", v)
	}
}

func TestIsRoutingNumberValidatesABAChecksum(t *testing.T) {
	r := NewRegistry(nil, nil)
	// 021000021 is a real, checksum-valid ABA routing number (JPMorgan Chase NY).
	v, _, _ := r.Call("is_routing_number", []interface{}{"021000021"})
	if v != true {
		t.Errorf("is_routing_number(021000021) = %v, want true", v)
	}
	v, _, _ = r.Call("is_routing_number", []interface{}{"123456789"})
	if v != false {
		t.Errorf("is_routing_number(123456789) = %v, want false", v)
	}
}

func TestIsCreditScoreBounds(t *testing.T) {
	r := NewRegistry(nil, nil)
	v, _, _ := r.Call("is_credit_score", []interface{}{decimal.NewFromInt(300)})
	if v != true {
		t.Error("300 should be a valid credit score (lower bound)")
	}
	v, _, _ = r.Call("is_credit_score", []interface{}{decimal.NewFromInt(851)})
	if v != false {
		t.Error("851 should be out of credit score range")
	}
}

func TestDebtToIncomeRatioDivisionByZeroReturnsNull(t *testing.T) {
	r := NewRegistry(nil, nil)
	v, found, err := r.Call("debt_to_income_ratio", []interface{}{decimal.NewFromInt(1000), decimal.Zero})
	if err != nil || !found {
		t.Fatalf("unexpected error/not-found: %v %v", found, err)
	}
	if v != nil {
		t.Errorf("debt_to_income_ratio with zero income = %v, want nil, not an error", v)
	}
}

func TestDebtToIncomeRatioRoundsToFourDecimals(t *testing.T) {
	r := NewRegistry(nil, nil)
	v, _, _ := r.Call("debt_to_income_ratio", []interface{}{decimal.NewFromInt(1), decimal.NewFromInt(3)})
	d := v.(decimal.Decimal)
	if d.String() != "0.3333" {
		t.Errorf("debt_to_income_ratio(1,3) = %s, want 0.3333", d.String())
	}
}

func TestAgeAtLeastUsesInjectedClock(t *testing.T) {
	r := NewRegistry(nil, fixedClock(time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)))
	v, _, _ := r.Call("age_at_least", []interface{}{"2000-01-01", decimal.NewFromInt(18)})
	if v != true {
		t.Error("age_at_least(2000-01-01, 18) should be true as of 2026")
	}
}

func TestMaskDataPreservesLastFourCharacters(t *testing.T) {
	r := NewRegistry(nil, nil)
	v, _, _ := r.Call("mask_data", []interface{}{"4111111111111234"})
	if v != "************1234" {
		t.Errorf("mask_data = %v, want last 4 chars preserved", v)
	}
}
