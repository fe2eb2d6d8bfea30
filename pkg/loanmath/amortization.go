package loanmath

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	monthsPerYear = 12
	percent       = 100
	cents         = 2
)

// ComputeAmortization returns the fixed monthly installment of a standard
// amortizing loan together with the total paid and the total interest.
//
// The installment is rounded to cents first and the totals are derived from
// the rounded installment, so TotalPayment always equals MonthlyPayment times
// the number of installments. A zero rate is rejected rather than special
// cased.
func ComputeAmortization(q LoanQuery) (Amortization, error) {
	if err := validateLoanQuery(q); err != nil {
		return Amortization{}, err
	}

	r := q.AnnualInterestRatePercent / monthsPerYear / percent
	n := q.TenureYears * monthsPerYear

	growth := math.Pow(1+r, n)
	denominator := growth - 1
	if r <= 0 || denominator <= 0 || !isFinite(growth) {
		return Amortization{}, &InputError{Field: "annual_interest_rate", Reason: ReasonDegenerate}
	}

	emi := q.Principal * r * growth / denominator
	if !isFinite(emi) || emi <= 0 {
		return Amortization{}, &InputError{Field: "principal", Reason: ReasonDegenerate}
	}

	principal := decimal.NewFromFloat(q.Principal)
	installments := decimal.NewFromFloat(n)

	monthly := decimal.NewFromFloat(emi).Round(cents)
	total := monthly.Mul(installments).Round(cents)
	if total.LessThan(principal) {
		monthly = decimal.NewFromFloat(emi).RoundUp(cents)
		total = monthly.Mul(installments).Round(cents)
	}

	return Amortization{
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total.Sub(principal).Round(cents),
		Installments:   n,
	}, nil
}

func validateLoanQuery(q LoanQuery) error {
	if err := positive("principal", q.Principal); err != nil {
		return err
	}
	if err := positive("annual_interest_rate", q.AnnualInterestRatePercent); err != nil {
		return err
	}
	return positive("tenure_years", q.TenureYears)
}

func positive(field string, v float64) error {
	if !isFinite(v) {
		return &InputError{Field: field, Reason: ReasonNotFinite}
	}
	if v <= 0 {
		return &InputError{Field: field, Reason: ReasonNotPositive}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
