// Package loanmath holds the loan arithmetic used by the calculator and
// eligibility screens: EMI amortization and the eligibility policy.
//
// Every function here is pure. Inputs arrive either as typed queries or as
// raw form text, which is parsed into a query before any arithmetic runs.
package loanmath

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedInput is matched by every input validation failure,
	// including degenerate arithmetic such as a zero interest rate.
	ErrMalformedInput = errors.New("missing or malformed input")

	// ErrMissingFields is matched when a required eligibility field is absent
	// or not a positive number.
	ErrMissingFields = errors.New("please fill all required fields")
)

// Reasons attached to an InputError.
const (
	ReasonRequired    = "required"
	ReasonNotNumber   = "not a number"
	ReasonNotInteger  = "not an integer"
	ReasonNotFinite   = "not finite"
	ReasonNotPositive = "must be greater than zero"
	ReasonNegative    = "must not be negative"
	ReasonDegenerate  = "degenerate"
)

// InputError names the field that failed validation.
type InputError struct {
	Field  string
	Reason string

	missing bool
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports ErrMalformedInput for every InputError and ErrMissingFields for
// eligibility presence failures.
func (e *InputError) Is(target error) bool {
	switch target {
	case ErrMalformedInput:
		return true
	case ErrMissingFields:
		return e.missing
	}
	return false
}

// LoanQuery is the input to ComputeAmortization.
type LoanQuery struct {
	Principal                 float64 `json:"principal"`
	AnnualInterestRatePercent float64 `json:"annual_interest_rate"`
	TenureYears               float64 `json:"tenure_years"`
}

// Amortization is the fixed monthly installment of a loan and its totals,
// rounded to cents.
type Amortization struct {
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalPayment   decimal.Decimal `json:"total_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	Installments   float64         `json:"installments"`
}

// EligibilityQuery is the input to EvaluateEligibility.
type EligibilityQuery struct {
	MonthlyIncome             float64 `json:"monthly_income"`
	ExistingMonthlyObligation float64 `json:"existing_emi"`
	RequestedLoanAmount       float64 `json:"loan_amount"`
	ApplicantAge              int     `json:"age"`
}

// Decision names the gate that settled an eligibility check.
type Decision string

const (
	DecisionEligible      Decision = "eligible"
	DecisionAgeOutOfRange Decision = "age_rejected"
	DecisionOverCommitted Decision = "affordability_rejected"
)

// EligibilityResult is the outcome of an eligibility check.
type EligibilityResult struct {
	IsEligible        bool            `json:"eligible"`
	ReasonMessage     string          `json:"message"`
	MaximumLoanAmount decimal.Decimal `json:"max_loan_amount"`
	Decision          Decision        `json:"-"`
}
