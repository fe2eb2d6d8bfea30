package loanmath

import (
	"github.com/shopspring/decimal"
)

// EligibleMessage is the reason given to an accepted applicant.
const EligibleMessage = "Congratulations! You are eligible for a loan."

// AffordabilityMessage is the reason given when existing obligations already
// use up the debt-to-income ceiling.
const AffordabilityMessage = "Existing EMIs exceed maximum allowed limit"

// EvaluateEligibility decides whether the applicant qualifies under p and how
// much they could borrow.
//
// The age gate runs before the affordability gate and the first failing gate
// ends the evaluation. A malformed query returns an error matching
// ErrMissingFields instead of a negative decision.
func EvaluateEligibility(q EligibilityQuery, p Policy) (EligibilityResult, error) {
	if err := validateEligibilityQuery(q); err != nil {
		return EligibilityResult{}, err
	}

	if q.ApplicantAge < p.MinAge || q.ApplicantAge > p.MaxAge {
		return reject(DecisionAgeOutOfRange, p.AgeMessage()), nil
	}

	maxEMIAllowed := q.MonthlyIncome * p.DebtToIncomeCeiling
	availableEMI := maxEMIAllowed - q.ExistingMonthlyObligation
	if availableEMI <= 0 {
		return reject(DecisionOverCommitted, AffordabilityMessage), nil
	}

	return EligibilityResult{
		IsEligible:        true,
		ReasonMessage:     EligibleMessage,
		MaximumLoanAmount: decimal.NewFromFloat(availableEMI * p.HorizonMonths).Round(cents),
		Decision:          DecisionEligible,
	}, nil
}

func reject(decision Decision, message string) EligibilityResult {
	return EligibilityResult{
		IsEligible:        false,
		ReasonMessage:     message,
		MaximumLoanAmount: decimal.Zero,
		Decision:          decision,
	}
}

func validateEligibilityQuery(q EligibilityQuery) error {
	if err := positive("monthly_income", q.MonthlyIncome); err != nil {
		return missing(err)
	}
	if err := positive("loan_amount", q.RequestedLoanAmount); err != nil {
		return missing(err)
	}
	if q.ApplicantAge <= 0 {
		return &InputError{Field: "age", Reason: ReasonNotPositive, missing: true}
	}
	if !isFinite(q.ExistingMonthlyObligation) {
		return &InputError{Field: "existing_emi", Reason: ReasonNotFinite}
	}
	if q.ExistingMonthlyObligation < 0 {
		return &InputError{Field: "existing_emi", Reason: ReasonNegative}
	}
	return nil
}

func missing(err error) error {
	if ie, ok := err.(*InputError); ok {
		ie.missing = true
		return ie
	}
	return err
}
