package loanmath

import (
	"math"
	"strconv"
	"strings"
)

// LoanForm is the calculator form as typed by the user.
type LoanForm struct {
	Principal    string
	InterestRate string
	TenureYears  string
}

// EligibilityForm is the eligibility form as typed by the user. ExistingEMI
// may be left blank.
type EligibilityForm struct {
	MonthlyIncome string
	ExistingEMI   string
	LoanAmount    string
	Age           string
}

// ParseLoanForm turns calculator text fields into a LoanQuery. Blank,
// non-numeric and non-positive values are rejected.
func ParseLoanForm(f LoanForm) (LoanQuery, error) {
	principal, err := parsePositive("principal", f.Principal)
	if err != nil {
		return LoanQuery{}, err
	}
	rate, err := parsePositive("annual_interest_rate", f.InterestRate)
	if err != nil {
		return LoanQuery{}, err
	}
	tenure, err := parsePositive("tenure_years", f.TenureYears)
	if err != nil {
		return LoanQuery{}, err
	}

	return LoanQuery{
		Principal:                 principal,
		AnnualInterestRatePercent: rate,
		TenureYears:               tenure,
	}, nil
}

// ParseEligibilityForm turns eligibility text fields into an EligibilityQuery.
// Every failure matches ErrMissingFields except a malformed or negative
// existing EMI, which only matches ErrMalformedInput.
func ParseEligibilityForm(f EligibilityForm) (EligibilityQuery, error) {
	income, err := parsePositive("monthly_income", f.MonthlyIncome)
	if err != nil {
		return EligibilityQuery{}, missing(err)
	}
	amount, err := parsePositive("loan_amount", f.LoanAmount)
	if err != nil {
		return EligibilityQuery{}, missing(err)
	}
	age, err := parseAge(f.Age)
	if err != nil {
		return EligibilityQuery{}, missing(err)
	}

	existing := 0.0
	if s := strings.TrimSpace(f.ExistingEMI); s != "" {
		existing, err = parseNumber("existing_emi", s)
		if err != nil {
			return EligibilityQuery{}, err
		}
		if existing < 0 {
			return EligibilityQuery{}, &InputError{Field: "existing_emi", Reason: ReasonNegative}
		}
	}

	return EligibilityQuery{
		MonthlyIncome:             income,
		ExistingMonthlyObligation: existing,
		RequestedLoanAmount:       amount,
		ApplicantAge:              age,
	}, nil
}

func parsePositive(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &InputError{Field: field, Reason: ReasonRequired}
	}
	v, err := parseNumber(field, s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, &InputError{Field: field, Reason: ReasonNotPositive}
	}
	return v, nil
}

func parseNumber(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &InputError{Field: field, Reason: ReasonNotNumber}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InputError{Field: field, Reason: ReasonNotFinite}
	}
	return v, nil
}

func parseAge(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &InputError{Field: "age", Reason: ReasonRequired}
	}
	age, err := strconv.Atoi(s)
	if err != nil {
		return 0, &InputError{Field: "age", Reason: ReasonNotInteger}
	}
	if age <= 0 {
		return 0, &InputError{Field: "age", Reason: ReasonNotPositive}
	}
	return age, nil
}
