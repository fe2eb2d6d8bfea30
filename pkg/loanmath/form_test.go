package loanmath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoanForm(t *testing.T) {
	q, err := ParseLoanForm(LoanForm{Principal: " 10000 ", InterestRate: "12", TenureYears: "1.5"})

	require.NoError(t, err)
	assert.Equal(t, LoanQuery{Principal: 10000, AnnualInterestRatePercent: 12, TenureYears: 1.5}, q)
}

func TestParseLoanForm_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		form   LoanForm
		field  string
		reason string
	}{
		{name: "blank principal", form: LoanForm{InterestRate: "12", TenureYears: "1"}, field: "principal", reason: ReasonRequired},
		{name: "text rate", form: LoanForm{Principal: "100", InterestRate: "twelve", TenureYears: "1"}, field: "annual_interest_rate", reason: ReasonNotNumber},
		{name: "zero rate", form: LoanForm{Principal: "100", InterestRate: "0", TenureYears: "1"}, field: "annual_interest_rate", reason: ReasonNotPositive},
		{name: "negative tenure", form: LoanForm{Principal: "100", InterestRate: "5", TenureYears: "-2"}, field: "tenure_years", reason: ReasonNotPositive},
		{name: "NaN principal", form: LoanForm{Principal: "NaN", InterestRate: "5", TenureYears: "2"}, field: "principal", reason: ReasonNotFinite},
		{name: "infinite tenure", form: LoanForm{Principal: "100", InterestRate: "5", TenureYears: "+Inf"}, field: "tenure_years", reason: ReasonNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLoanForm(tt.form)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput))

			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
			assert.Equal(t, tt.reason, inputErr.Reason)
		})
	}
}

func TestParseEligibilityForm(t *testing.T) {
	q, err := ParseEligibilityForm(EligibilityForm{MonthlyIncome: "5000", LoanAmount: "20000", Age: "30"})

	require.NoError(t, err)
	assert.Equal(t, EligibilityQuery{MonthlyIncome: 5000, RequestedLoanAmount: 20000, ApplicantAge: 30}, q)

	q, err = ParseEligibilityForm(EligibilityForm{MonthlyIncome: "5000", ExistingEMI: "1000", LoanAmount: "20000", Age: "30"})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, q.ExistingMonthlyObligation)
}

func TestParseEligibilityForm_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		form    EligibilityForm
		field   string
		missing bool
	}{
		{name: "blank income", form: EligibilityForm{LoanAmount: "100", Age: "30"}, field: "monthly_income", missing: true},
		{name: "text loan amount", form: EligibilityForm{MonthlyIncome: "100", LoanAmount: "lots", Age: "30"}, field: "loan_amount", missing: true},
		{name: "fractional age", form: EligibilityForm{MonthlyIncome: "100", LoanAmount: "100", Age: "30.5"}, field: "age", missing: true},
		{name: "zero age", form: EligibilityForm{MonthlyIncome: "100", LoanAmount: "100", Age: "0"}, field: "age", missing: true},
		{name: "text existing emi", form: EligibilityForm{MonthlyIncome: "100", ExistingEMI: "abc", LoanAmount: "100", Age: "30"}, field: "existing_emi"},
		{name: "negative existing emi", form: EligibilityForm{MonthlyIncome: "100", ExistingEMI: "-5", LoanAmount: "100", Age: "30"}, field: "existing_emi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEligibilityForm(tt.form)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput))
			assert.Equal(t, tt.missing, errors.Is(err, ErrMissingFields))

			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}
