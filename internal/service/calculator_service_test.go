package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-manager/internal/domain"
	customError "github.com/segyhp/loan-manager/pkg/errors"
	"github.com/segyhp/loan-manager/pkg/loanmath"
)

func newCalculatorService(m Metrics) *CalculatorService {
	return NewCalculatorService(loanmath.DefaultPolicy(), "E", m, testLogger())
}

func TestCalculateEMI_Success(t *testing.T) {
	m := &recordingMetrics{}
	svc := newCalculatorService(m)

	resp, err := svc.CalculateEMI(domain.EMIRequest{Principal: "10000", InterestRate: "12", TenureYears: "1"})

	require.NoError(t, err)
	assert.Equal(t, "888.49", resp.MonthlyPayment.StringFixed(2))
	assert.Equal(t, "10661.88", resp.TotalPayment.StringFixed(2))
	assert.Equal(t, "661.88", resp.TotalInterest.StringFixed(2))
	assert.Equal(t, "E888.49", resp.Display["monthly_payment"])
	assert.Equal(t, "E10661.88", resp.Display["total_payment"])
	assert.Equal(t, []string{OutcomeCalculated}, m.calculation)
}

func TestCalculateEMI_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  domain.EMIRequest
	}{
		{name: "missing principal", req: domain.EMIRequest{InterestRate: "12", TenureYears: "1"}},
		{name: "text principal", req: domain.EMIRequest{Principal: "ten", InterestRate: "12", TenureYears: "1"}},
		{name: "zero rate", req: domain.EMIRequest{Principal: "10000", InterestRate: "0", TenureYears: "1"}},
		{name: "negative tenure", req: domain.EMIRequest{Principal: "10000", InterestRate: "12", TenureYears: "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &recordingMetrics{}
			svc := newCalculatorService(m)

			resp, err := svc.CalculateEMI(tt.req)

			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, errors.Is(err, loanmath.ErrMalformedInput))

			var be *customError.BusinessError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, customError.ErrCodeInvalidInput, be.Code)
			assert.Equal(t, []string{OutcomeInvalid}, m.calculation)
		})
	}
}

func TestCheckEligibility_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		req         domain.EligibilityRequest
		eligible    bool
		message     string
		maxAmount   string
		wantOutcome string
	}{
		{
			name:        "eligible",
			req:         domain.EligibilityRequest{MonthlyIncome: "5000", ExistingEMI: "1000", LoanAmount: "20000", Age: "30"},
			eligible:    true,
			message:     loanmath.EligibleMessage,
			maxAmount:   "90000",
			wantOutcome: OutcomeEligible,
		},
		{
			name:        "too young",
			req:         domain.EligibilityRequest{MonthlyIncome: "5000", ExistingEMI: "0", LoanAmount: "20000", Age: "20"},
			message:     loanmath.DefaultPolicy().AgeMessage(),
			maxAmount:   "0",
			wantOutcome: OutcomeAgeRejected,
		},
		{
			name:        "over committed",
			req:         domain.EligibilityRequest{MonthlyIncome: "5000", ExistingEMI: "3000", LoanAmount: "20000", Age: "30"},
			message:     loanmath.AffordabilityMessage,
			maxAmount:   "0",
			wantOutcome: OutcomeOverCommitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &recordingMetrics{}
			svc := newCalculatorService(m)

			result, err := svc.CheckEligibility(tt.req)

			require.NoError(t, err)
			assert.Equal(t, tt.eligible, result.IsEligible)
			assert.Equal(t, tt.message, result.ReasonMessage)
			assert.Equal(t, tt.maxAmount, result.MaximumLoanAmount.String())
			assert.Equal(t, []string{tt.wantOutcome}, m.eligibility)
		})
	}
}

func TestEligibilityOutcome_IgnoresMessageText(t *testing.T) {
	assert.Equal(t, OutcomeEligible, eligibilityOutcome(loanmath.DecisionEligible))
	assert.Equal(t, OutcomeAgeRejected, eligibilityOutcome(loanmath.DecisionAgeOutOfRange))
	assert.Equal(t, OutcomeOverCommitted, eligibilityOutcome(loanmath.DecisionOverCommitted))
	assert.Equal(t, OutcomeInvalid, eligibilityOutcome(""))
}

func TestCheckEligibility_MissingFields(t *testing.T) {
	m := &recordingMetrics{}
	svc := newCalculatorService(m)

	result, err := svc.CheckEligibility(domain.EligibilityRequest{MonthlyIncome: "5000", Age: "30"})

	assert.Nil(t, result)
	var be *customError.BusinessError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, customError.ErrCodeMissingFields, be.Code)
	assert.Equal(t, []string{OutcomeInvalid}, m.eligibility)
}
