package service

import (
	"log/slog"

	"github.com/segyhp/loan-manager/internal/domain"
	customError "github.com/segyhp/loan-manager/pkg/errors"
	"github.com/segyhp/loan-manager/pkg/loanmath"
	"github.com/segyhp/loan-manager/pkg/utils"
)

// Outcomes reported to metrics
const (
	OutcomeEligible      = "eligible"
	OutcomeAgeRejected   = "age_rejected"
	OutcomeOverCommitted = "affordability_rejected"
	OutcomeCalculated    = "calculated"
	OutcomeInvalid       = "invalid"
)

// CalculatorService answers the public EMI and eligibility forms
type CalculatorService struct {
	policy   loanmath.Policy
	currency string
	metrics  Metrics
	logger   *slog.Logger
}

func NewCalculatorService(policy loanmath.Policy, currency string, metrics Metrics, logger *slog.Logger) *CalculatorService {
	return &CalculatorService{
		policy:   policy,
		currency: currency,
		metrics:  metrics,
		logger:   logger,
	}
}

// CalculateEMI parses the calculator form and amortizes the loan
func (s *CalculatorService) CalculateEMI(req domain.EMIRequest) (*domain.EMIResponse, error) {
	query, err := loanmath.ParseLoanForm(req.Form())
	if err != nil {
		s.metrics.ObserveCalculation(OutcomeInvalid)
		return nil, customError.WrapInvalidInput(err)
	}

	result, err := loanmath.ComputeAmortization(query)
	if err != nil {
		s.metrics.ObserveCalculation(OutcomeInvalid)
		return nil, customError.WrapInvalidInput(err)
	}
	s.metrics.ObserveCalculation(OutcomeCalculated)

	return &domain.EMIResponse{
		Amortization: result,
		Display: map[string]string{
			"monthly_payment": utils.FormatCurrency(s.currency, result.MonthlyPayment),
			"total_payment":   utils.FormatCurrency(s.currency, result.TotalPayment),
			"total_interest":  utils.FormatCurrency(s.currency, result.TotalInterest),
		},
	}, nil
}

func eligibilityOutcome(d loanmath.Decision) string {
	switch d {
	case loanmath.DecisionEligible:
		return OutcomeEligible
	case loanmath.DecisionAgeOutOfRange:
		return OutcomeAgeRejected
	case loanmath.DecisionOverCommitted:
		return OutcomeOverCommitted
	default:
		return OutcomeInvalid
	}
}

// CheckEligibility parses the eligibility form and evaluates it against the policy
func (s *CalculatorService) CheckEligibility(req domain.EligibilityRequest) (*loanmath.EligibilityResult, error) {
	query, err := loanmath.ParseEligibilityForm(req.Form())
	if err != nil {
		s.metrics.ObserveEligibility(OutcomeInvalid)
		return nil, customError.WrapInvalidInput(err)
	}

	result, err := loanmath.EvaluateEligibility(query, s.policy)
	if err != nil {
		s.metrics.ObserveEligibility(OutcomeInvalid)
		return nil, customError.WrapInvalidInput(err)
	}

	outcome := eligibilityOutcome(result.Decision)
	s.metrics.ObserveEligibility(outcome)

	s.logger.Debug("eligibility evaluated",
		"outcome", outcome,
		"employment_type", req.EmploymentType,
		"max_loan_amount", result.MaximumLoanAmount.String(),
	)

	return &result, nil
}
