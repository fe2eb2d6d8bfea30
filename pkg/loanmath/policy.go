package loanmath

import (
	"errors"
	"fmt"
)

// Policy holds the tunable constants of the eligibility decision.
type Policy struct {
	MinAge              int
	MaxAge              int
	DebtToIncomeCeiling float64
	HorizonMonths       float64
}

// DefaultPolicy returns the 21-65 age window, a 50% debt-to-income ceiling
// and a 60 month affordability horizon.
func DefaultPolicy() Policy {
	return Policy{
		MinAge:              21,
		MaxAge:              65,
		DebtToIncomeCeiling: 0.5,
		HorizonMonths:       60,
	}
}

// Validate checks that the policy can produce a decision.
func (p Policy) Validate() error {
	if p.MinAge <= 0 {
		return errors.New("minimum age must be greater than 0")
	}
	if p.MaxAge < p.MinAge {
		return fmt.Errorf("maximum age %d is below minimum age %d", p.MaxAge, p.MinAge)
	}
	if p.DebtToIncomeCeiling <= 0 || p.DebtToIncomeCeiling > 1 {
		return fmt.Errorf("debt-to-income ceiling %v must be in (0, 1]", p.DebtToIncomeCeiling)
	}
	if p.HorizonMonths <= 0 {
		return errors.New("affordability horizon must be greater than 0")
	}
	return nil
}

// AgeMessage is the reason given when the applicant is outside the age window.
func (p Policy) AgeMessage() string {
	return fmt.Sprintf("Age must be between %d and %d years", p.MinAge, p.MaxAge)
}
