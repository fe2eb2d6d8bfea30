package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive = "active"
	LoanStatusPaid   = "paid"
)

// Loan represents an approved loan being repaid
type Loan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ApplicationID   uuid.UUID       `json:"application_id" db:"application_id"`
	UserID          string          `json:"user_id" db:"user_id"`
	Principal       decimal.Decimal `json:"principal" db:"principal"`
	InterestRate    decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	Installments    int             `json:"installments" db:"installments"`
	MonthlyPayment  decimal.Decimal `json:"monthly_payment" db:"monthly_payment"`
	TotalPayable    decimal.Decimal `json:"total_payable" db:"total_payable"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	Status          string          `json:"status" db:"status"`
	StartDate       time.Time       `json:"start_date" db:"start_date"`
	LastPaymentDate *time.Time      `json:"last_payment_date,omitempty" db:"last_payment_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// AmountPaid is what has been repaid so far
func (l *Loan) AmountPaid() decimal.Decimal {
	return l.TotalPayable.Sub(l.RemainingAmount)
}

type LoanDetailsResponse struct {
	Loan                *Loan           `json:"loan"`
	Schedule            []*LoanSchedule `json:"schedule"`
	CurrentInstallment  int             `json:"current_installment"`
	OverdueInstallments int             `json:"overdue_installments"`
	NextDue             *LoanSchedule   `json:"next_due,omitempty"`
}
