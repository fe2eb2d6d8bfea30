package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusCompleted = "completed"

	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodCashDeposit  = "cash_deposit"
)

// Payment is a repayment recorded against a loan
type Payment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LoanID          uuid.UUID       `json:"loan_id" db:"loan_id"`
	UserID          string          `json:"user_id" db:"user_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod   string          `json:"payment_method" db:"payment_method"`
	Reference       string          `json:"reference" db:"reference"`
	Status          string          `json:"status" db:"status"`
	PreviousBalance decimal.Decimal `json:"previous_balance" db:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance" db:"new_balance"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

type MakePaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=bank_transfer mobile_money cash_deposit"`
	Reference     string          `json:"reference" validate:"required"`
}

type MakePaymentResponse struct {
	Payment *Payment `json:"payment"`
	Loan    *Loan    `json:"loan"`
}
