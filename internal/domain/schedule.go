package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business logic constants
const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusOverdue = "overdue"
)

// LoanSchedule represents a loan schedule entry
type LoanSchedule struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	LoanID            uuid.UUID       `json:"loan_id" db:"loan_id"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	DueAmount         decimal.Decimal `json:"due_amount" db:"due_amount"`
	DueDate           time.Time       `json:"due_date" db:"due_date"`
	Status            string          `json:"status" db:"status"` // pending, paid, overdue
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// IsOpen reports whether the installment still has to be paid
func (s *LoanSchedule) IsOpen() bool {
	return s.Status == ScheduleStatusPending || s.Status == ScheduleStatusOverdue
}

// DueReminder is a pending installment joined with its borrower
type DueReminder struct {
	LoanID            uuid.UUID       `db:"loan_id"`
	UserID            string          `db:"user_id"`
	InstallmentNumber int             `db:"installment_number"`
	DueAmount         decimal.Decimal `db:"due_amount"`
	DueDate           time.Time       `db:"due_date"`
}
