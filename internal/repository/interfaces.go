package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-manager/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// ApplicationRepository defines the interface for loan application data operations
type ApplicationRepository interface {
	// Create stores a new application
	Create(ctx context.Context, app *domain.LoanApplication) error

	// GetByID retrieves an application by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error)

	// List retrieves applications, optionally filtered by status, newest first
	List(ctx context.Context, status string) ([]*domain.LoanApplication, error)

	// ListByUser retrieves a user's applications, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.LoanApplication, error)

	// Decline marks a pending application as declined
	Decline(ctx context.Context, id uuid.UUID, message string, missingDetails []string) error

	// Delete removes an application that is not approved
	Delete(ctx context.Context, id uuid.UUID) error
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// CreateFromApplication creates the loan and its schedule and marks the
	// application approved in one transaction
	CreateFromApplication(ctx context.Context, applicationID uuid.UUID, loan *domain.Loan, schedules []*domain.LoanSchedule) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// ListByUser retrieves a user's loans, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.Loan, error)

	// GetScheduleByLoanID retrieves loan schedule by loan ID
	GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanSchedule, error)

	// RecordPayment stores the payment, updates the loan balance and status and
	// marks the covered installments paid in one transaction
	RecordPayment(ctx context.Context, payment *domain.Payment, loan *domain.Loan, paidInstallments []int) error

	// MarkOverdue flags pending installments due before now as overdue
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)

	// ListDueBetween lists open installments of active loans due in [from, to)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.DueReminder, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// GetByLoanID retrieves all payments for a loan, oldest first
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)

	// GetTotalPaid calculates total amount paid for a loan
	GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	// Create stores a notification
	Create(ctx context.Context, n *domain.Notification) error

	// ListByUser retrieves a user's notifications, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)

	// MarkRead flags a notification as read
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// LoanCache keeps recently read loans close to the API
type LoanCache interface {
	// Get returns the cached loan or nil on a miss
	Get(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Set caches a loan
	Set(ctx context.Context, loan *domain.Loan) error

	// Delete evicts a loan
	Delete(ctx context.Context, id uuid.UUID) error
}
