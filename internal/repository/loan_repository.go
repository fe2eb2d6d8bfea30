package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-manager/internal/domain"
)

const loanColumns = `
	id, application_id, user_id, principal, interest_rate, installments, monthly_payment,
	total_payable, remaining_amount, status, start_date, last_payment_date, created_at, updated_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) CreateFromApplication(ctx context.Context, applicationID uuid.UUID, loan *domain.Loan, schedules []*domain.LoanSchedule) error {
	loanQuery := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES (:id, :application_id, :user_id, :principal, :interest_rate, :installments, :monthly_payment,
			:total_payable, :remaining_amount, :status, :start_date, :last_payment_date, :created_at, :updated_at)
	`
	scheduleQuery := `
		INSERT INTO loan_schedule (id, loan_id, installment_number, due_amount, due_date, status, created_at)
		VALUES (:id, :loan_id, :installment_number, :due_amount, :due_date, :status, :created_at)
	`
	approveQuery := `
		UPDATE loan_applications
		SET status = $2, loan_id = $3, updated_at = $4
		WHERE id = $1 AND status = $5
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, loanQuery, loan); err != nil {
		return err
	}

	for _, schedule := range schedules {
		if _, err = tx.NamedExecContext(ctx, scheduleQuery, schedule); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, approveQuery,
		applicationID,
		domain.ApplicationStatusApproved,
		loan.ID,
		loan.CreatedAt,
		domain.ApplicationStatusPending,
	)
	if err != nil {
		return err
	}
	if err = expectOneRow(res); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	loans := []*domain.Loan{}
	if err := r.db.SelectContext(ctx, &loans, query, userID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanSchedule, error) {
	query := `
		SELECT id, loan_id, installment_number, due_amount, due_date, status, created_at
		FROM loan_schedule
		WHERE loan_id = $1
		ORDER BY installment_number
	`

	schedules := []*domain.LoanSchedule{}
	if err := r.db.SelectContext(ctx, &schedules, query, loanID); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *loanRepository) RecordPayment(ctx context.Context, payment *domain.Payment, loan *domain.Loan, paidInstallments []int) error {
	paymentQuery := `
		INSERT INTO payments (id, loan_id, user_id, amount, payment_method, reference, status,
			previous_balance, new_balance, created_at)
		VALUES (:id, :loan_id, :user_id, :amount, :payment_method, :reference, :status,
			:previous_balance, :new_balance, :created_at)
	`
	// The balance guard makes a concurrent payment against a stale balance fail
	loanQuery := `
		UPDATE loans
		SET remaining_amount = $2, status = $3, last_payment_date = $4, updated_at = $4
		WHERE id = $1 AND remaining_amount = $5
	`
	scheduleQuery := `
		UPDATE loan_schedule
		SET status = $3
		WHERE loan_id = $1 AND installment_number = $2
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, paymentQuery, payment); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, loanQuery,
		loan.ID,
		loan.RemainingAmount,
		loan.Status,
		payment.CreatedAt,
		payment.PreviousBalance,
	)
	if err != nil {
		return err
	}
	if err = expectOneRow(res); err != nil {
		return err
	}

	for _, number := range paidInstallments {
		if _, err = tx.ExecContext(ctx, scheduleQuery, loan.ID, number, domain.ScheduleStatusPaid); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE loan_schedule
		SET status = $1
		WHERE status = $2 AND due_date < $3
	`

	res, err := r.db.ExecContext(ctx, query, domain.ScheduleStatusOverdue, domain.ScheduleStatusPending, now)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *loanRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.DueReminder, error) {
	query := `
		SELECT s.loan_id, l.user_id, s.installment_number, s.due_amount, s.due_date
		FROM loan_schedule s
		JOIN loans l ON l.id = s.loan_id
		WHERE l.status = $1 AND s.status = $2 AND s.due_date >= $3 AND s.due_date < $4
		ORDER BY s.due_date, s.loan_id
	`

	reminders := []*domain.DueReminder{}
	err := r.db.SelectContext(ctx, &reminders, query, domain.LoanStatusActive, domain.ScheduleStatusPending, from, to)
	if err != nil {
		return nil, err
	}

	return reminders, nil
}
