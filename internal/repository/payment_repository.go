package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-manager/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, loan_id, user_id, amount, payment_method, reference, status,
			previous_balance, new_balance, created_at
		FROM payments
		WHERE loan_id = $1
		ORDER BY created_at
	`

	payments := []*domain.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE loan_id = $1`, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
