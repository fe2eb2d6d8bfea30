package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/loan-manager/internal/domain"
)

const applicationColumns = `
	id, user_id, full_name, id_number, loan_amount, tenure_years, purpose, employment_status,
	monthly_income, address, phone_number, id_document_url, proof_of_residence_url,
	bank_statement_url, status, decline_message, missing_details, loan_id, created_at, updated_at`

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (` + applicationColumns + `)
		VALUES (:id, :user_id, :full_name, :id_number, :loan_amount, :tenure_years, :purpose, :employment_status,
			:monthly_income, :address, :phone_number, :id_document_url, :proof_of_residence_url,
			:bank_statement_url, :status, :decline_message, :missing_details, :loan_id, :created_at, :updated_at)
	`

	app.MissingDetails = missingDetails(app.MissingDetails)

	_, err := r.db.NamedExecContext(ctx, query, app)
	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`

	var app domain.LoanApplication
	err := r.db.GetContext(ctx, &app, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) List(ctx context.Context, status string) ([]*domain.LoanApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`

	apps := []*domain.LoanApplication{}
	if err := r.db.SelectContext(ctx, &apps, query, status); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.LoanApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	apps := []*domain.LoanApplication{}
	if err := r.db.SelectContext(ctx, &apps, query, userID); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *applicationRepository) Decline(ctx context.Context, id uuid.UUID, message string, details []string) error {
	query := `
		UPDATE loan_applications
		SET status = $2, decline_message = $3, missing_details = $4, updated_at = $5
		WHERE id = $1 AND status = $6
	`

	res, err := r.db.ExecContext(ctx, query,
		id,
		domain.ApplicationStatusDeclined,
		message,
		missingDetails(details),
		time.Now(),
		domain.ApplicationStatusPending,
	)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}

// Delete removes an application unless it has been approved. Zero affected
// rows means the application is missing or approved.
func (r *applicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM loan_applications WHERE id = $1 AND status <> $2`

	res, err := r.db.ExecContext(ctx, query, id, domain.ApplicationStatusApproved)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}

// missingDetails never returns nil: a nil pq.StringArray is sent as NULL.
func missingDetails(details []string) pq.StringArray {
	if details == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(details)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
