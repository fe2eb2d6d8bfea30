package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusDeclined = "declined"
)

// LoanApplication represents a borrower's request for a loan
type LoanApplication struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	UserID              string          `json:"user_id" db:"user_id"`
	FullName            string          `json:"full_name" db:"full_name"`
	IDNumber            string          `json:"id_number" db:"id_number"`
	LoanAmount          decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	TenureYears         float64         `json:"tenure_years" db:"tenure_years"`
	Purpose             string          `json:"purpose" db:"purpose"`
	EmploymentStatus    string          `json:"employment_status" db:"employment_status"`
	MonthlyIncome       decimal.Decimal `json:"monthly_income" db:"monthly_income"`
	Address             string          `json:"address" db:"address"`
	PhoneNumber         string          `json:"phone_number" db:"phone_number"`
	IDDocumentURL       string          `json:"id_document_url,omitempty" db:"id_document_url"`
	ProofOfResidenceURL string          `json:"proof_of_residence_url,omitempty" db:"proof_of_residence_url"`
	BankStatementURL    string          `json:"bank_statement_url,omitempty" db:"bank_statement_url"`
	Status              string          `json:"status" db:"status"`
	DeclineMessage      string          `json:"decline_message,omitempty" db:"decline_message"`
	MissingDetails      pq.StringArray  `json:"missing_details,omitempty" db:"missing_details"`
	LoanID              uuid.NullUUID   `json:"loan_id" db:"loan_id"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type SubmitApplicationRequest struct {
	UserID              string          `json:"user_id" validate:"required"`
	FullName            string          `json:"full_name" validate:"required"`
	IDNumber            string          `json:"id_number" validate:"required"`
	LoanAmount          decimal.Decimal `json:"loan_amount" validate:"required,gt=0"`
	TenureYears         float64         `json:"tenure_years" validate:"omitempty,gt=0,lte=30"`
	Purpose             string          `json:"purpose"`
	EmploymentStatus    string          `json:"employment_status"`
	MonthlyIncome       decimal.Decimal `json:"monthly_income" validate:"gte=0"`
	Address             string          `json:"address"`
	PhoneNumber         string          `json:"phone_number"`
	IDDocumentURL       string          `json:"id_document_url" validate:"omitempty,url"`
	ProofOfResidenceURL string          `json:"proof_of_residence_url" validate:"omitempty,url"`
	BankStatementURL    string          `json:"bank_statement_url" validate:"omitempty,url"`
}

type DeclineApplicationRequest struct {
	DeclineMessage string   `json:"decline_message" validate:"required"`
	MissingDetails []string `json:"missing_details"`
}

type ApproveApplicationResponse struct {
	Application *LoanApplication `json:"application"`
	Loan        *Loan            `json:"loan"`
	Schedule    []*LoanSchedule  `json:"schedule"`
}
