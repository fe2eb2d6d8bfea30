package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-manager/internal/domain"
	"github.com/segyhp/loan-manager/pkg/response"
)

type BillingService interface {
	GetLoanDetails(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailsResponse, error)
	ListLoans(ctx context.Context, userID string) ([]*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanSchedule, error)
	GetOutstanding(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)
	MakePayment(ctx context.Context, loanID uuid.UUID, req *domain.MakePaymentRequest) (*domain.MakePaymentResponse, error)
	ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)
}

type BillingHandler struct {
	service   BillingService
	validator *validator.Validate
}

func NewBillingHandler(service BillingService) *BillingHandler {
	return &BillingHandler{
		service:   service,
		validator: newValidator(),
	}
}

type OutstandingResponse struct {
	LoanID      uuid.UUID       `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// GetLoan handles GET /api/v1/loans/{loanId}
func (h *BillingHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	details, err := h.service.GetLoanDetails(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, details)
}

// ListLoans handles GET /api/v1/users/{userId}/loans
func (h *BillingHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loans)
}

// GetSchedule handles GET /api/v1/loans/{loanId}/schedule
func (h *BillingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	schedules, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, schedules)
}

// GetOutstanding handles GET /api/v1/loans/{loanId}/outstanding
func (h *BillingHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	outstanding, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, OutstandingResponse{LoanID: loanID, Outstanding: outstanding})
}

// MakePayment handles POST /api/v1/loans/{loanId}/payments
func (h *BillingHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	var req domain.MakePaymentRequest
	if !decodeJSON(w, r, &req) || !validate(w, h.validator, &req) {
		return
	}

	result, err := h.service.MakePayment(r.Context(), loanID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, result)
}

// ListPayments handles GET /api/v1/loans/{loanId}/payments
func (h *BillingHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payments)
}
