package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/loan-manager/internal/domain"
	"github.com/segyhp/loan-manager/pkg/response"
)

type ApplicationService interface {
	Submit(ctx context.Context, req *domain.SubmitApplicationRequest) (*domain.LoanApplication, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error)
	List(ctx context.Context, status string) ([]*domain.LoanApplication, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.LoanApplication, error)
	Approve(ctx context.Context, id uuid.UUID) (*domain.ApproveApplicationResponse, error)
	Decline(ctx context.Context, id uuid.UUID, req *domain.DeclineApplicationRequest) (*domain.LoanApplication, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ApplicationHandler struct {
	service   ApplicationService
	validator *validator.Validate
}

func NewApplicationHandler(service ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		service:   service,
		validator: newValidator(),
	}
}

// Submit handles POST /api/v1/applications
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitApplicationRequest
	if !decodeJSON(w, r, &req) || !validate(w, h.validator, &req) {
		return
	}

	app, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, app)
}

// List handles GET /api/v1/applications?status=
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, apps)
}

// ListByUser handles GET /api/v1/users/{userId}/applications
func (h *ApplicationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListByUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, apps)
}

// Get handles GET /api/v1/applications/{applicationId}
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "applicationId")
	if !ok {
		return
	}

	app, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, app)
}

// Approve handles POST /api/v1/applications/{applicationId}/approve
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "applicationId")
	if !ok {
		return
	}

	result, err := h.service.Approve(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Decline handles POST /api/v1/applications/{applicationId}/decline
func (h *ApplicationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "applicationId")
	if !ok {
		return
	}

	var req domain.DeclineApplicationRequest
	if !decodeJSON(w, r, &req) || !validate(w, h.validator, &req) {
		return
	}

	app, err := h.service.Decline(r.Context(), id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, app)
}

// Delete handles DELETE /api/v1/applications/{applicationId}
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "applicationId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]string{"id": id.String(), "status": "deleted"})
}
