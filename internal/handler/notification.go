package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/loan-manager/internal/domain"
	"github.com/segyhp/loan-manager/pkg/response"
)

type NotificationService interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /api/v1/users/{userId}/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.ListByUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, notifications)
}

// MarkRead handles POST /api/v1/notifications/{notificationId}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "notificationId")
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{"id": id, "read": true})
}
