package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/loan-manager/internal/domain"
	"github.com/segyhp/loan-manager/internal/repository"
	customError "github.com/segyhp/loan-manager/pkg/errors"
)

type NotificationService struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Notify stores an in-app message for the user
func (s *NotificationService) Notify(ctx context.Context, userID, kind, message string) error {
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.logger.Debug("notification stored", "user_id", userID, "kind", kind)
	return nil
}

func (s *NotificationService) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return customError.WrapNotificationNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}
	return nil
}
