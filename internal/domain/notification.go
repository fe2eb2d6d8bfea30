package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationKindApproved = "application_approved"
	NotificationKindDeclined = "application_declined"
	NotificationKindReminder = "payment_reminder"
	NotificationKindPaidOff  = "loan_paid"
)

// Notification is an in-app message for a user
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Kind      string    `json:"kind" db:"kind"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
