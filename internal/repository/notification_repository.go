package repository

import (
	"context"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
)

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create inserts a notification. Returns false when a notification for
	// the same (event, recipient) pair already exists, which is how event
	// re-delivery is detected and dropped.
	Create(ctx context.Context, n *domain.Notification) (bool, error)

	// GetByRecipientID retrieves a recipient's notifications, newest first
	GetByRecipientID(ctx context.Context, recipientID string, limit, offset int) ([]*domain.Notification, error)
}
