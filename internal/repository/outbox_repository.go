package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
)

// OutboxRepository defines the interface for outbox data access
type OutboxRepository interface {
	// CreateTx creates a new outbox message within a transaction
	CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error

	// GetPendingMessages gets pending messages to be published
	GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)

	// GetFailedMessages gets failed messages that can be retried
	GetFailedMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)

	// MarkAsPublished marks a message as successfully published
	MarkAsPublished(ctx context.Context, id string) error

	// MarkAsFailed marks a message as failed
	MarkAsFailed(ctx context.Context, id string, errMsg string) error

	// DeletePublished deletes old published messages for cleanup
	DeletePublished(ctx context.Context, olderThanDays int) (int64, error)
}
