package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
)

// AuditRepository defines the interface for the append-only booking audit log
type AuditRepository interface {
	// CreateTx appends an entry within a transaction, so the record commits
	// atomically with the mutation it describes
	CreateTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error

	// GetByBookingID retrieves a booking's audit trail in insertion order
	GetByBookingID(ctx context.Context, bookingID string) ([]*domain.AuditEntry, error)
}
