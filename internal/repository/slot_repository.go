package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
)

// SlotRepository defines the interface for slot data access
type SlotRepository interface {
	// Create creates a new slot
	Create(ctx context.Context, slot *domain.Slot) error

	// GetByID retrieves a slot by its ID
	GetByID(ctx context.Context, id string) (*domain.Slot, error)

	// GetByIDForUpdate retrieves a slot under a row lock within a transaction.
	// Returns domain.ErrLockTimeout if the lock cannot be acquired in time.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Slot, error)

	// HasOverlap reports whether the provider already offers a slot on the
	// given date whose time range overlaps [startAt, endAt). excludeID skips
	// the slot being updated.
	HasOverlap(ctx context.Context, providerID string, date, startAt, endAt time.Time, excludeID string) (bool, error)

	// UpdateTx updates a slot's schedule, availability and booking binding
	// within a transaction. Callers must hold the row lock via
	// GetByIDForUpdate so a concurrent reservation cannot be overwritten.
	UpdateTx(ctx context.Context, tx pgx.Tx, slot *domain.Slot) error

	// DeleteTx deletes a slot within a transaction
	DeleteTx(ctx context.Context, tx pgx.Tx, id string) error

	// FindBookable retrieves the bookable slots of a provider on a date
	FindBookable(ctx context.Context, providerID string, date time.Time) ([]*domain.Slot, error)

	// GetByProviderID retrieves all slots of a provider within a date range
	GetByProviderID(ctx context.Context, providerID string, from, to time.Time) ([]*domain.Slot, error)

	// BeginTx starts a new transaction
	BeginTx(ctx context.Context) (pgx.Tx, error)
}
