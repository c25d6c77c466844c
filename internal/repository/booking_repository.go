package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
)

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	// CreateTx creates a new booking within a transaction
	CreateTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error

	// GetByID retrieves a booking by its ID
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByIDForUpdate retrieves a booking under a row lock within a
	// transaction. Returns domain.ErrLockTimeout on lock timeout.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Booking, error)

	// UpdateTx persists booking state within a transaction
	UpdateTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error

	// GetByCustomerID retrieves a customer's bookings, newest first
	GetByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*domain.Booking, error)

	// GetByProviderID retrieves a provider's bookings, newest first
	GetByProviderID(ctx context.Context, providerID string, limit, offset int) ([]*domain.Booking, error)

	// BeginTx starts a new transaction
	BeginTx(ctx context.Context) (pgx.Tx, error)
}
