package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool, lockTimeout time.Duration) *PostgresBookingRepository {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &PostgresBookingRepository{pool: pool, lockTimeout: lockTimeout}
}

const bookingColumns = `
	id, customer_id, provider_id, service_id, slot_id,
	scheduled_date, scheduled_start, scheduled_end, duration_minutes,
	actual_start, actual_end, address, latitude, longitude,
	price, status, special_instructions,
	cancellation_reason, cancelled_by,
	requested_at, confirmed_at, completed_at, cancelled_at,
	created_at, updated_at
`

// CreateTx creates a new booking record within a transaction
func (r *PostgresBookingRepository) CreateTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("customer_id", booking.CustomerID),
		attribute.String("provider_id", booking.ProviderID),
	)

	query := `
		INSERT INTO bookings (
			id, customer_id, provider_id, service_id, slot_id,
			scheduled_date, scheduled_start, scheduled_end, duration_minutes,
			actual_start, actual_end, address, latitude, longitude,
			price, status, special_instructions,
			cancellation_reason, cancelled_by,
			requested_at, confirmed_at, completed_at, cancelled_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15, $16, $17,
			$18, $19,
			$20, $21, $22, $23,
			$24, $25
		)
	`

	_, err := tx.Exec(ctx, query,
		booking.ID,
		booking.CustomerID,
		booking.ProviderID,
		booking.ServiceID,
		booking.SlotID,
		booking.ScheduledDate,
		booking.ScheduledStart,
		booking.ScheduledEnd,
		booking.DurationMinutes,
		booking.ActualStart,
		booking.ActualEnd,
		nullString(booking.Address),
		booking.Latitude,
		booking.Longitude,
		booking.Price,
		booking.Status.String(),
		nullString(booking.SpecialInstructions),
		nullString(booking.CancellationReason),
		nullString(booking.CancelledBy),
		booking.RequestedAt,
		booking.ConfirmedAt,
		booking.CompletedAt,
		booking.CancelledAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBookingRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// GetByIDForUpdate retrieves a booking under a FOR UPDATE row lock, which
// serializes concurrent transitions against the same booking.
func (r *PostgresBookingRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_for_update")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	if err := setLockTimeout(ctx, tx, r.lockTimeout); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	booking, err := scanBookingRow(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			span.SetStatus(codes.Error, "lock timeout")
			return nil, domain.ErrLockTimeout
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// UpdateTx persists booking state within a transaction
func (r *PostgresBookingRepository) UpdateTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.update")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("status", booking.Status.String()),
	)

	query := `
		UPDATE bookings SET
			slot_id = $2,
			actual_start = $3,
			actual_end = $4,
			status = $5,
			cancellation_reason = $6,
			cancelled_by = $7,
			confirmed_at = $8,
			completed_at = $9,
			cancelled_at = $10,
			updated_at = $11
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query,
		booking.ID,
		booking.SlotID,
		booking.ActualStart,
		booking.ActualEnd,
		booking.Status.String(),
		nullString(booking.CancellationReason),
		nullString(booking.CancelledBy),
		booking.ConfirmedAt,
		booking.CompletedAt,
		booking.CancelledAt,
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByCustomerID retrieves a customer's bookings, newest first
func (r *PostgresBookingRepository) GetByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*domain.Booking, error) {
	return r.getByParty(ctx, "repo.postgres.booking.get_by_customer", "customer_id", customerID, limit, offset)
}

// GetByProviderID retrieves a provider's bookings, newest first
func (r *PostgresBookingRepository) GetByProviderID(ctx context.Context, providerID string, limit, offset int) ([]*domain.Booking, error) {
	return r.getByParty(ctx, "repo.postgres.booking.get_by_provider", "provider_id", providerID, limit, offset)
}

func (r *PostgresBookingRepository) getByParty(ctx context.Context, spanName, column, id string, limit, offset int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	span.SetAttributes(
		attribute.String(column, id),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ` + column + ` = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, id, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBookingRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// BeginTx starts a new transaction
func (r *PostgresBookingRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// scanBookingRow scans a row into a Booking struct
func scanBookingRow(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	var (
		status              string
		slotID              *string
		address             *string
		specialInstructions *string
		cancellationReason  *string
		cancelledBy         *string
	)

	err := row.Scan(
		&booking.ID,
		&booking.CustomerID,
		&booking.ProviderID,
		&booking.ServiceID,
		&slotID,
		&booking.ScheduledDate,
		&booking.ScheduledStart,
		&booking.ScheduledEnd,
		&booking.DurationMinutes,
		&booking.ActualStart,
		&booking.ActualEnd,
		&address,
		&booking.Latitude,
		&booking.Longitude,
		&booking.Price,
		&status,
		&specialInstructions,
		&cancellationReason,
		&cancelledBy,
		&booking.RequestedAt,
		&booking.ConfirmedAt,
		&booking.CompletedAt,
		&booking.CancelledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatus(status)
	booking.SlotID = slotID
	if address != nil {
		booking.Address = *address
	}
	if specialInstructions != nil {
		booking.SpecialInstructions = *specialInstructions
	}
	if cancellationReason != nil {
		booking.CancellationReason = *cancellationReason
	}
	if cancelledBy != nil {
		booking.CancelledBy = *cancelledBy
	}

	return booking, nil
}

// nullString converts an empty string to a nil pointer
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresBookingRepository implements BookingRepository
var _ BookingRepository = (*PostgresBookingRepository)(nil)
