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

// pgLockNotAvailable is the Postgres error code raised when lock_timeout
// expires while waiting on a row lock.
const pgLockNotAvailable = "55P03"

// PostgresSlotRepository implements SlotRepository using PostgreSQL with pgxpool
type PostgresSlotRepository struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgresSlotRepository creates a new PostgresSlotRepository.
// lockTimeout bounds how long row-lock acquisition may block.
func NewPostgresSlotRepository(pool *pgxpool.Pool, lockTimeout time.Duration) *PostgresSlotRepository {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &PostgresSlotRepository{pool: pool, lockTimeout: lockTimeout}
}

const slotColumns = `
	id, provider_id, slot_date, start_at, end_at,
	available, booked, booking_id, created_at, updated_at
`

// Create creates a new slot record in the database
func (r *PostgresSlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("slot_id", slot.ID),
		attribute.String("provider_id", slot.ProviderID),
	)

	query := `
		INSERT INTO slots (
			id, provider_id, slot_date, start_at, end_at,
			available, booked, booking_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.pool.Exec(ctx, query,
		slot.ID,
		slot.ProviderID,
		slot.SlotDate,
		slot.StartAt,
		slot.EndAt,
		slot.Available,
		slot.Booked,
		slot.BookingID,
		slot.CreatedAt,
		slot.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrSlotOverlap
		}
		return fmt.Errorf("failed to create slot: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a slot by its ID
func (r *PostgresSlotRepository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", id))

	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlotRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrSlotNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return slot, nil
}

// GetByIDForUpdate retrieves a slot under a FOR UPDATE row lock. The lock is
// held until the transaction commits or rolls back. SET LOCAL scopes the
// lock_timeout to this transaction only.
func (r *PostgresSlotRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Slot, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.get_for_update")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", id))

	if err := setLockTimeout(ctx, tx, r.lockTimeout); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`

	slot, err := scanSlotRow(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrSlotNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			span.SetStatus(codes.Error, "lock timeout")
			return nil, domain.ErrLockTimeout
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return slot, nil
}

// HasOverlap reports whether the provider has another slot on the date whose
// half-open time range intersects [startAt, endAt).
func (r *PostgresSlotRepository) HasOverlap(ctx context.Context, providerID string, date, startAt, endAt time.Time, excludeID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.has_overlap")
	defer span.End()

	span.SetAttributes(attribute.String("provider_id", providerID))

	query := `
		SELECT EXISTS(
			SELECT 1 FROM slots
			WHERE provider_id = $1
				AND slot_date = $2
				AND start_at < $4
				AND end_at > $3
				AND id <> $5
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, providerID, date, startAt, endAt, excludeID).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check slot overlap: %w", err)
	}

	span.SetAttributes(attribute.Bool("overlap", exists))
	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// UpdateTx updates a slot within a transaction. The caller must have locked
// the row with GetByIDForUpdate first; the full-column write is only safe
// against a snapshot taken under that lock.
func (r *PostgresSlotRepository) UpdateTx(ctx context.Context, tx pgx.Tx, slot *domain.Slot) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.update_tx")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", slot.ID))

	result, err := tx.Exec(ctx, slotUpdateQuery,
		slot.ID,
		slot.SlotDate,
		slot.StartAt,
		slot.EndAt,
		slot.Available,
		slot.Booked,
		slot.BookingID,
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrSlotOverlap
		}
		return fmt.Errorf("failed to update slot in transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrSlotNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

const slotUpdateQuery = `
	UPDATE slots SET
		slot_date = $2,
		start_at = $3,
		end_at = $4,
		available = $5,
		booked = $6,
		booking_id = $7,
		updated_at = $8
	WHERE id = $1
`

// DeleteTx deletes a slot within a transaction. The caller must hold the
// row lock so a reservation committing concurrently cannot lose its slot.
func (r *PostgresSlotRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.delete_tx")
	defer span.End()

	span.SetAttributes(attribute.String("slot_id", id))

	result, err := tx.Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrSlotNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// FindBookable retrieves the bookable slots of a provider on a date,
// ordered by start time
func (r *PostgresSlotRepository) FindBookable(ctx context.Context, providerID string, date time.Time) ([]*domain.Slot, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.find_bookable")
	defer span.End()

	span.SetAttributes(attribute.String("provider_id", providerID))

	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE provider_id = $1
			AND slot_date = $2
			AND available = TRUE
			AND booked = FALSE
		ORDER BY start_at ASC
	`

	rows, err := r.pool.Query(ctx, query, providerID, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find bookable slots: %w", err)
	}
	defer rows.Close()

	slots, err := scanSlots(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(slots)))
	span.SetStatus(codes.Ok, "")
	return slots, nil
}

// GetByProviderID retrieves all slots of a provider within a date range
func (r *PostgresSlotRepository) GetByProviderID(ctx context.Context, providerID string, from, to time.Time) ([]*domain.Slot, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.slot.get_by_provider")
	defer span.End()

	span.SetAttributes(attribute.String("provider_id", providerID))

	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE provider_id = $1
			AND slot_date >= $2
			AND slot_date <= $3
		ORDER BY slot_date ASC, start_at ASC
	`

	rows, err := r.pool.Query(ctx, query, providerID, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get slots by provider: %w", err)
	}
	defer rows.Close()

	slots, err := scanSlots(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(slots)))
	span.SetStatus(codes.Ok, "")
	return slots, nil
}

// BeginTx starts a new transaction
func (r *PostgresSlotRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// setLockTimeout bounds lock waits for the current transaction.
func setLockTimeout(ctx context.Context, tx pgx.Tx, timeout time.Duration) error {
	_, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds()))
	if err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}
	return nil
}

// scanSlotRow scans a single row into a Slot struct
func scanSlotRow(row pgx.Row) (*domain.Slot, error) {
	slot := &domain.Slot{}
	var bookingID *string

	err := row.Scan(
		&slot.ID,
		&slot.ProviderID,
		&slot.SlotDate,
		&slot.StartAt,
		&slot.EndAt,
		&slot.Available,
		&slot.Booked,
		&bookingID,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.BookingID = bookingID
	return slot, nil
}

// scanSlots scans rows into a Slot slice
func scanSlots(rows pgx.Rows) ([]*domain.Slot, error) {
	var slots []*domain.Slot
	for rows.Next() {
		slot, err := scanSlotRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}

	return slots, nil
}

// Ensure PostgresSlotRepository implements SlotRepository
var _ SlotRepository = (*PostgresSlotRepository)(nil)
