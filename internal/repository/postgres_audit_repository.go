package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// PostgresAuditRepository implements AuditRepository using PostgreSQL.
// The booking_audit table is append-only; there are no update or delete
// operations on purpose.
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository
func NewPostgresAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{pool: pool}
}

// CreateTx appends an audit entry within a transaction
func (r *PostgresAuditRepository) CreateTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.audit.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", entry.BookingID),
		attribute.String("action", entry.Action.String()),
	)

	query := `
		INSERT INTO booking_audit (
			booking_id, action, old_value, new_value,
			actor_id, actor_role, comment, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query,
		entry.BookingID,
		entry.Action.String(),
		nullString(entry.OldValue),
		nullString(entry.NewValue),
		entry.ActorID,
		entry.ActorRole.String(),
		nullString(entry.Comment),
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByBookingID retrieves a booking's audit trail in insertion order
func (r *PostgresAuditRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*domain.AuditEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.audit.get_by_booking")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	query := `
		SELECT
			id, booking_id, action, old_value, new_value,
			actor_id, actor_role, comment, created_at
		FROM booking_audit
		WHERE booking_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		entry := &domain.AuditEntry{}
		var (
			action    string
			actorRole string
			oldValue  *string
			newValue  *string
			comment   *string
		)

		err := rows.Scan(
			&entry.ID,
			&entry.BookingID,
			&action,
			&oldValue,
			&newValue,
			&entry.ActorID,
			&actorRole,
			&comment,
			&entry.CreatedAt,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.Action = domain.AuditAction(action)
		entry.ActorRole = domain.ActorRole(actorRole)
		if oldValue != nil {
			entry.OldValue = *oldValue
		}
		if newValue != nil {
			entry.NewValue = *newValue
		}
		if comment != nil {
			entry.Comment = *comment
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(entries)))
	span.SetStatus(codes.Ok, "")
	return entries, nil
}

// Ensure PostgresAuditRepository implements AuditRepository
var _ AuditRepository = (*PostgresAuditRepository)(nil)
