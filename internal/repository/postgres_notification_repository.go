package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// PostgresNotificationRepository implements NotificationRepository using PostgreSQL
type PostgresNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(pool *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

// Create inserts a notification. The unique constraint on
// (event_id, recipient_id) plus ON CONFLICT DO NOTHING makes the insert
// idempotent under event re-delivery: the second delivery affects zero rows
// and returns false.
func (r *PostgresNotificationRepository) Create(ctx context.Context, n *domain.Notification) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.notification.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", n.EventID),
		attribute.String("recipient_id", n.RecipientID),
	)

	query := `
		INSERT INTO notifications (
			id, event_id, recipient_id, booking_id,
			event_type, title, body, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (event_id, recipient_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		n.ID,
		n.EventID,
		n.RecipientID,
		n.BookingID,
		n.EventType,
		n.Title,
		nullString(n.Body),
		n.CreatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to create notification: %w", err)
	}

	inserted := result.RowsAffected() > 0
	span.SetAttributes(attribute.Bool("inserted", inserted))
	span.SetStatus(codes.Ok, "")
	return inserted, nil
}

// GetByRecipientID retrieves a recipient's notifications, newest first
func (r *PostgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, limit, offset int) ([]*domain.Notification, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.notification.get_by_recipient")
	defer span.End()

	span.SetAttributes(attribute.String("recipient_id", recipientID))

	query := `
		SELECT id, event_id, recipient_id, booking_id,
			event_type, title, body, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		var body *string

		err := rows.Scan(
			&n.ID,
			&n.EventID,
			&n.RecipientID,
			&n.BookingID,
			&n.EventType,
			&n.Title,
			&body,
			&n.CreatedAt,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if body != nil {
			n.Body = *body
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(notifications)))
	span.SetStatus(codes.Ok, "")
	return notifications, nil
}

// Ensure PostgresNotificationRepository implements NotificationRepository
var _ NotificationRepository = (*PostgresNotificationRepository)(nil)
