package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/pkg/telemetry"
)

// PostgresCatalogRepository implements CatalogRepository against the
// services table. The catalog is owned by the provider management system;
// this repository only reads it.
type PostgresCatalogRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalogRepository creates a new PostgresCatalogRepository
func NewPostgresCatalogRepository(pool *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{pool: pool}
}

// GetService retrieves a service offering by its ID
func (r *PostgresCatalogRepository) GetService(ctx context.Context, id string) (*domain.CatalogService, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.catalog.get_service")
	defer span.End()

	span.SetAttributes(attribute.String("service_id", id))

	query := `
		SELECT id, provider_id, name, hourly_rate, active
		FROM services
		WHERE id = $1
	`

	svc := &domain.CatalogService{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.ProviderID,
		&svc.Name,
		&svc.HourlyRate,
		&svc.Active,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrServiceNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return svc, nil
}

// Ensure PostgresCatalogRepository implements CatalogRepository
var _ CatalogRepository = (*PostgresCatalogRepository)(nil)
