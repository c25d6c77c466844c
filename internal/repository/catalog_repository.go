package repository

import (
	"context"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
)

// CatalogRepository defines the read-only interface onto the service catalog
type CatalogRepository interface {
	// GetService retrieves a service offering by its ID
	GetService(ctx context.Context, id string) (*domain.CatalogService, error)
}
