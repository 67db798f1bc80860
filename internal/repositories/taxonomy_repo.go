package repositories

import (
	"context"

	"storefront/internal/models"
)

// BrandRepository defines the interface for brand data access.
type BrandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	GetByName(ctx context.Context, name string) (*models.Brand, error)
	// ListWithProducts returns only brands that have at least one product.
	ListWithProducts(ctx context.Context) ([]models.Brand, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	// ListWithProducts returns only categories that have at least one product.
	ListWithProducts(ctx context.Context) ([]models.Category, error)
}
