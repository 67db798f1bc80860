package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// ListInStock returns products with stock > 0, newest first.
	ListInStock(ctx context.Context, page, perPage int) (models.Page, error)
	ListByBrand(ctx context.Context, brandID string, page, perPage int) (models.Page, error)
	ListByCategory(ctx context.Context, categoryID string, page, perPage int) (models.Page, error)
	// Search matches term against name and description, case-insensitively.
	Search(ctx context.Context, term string, limit int) ([]models.Product, error)
}

// pageCount returns how many pages of perPage hold total items.
func pageCount(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	return page, perPage
}
