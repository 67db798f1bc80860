package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single product with its brand and category.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Brand").Preload("Category").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit("Brand", "Category").Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).
		Select("name", "price", "discount", "stock", "description", "colors", "brand_id", "category_id", "image_1", "image_2", "image_3").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s for update: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMProductRepository) ListInStock(ctx context.Context, page, perPage int) (models.Page, error) {
	return r.paginate(ctx, page, perPage, "stock > ?", 0)
}

func (r *GORMProductRepository) ListByBrand(ctx context.Context, brandID string, page, perPage int) (models.Page, error) {
	return r.paginate(ctx, page, perPage, "brand_id = ?", brandID)
}

func (r *GORMProductRepository) ListByCategory(ctx context.Context, categoryID string, page, perPage int) (models.Page, error) {
	return r.paginate(ctx, page, perPage, "category_id = ?", categoryID)
}

func (r *GORMProductRepository) Search(ctx context.Context, term string, limit int) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("created_at desc").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products for %q: %w", term, err)
	}
	return products, nil
}

func (r *GORMProductRepository) paginate(ctx context.Context, page, perPage int, cond string, args ...interface{}) (models.Page, error) {
	page, perPage = normalizePage(page, perPage)
	query := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Product{}).Where(cond, args...)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return models.Page{}, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := query().
		Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&products).Error
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to list products: %w", err)
	}

	return models.Page{
		Items:   products,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pageCount(total, perPage),
	}, nil
}
