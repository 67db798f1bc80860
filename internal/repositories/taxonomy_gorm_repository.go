package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMBrandRepository is a GORM implementation of BrandRepository.
type GORMBrandRepository struct {
	db *gorm.DB
}

func NewGORMBrandRepository(db *gorm.DB) *GORMBrandRepository {
	return &GORMBrandRepository{db: db}
}

func (r *GORMBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if _, err := r.GetByName(ctx, brand.Name); err == nil {
		return fmt.Errorf("brand %q: %w", brand.Name, ErrDuplicate)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

func (r *GORMBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	return firstBy[models.Brand](ctx, r.db, "brand", "id", id)
}

func (r *GORMBrandRepository) GetByName(ctx context.Context, name string) (*models.Brand, error) {
	return firstBy[models.Brand](ctx, r.db, "brand", "name", name)
}

func (r *GORMBrandRepository) ListWithProducts(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM products WHERE products.brand_id = brands.id)").
		Order("name").
		Find(&brands).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if _, err := r.GetByName(ctx, category.Name); err == nil {
		return fmt.Errorf("category %q: %w", category.Name, ErrDuplicate)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return firstBy[models.Category](ctx, r.db, "category", "id", id)
}

func (r *GORMCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return firstBy[models.Category](ctx, r.db, "category", "name", name)
}

func (r *GORMCategoryRepository) ListWithProducts(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM products WHERE products.category_id = categories.id)").
		Order("name").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// firstBy loads the first row of T whose column equals value.
func firstBy[T any](ctx context.Context, db *gorm.DB, kind, column, value string) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where(column+" = ?", value).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s with %s %s: %w", kind, column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s by %s %s: %w", kind, column, value, err)
	}
	return &out, nil
}
