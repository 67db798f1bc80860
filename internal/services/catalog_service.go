package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CatalogService serves product, brand and category listings and lets staff add to
// the catalog.
type CatalogService struct {
	products    repositories.ProductRepository
	brands      repositories.BrandRepository
	categories  repositories.CategoryRepository
	pageSize    int
	searchLimit int
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products repositories.ProductRepository, brands repositories.BrandRepository, categories repositories.CategoryRepository, pageSize, searchLimit int) *CatalogService {
	return &CatalogService{
		products:    products,
		brands:      brands,
		categories:  categories,
		pageSize:    pageSize,
		searchLimit: searchLimit,
	}
}

// ListProducts returns one page of in-stock products, newest first.
func (s *CatalogService) ListProducts(ctx context.Context, page int) (models.Page, error) {
	return s.products.ListInStock(ctx, page, s.pageSize)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	return product, err
}

// AddProduct stores product after checking its brand and category exist.
func (s *CatalogService) AddProduct(ctx context.Context, product *models.Product) error {
	if _, err := s.brands.GetByID(ctx, product.BrandID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("brand %s: %w", product.BrandID, ErrBrandNotFound)
		}
		return err
	}
	if _, err := s.categories.GetByID(ctx, product.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("category %s: %w", product.CategoryID, ErrCategoryNotFound)
		}
		return err
	}
	return s.products.Create(ctx, product)
}

// Search matches term against product names and descriptions. A blank term finds
// nothing.
func (s *CatalogService) Search(ctx context.Context, term string) ([]models.Product, error) {
	if strings.TrimSpace(term) == "" {
		return []models.Product{}, nil
	}
	return s.products.Search(ctx, term, s.searchLimit)
}

// ListBrands returns the brands that have at least one product.
func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.brands.ListWithProducts(ctx)
}

func (s *CatalogService) AddBrand(ctx context.Context, name string) (*models.Brand, error) {
	brand := &models.Brand{Name: strings.TrimSpace(name)}
	if err := s.brands.Create(ctx, brand); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("brand %q: %w", brand.Name, ErrNameTaken)
		}
		return nil, err
	}
	return brand, nil
}

// BrandProducts returns the brand and one page of its products.
func (s *CatalogService) BrandProducts(ctx context.Context, brandID string, page int) (*models.Brand, models.Page, error) {
	brand, err := s.brands.GetByID(ctx, brandID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.Page{}, fmt.Errorf("brand %s: %w", brandID, ErrBrandNotFound)
		}
		return nil, models.Page{}, err
	}
	products, err := s.products.ListByBrand(ctx, brandID, page, s.pageSize)
	return brand, products, err
}

// ListCategories returns the categories that have at least one product.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListWithProducts(ctx)
}

func (s *CatalogService) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: strings.TrimSpace(name)}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("category %q: %w", category.Name, ErrNameTaken)
		}
		return nil, err
	}
	return category, nil
}

// CategoryProducts returns the category and one page of its products.
func (s *CatalogService) CategoryProducts(ctx context.Context, categoryID string, page int) (*models.Category, models.Page, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.Page{}, fmt.Errorf("category %s: %w", categoryID, ErrCategoryNotFound)
		}
		return nil, models.Page{}, err
	}
	products, err := s.products.ListByCategory(ctx, categoryID, page, s.pageSize)
	return category, products, err
}
