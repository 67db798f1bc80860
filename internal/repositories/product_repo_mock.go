package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s for update: %w", product.ID, ErrNotFound)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func (r *MockProductRepository) ListInStock(ctx context.Context, page, perPage int) (models.Page, error) {
	return r.paginate(page, perPage, func(p models.Product) bool { return p.Stock > 0 }), nil
}

func (r *MockProductRepository) ListByBrand(ctx context.Context, brandID string, page, perPage int) (models.Page, error) {
	return r.paginate(page, perPage, func(p models.Product) bool { return p.BrandID == brandID }), nil
}

func (r *MockProductRepository) ListByCategory(ctx context.Context, categoryID string, page, perPage int) (models.Page, error) {
	return r.paginate(page, perPage, func(p models.Product) bool { return p.CategoryID == categoryID }), nil
}

func (r *MockProductRepository) Search(ctx context.Context, term string, limit int) ([]models.Product, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	matches := r.filter(func(p models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// filter returns matching products, newest first.
func (r *MockProductRepository) filter(keep func(models.Product) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MockProductRepository) paginate(page, perPage int, keep func(models.Product) bool) models.Page {
	page, perPage = normalizePage(page, perPage)
	all := r.filter(keep)

	start := (page - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return models.Page{
		Items:   all[start:end],
		Page:    page,
		PerPage: perPage,
		Total:   int64(len(all)),
		Pages:   pageCount(int64(len(all)), perPage),
	}
}
