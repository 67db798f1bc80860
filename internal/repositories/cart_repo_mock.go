package repositories

import (
	"context"
	"sync"

	"storefront/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string][]models.LineItem
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string][]models.LineItem),
	}
}

func (r *MockCartRepository) Load(ctx context.Context, sessionID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return models.NewCart(r.carts[sessionID]...), nil
}

func (r *MockCartRepository) Save(ctx context.Context, sessionID string, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart.IsEmpty() {
		delete(r.carts, sessionID)
		return nil
	}
	r.carts[sessionID] = cart.Items()
	return nil
}

func (r *MockCartRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}
