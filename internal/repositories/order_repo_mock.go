package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository. It clears
// carts of the MockCartRepository it was built with.
type MockOrderRepository struct {
	orders map[string]models.Order // keyed by invoice
	carts  *MockCartRepository
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(carts *MockCartRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		carts:  carts,
	}
}

func (r *MockOrderRepository) CreateAndClearCart(ctx context.Context, order *models.Order, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts.mu.Lock()
	defer r.carts.mu.Unlock()

	if _, ok := r.orders[order.Invoice]; ok {
		return fmt.Errorf("failed to create order %s: %w", order.Invoice, ErrDuplicate)
	}
	if _, ok := r.carts.carts[sessionID]; !ok {
		return fmt.Errorf("session %s: %w", sessionID, ErrCartNotFound)
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	order.Items = append([]models.LineItem(nil), order.Items...)

	r.orders[order.Invoice] = *order
	delete(r.carts.carts, sessionID)
	return nil
}

func (r *MockOrderRepository) GetByInvoice(ctx context.Context, invoice, customerID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[invoice]
	if !ok || order.CustomerID != customerID {
		return nil, fmt.Errorf("order with invoice %s: %w", invoice, ErrNotFound)
	}
	return &order, nil
}

func (r *MockOrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Order
	for _, order := range r.orders {
		if order.CustomerID == customerID {
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MockOrderRepository) UpdateStatus(ctx context.Context, invoice, customerID string, expected, next models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[invoice]
	if !ok || order.CustomerID != customerID {
		return fmt.Errorf("order with invoice %s: %w", invoice, ErrNotFound)
	}
	if order.Status != expected {
		return fmt.Errorf("order %s is not %s: %w", invoice, expected, ErrStatusMismatch)
	}
	order.Status = next
	order.UpdatedAt = time.Now()
	r.orders[invoice] = order
	return nil
}
