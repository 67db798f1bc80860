package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateAndClearCart inserts order and deletes the cart of sessionID atomically:
	// either both happen or neither does.
	CreateAndClearCart(ctx context.Context, order *models.Order, sessionID string) error
	GetByInvoice(ctx context.Context, invoice, customerID string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	// UpdateStatus moves the order from expected to next. It returns ErrNotFound when
	// the order does not exist and ErrStatusMismatch when its status is not expected.
	UpdateStatus(ctx context.Context, invoice, customerID string, expected, next models.OrderStatus) error
	// Orders are never deleted in normal operation.
}
