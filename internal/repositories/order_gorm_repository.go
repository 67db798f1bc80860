package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// CreateAndClearCart consumes the session cart and inserts order in one transaction.
// Exactly one cart row must be deleted, so a cart can back at most one order.
func (r *GORMOrderRepository) CreateAndClearCart(ctx context.Context, order *models.Order, sessionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.CartSession{}, "id = ?", sessionID)
		if result.Error != nil {
			return fmt.Errorf("failed to clear cart for session %s: %w", sessionID, result.Error)
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("session %s: %w", sessionID, ErrCartNotFound)
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order %s: %w", order.Invoice, err)
		}
		return nil
	})
}

func (r *GORMOrderRepository) GetByInvoice(ctx context.Context, invoice, customerID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("invoice = ? AND customer_id = ?", invoice, customerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with invoice %s: %w", invoice, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", invoice, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for customer %s: %w", customerID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, invoice, customerID string, expected, next models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("invoice = ? AND customer_id = ? AND status = ?", invoice, customerID, expected).
		Update("status", next)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", invoice, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByInvoice(ctx, invoice, customerID); err != nil {
			return err
		}
		return fmt.Errorf("order %s is not %s: %w", invoice, expected, ErrStatusMismatch)
	}
	return nil
}
