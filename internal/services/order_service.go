package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// invoiceBytes of randomness give a 96-bit invoice token.
const invoiceBytes = 12

// OrderDetail is an order with its customer and priced breakdown, as shown on the
// order page and the PDF invoice.
type OrderDetail struct {
	Order    *models.Order  `json:"order"`
	Customer *models.User   `json:"customer"`
	Lines    []pricing.Line `json:"lines"`
	Totals   pricing.Totals `json:"totals"`
}

// OrderService turns cart snapshots into persisted orders and moves them through
// Pending -> Paid.
type OrderService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	pricing   *pricing.Engine
	events    EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, engine *pricing.Engine, events EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		pricing:   engine,
		events:    events,
		logger:    logger,
	}
}

// PlaceOrder persists snapshot as a Pending order for customerID and clears the cart
// of sessionID in the same transaction. Nothing is written for an empty snapshot, and
// ErrEmptyCart is also returned when the stored cart was already checked out.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID, sessionID string, snapshot []models.LineItem) (*models.Order, error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}

	invoice, err := newInvoice()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice: %w", err)
	}

	order := &models.Order{
		Invoice:    invoice,
		Status:     models.OrderStatusPending,
		CustomerID: customerID,
		Items:      append([]models.LineItem(nil), snapshot...),
	}
	err = s.orderRepo.CreateAndClearCart(ctx, order, sessionID)
	if errors.Is(err, repositories.ErrCartNotFound) {
		s.logger.Info("checkout found no stored cart", zap.String("customer_id", customerID), zap.String("session_id", sessionID))
		return nil, ErrEmptyCart
	}
	if err != nil {
		s.logger.Error("failed to place order",
			zap.String("customer_id", customerID),
			zap.String("invoice", invoice),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Info("order placed", zap.String("invoice", order.Invoice), zap.String("customer_id", customerID))
	s.publish(EventOrderPlaced, order)
	return order, nil
}

// MarkPaid moves the order from Pending to Paid. It returns ErrOrderNotFound when the
// customer has no such order and ErrAlreadyPaid when it is not Pending.
func (s *OrderService) MarkPaid(ctx context.Context, invoice, customerID string) error {
	err := s.orderRepo.UpdateStatus(ctx, invoice, customerID, models.OrderStatusPending, models.OrderStatusPaid)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("invoice %s: %w", invoice, ErrOrderNotFound)
	case errors.Is(err, repositories.ErrStatusMismatch):
		return fmt.Errorf("invoice %s: %w", invoice, ErrAlreadyPaid)
	case err != nil:
		return fmt.Errorf("failed to mark order %s paid: %w", invoice, err)
	}

	s.logger.Info("order paid", zap.String("invoice", invoice), zap.String("customer_id", customerID))
	if order, err := s.orderRepo.GetByInvoice(ctx, invoice, customerID); err == nil {
		s.publish(EventOrderPaid, order)
	}
	return nil
}

// GetOrder returns the customer's order with invoice.
func (s *OrderService) GetOrder(ctx context.Context, invoice, customerID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByInvoice(ctx, invoice, customerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("invoice %s: %w", invoice, ErrOrderNotFound)
	}
	return order, err
}

// ListOrders returns every order of customerID, newest first.
func (s *OrderService) ListOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	return s.orderRepo.ListByCustomer(ctx, customerID)
}

// Detail loads the order, its customer and its totals.
func (s *OrderService) Detail(ctx context.Context, invoice, customerID string) (*OrderDetail, error) {
	order, err := s.GetOrder(ctx, invoice, customerID)
	if err != nil {
		return nil, err
	}
	customer, err := s.userRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer of order %s: %w", invoice, err)
	}
	return &OrderDetail{
		Order:    order,
		Customer: customer,
		Lines:    pricing.Lines(order.Items),
		Totals:   s.Totals(order),
	}, nil
}

// Totals prices the snapshot stored on order.
func (s *OrderService) Totals(order *models.Order) pricing.Totals {
	return s.pricing.Totals(order.Items)
}

func (s *OrderService) publish(event string, order *models.Order) {
	publishOrderEvent(s.events, s.logger, OrderEvent{
		Event:      event,
		Invoice:    order.Invoice,
		CustomerID: order.CustomerID,
		Status:     string(order.Status),
		GrandTotal: s.Totals(order).GrandTotal,
		OccurredAt: time.Now().UTC(),
	})
}

func newInvoice() (string, error) {
	b := make([]byte, invoiceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
