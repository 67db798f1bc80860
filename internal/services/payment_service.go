package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/pricing"

	"go.uber.org/zap"
)

const chargeCurrency = "usd"

// PaymentRequest is a card payment for one order.
type PaymentRequest struct {
	Invoice    string
	CustomerID string
	Email      string
	Token      string
}

// PaymentReceipt describes a captured payment.
type PaymentReceipt struct {
	Invoice  string         `json:"invoice"`
	ChargeID string         `json:"charge_id"`
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Totals   pricing.Totals `json:"totals"`
}

// PaymentService charges the grand total of a Pending order and marks it Paid. An
// order is only marked Paid after the gateway accepted the charge.
type PaymentService struct {
	orders  *OrderService
	gateway payments.Gateway
	logger  *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(orders *OrderService, gateway payments.Gateway, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		orders:  orders,
		gateway: gateway,
		logger:  logger,
	}
}

func (s *PaymentService) Pay(ctx context.Context, req PaymentRequest) (*PaymentReceipt, error) {
	order, err := s.orders.GetOrder(ctx, req.Invoice, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(models.OrderStatusPaid) {
		return nil, fmt.Errorf("invoice %s: %w", req.Invoice, ErrAlreadyPaid)
	}

	totals := s.orders.Totals(order)
	charge, err := s.gateway.Charge(ctx, payments.ChargeRequest{
		Amount:         pricing.Cents(totals.GrandTotal),
		Currency:       chargeCurrency,
		Email:          req.Email,
		Token:          req.Token,
		Description:    fmt.Sprintf("Invoice %s", order.Invoice),
		IdempotencyKey: order.Invoice,
	})
	if err != nil {
		s.logger.Warn("charge failed", zap.String("invoice", order.Invoice), zap.Error(err))
		return nil, fmt.Errorf("failed to charge invoice %s: %w", order.Invoice, err)
	}

	if err := s.orders.MarkPaid(ctx, order.Invoice, req.CustomerID); err != nil {
		if errors.Is(err, ErrAlreadyPaid) {
			// a concurrent payment won; the gateway dedupes on the idempotency key
			s.logger.Warn("order paid concurrently", zap.String("invoice", order.Invoice), zap.String("charge_id", charge.ID))
		} else {
			s.logger.Error("charge captured but order not marked paid",
				zap.String("invoice", order.Invoice),
				zap.String("charge_id", charge.ID),
				zap.Error(err))
		}
		return nil, err
	}

	return &PaymentReceipt{
		Invoice:  order.Invoice,
		ChargeID: charge.ID,
		Amount:   charge.Amount,
		Currency: chargeCurrency,
		Totals:   totals,
	}, nil
}
