package services

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// OrderExchange is the topic exchange order events are published to.
	OrderExchange = "orders"

	EventOrderPlaced = "order.placed"
	EventOrderPaid   = "order.paid"
)

// EventPublisher sends a message to a broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderEvent is the body of every order event.
type OrderEvent struct {
	Event      string          `json:"event"`
	Invoice    string          `json:"invoice"`
	CustomerID string          `json:"customer_id"`
	Status     string          `json:"status"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// publishOrderEvent is best effort: a broker failure is logged and never fails the
// operation that triggered it.
func publishOrderEvent(publisher EventPublisher, logger *zap.Logger, event OrderEvent) {
	if publisher == nil {
		logger.Debug("no event publisher configured, skipping", zap.String("event", event.Event))
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal order event", zap.String("invoice", event.Invoice), zap.Error(err))
		return
	}
	if err := publisher.Publish(OrderExchange, event.Event, body); err != nil {
		logger.Warn("failed to publish order event",
			zap.String("event", event.Event),
			zap.String("invoice", event.Invoice),
			zap.Error(err))
		return
	}
	logger.Debug("published order event", zap.String("event", event.Event), zap.String("invoice", event.Invoice))
}
