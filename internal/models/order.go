package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "Pending"
	OrderStatusPaid    OrderStatus = "Paid"
)

// CanTransitionTo reports whether an order may move from s to next.
// Pending -> Paid is the only legal transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderStatusPending && next == OrderStatusPaid
}

// Order is a placed customer order. Items is written once at placement time and only
// Status changes afterwards.
type Order struct {
	ID         string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Invoice    string      `json:"invoice" gorm:"uniqueIndex;type:varchar(100);not null"`
	Status     OrderStatus `json:"status" gorm:"type:varchar(100);not null;default:Pending"`
	CustomerID string      `json:"customer_id" gorm:"type:varchar(36);not null;index"`
	Items      []LineItem  `json:"items" gorm:"type:text;serializer:json"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}
