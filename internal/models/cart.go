package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateLineItem = errors.New("product is already in cart")
	ErrLineItemNotFound  = errors.New("product is not in cart")
	ErrInvalidLineItem   = errors.New("invalid line item")
)

// LineItem is one product entry in a cart or in a placed order.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Discount  int             `json:"discount"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"color"`
	// Display-only fields, dropped by Cart.Snapshot.
	Image  string `json:"image,omitempty"`
	Colors string `json:"colors,omitempty"`
}

func (li LineItem) validate() error {
	if li.ProductID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidLineItem)
	}
	if li.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidLineItem, li.Quantity)
	}
	if li.Discount < 0 || li.Discount > 100 {
		return fmt.Errorf("%w: discount must be within 0..100, got %d", ErrInvalidLineItem, li.Discount)
	}
	return nil
}

// Cart is the per-session mapping from product id to line item. It keeps insertion
// order and records whether it changed since it was loaded.
type Cart struct {
	items map[string]LineItem
	order []string
	dirty bool
}

// NewCart returns an empty cart.
func NewCart(items ...LineItem) *Cart {
	c := &Cart{items: make(map[string]LineItem)}
	for _, item := range items {
		if _, ok := c.items[item.ProductID]; ok {
			continue
		}
		c.items[item.ProductID] = item
		c.order = append(c.order, item.ProductID)
	}
	return c
}

// Add inserts item if its product is absent. A product already in the cart is left
// untouched and ErrDuplicateLineItem is returned.
func (c *Cart) Add(item LineItem) error {
	if err := item.validate(); err != nil {
		return err
	}
	if _, ok := c.items[item.ProductID]; ok {
		return ErrDuplicateLineItem
	}
	c.items[item.ProductID] = item
	c.order = append(c.order, item.ProductID)
	c.dirty = true
	return nil
}

// Update overwrites quantity and color of an existing entry.
func (c *Cart) Update(productID string, quantity int, color string) error {
	item, ok := c.items[productID]
	if !ok {
		return ErrLineItemNotFound
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidLineItem, quantity)
	}
	item.Quantity = quantity
	item.Color = color
	c.items[productID] = item
	c.dirty = true
	return nil
}

// Remove deletes the entry for productID and reports whether there was one.
func (c *Cart) Remove(productID string) bool {
	if _, ok := c.items[productID]; !ok {
		return false
	}
	delete(c.items, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.dirty = true
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	if len(c.items) == 0 {
		return
	}
	c.items = make(map[string]LineItem)
	c.order = nil
	c.dirty = true
}

// Get returns the entry for productID.
func (c *Cart) Get(productID string) (LineItem, bool) {
	item, ok := c.items[productID]
	return item, ok
}

// Len is the number of distinct products in the cart.
func (c *Cart) Len() int { return len(c.items) }

// IsEmpty reports whether the cart holds no entries.
func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Dirty reports whether the cart changed since it was loaded or last marked clean.
func (c *Cart) Dirty() bool { return c.dirty }

// MarkClean resets the dirty flag after the cart was persisted.
func (c *Cart) MarkClean() { c.dirty = false }

// Items returns a copy of all entries in insertion order, display fields included.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Snapshot returns a copy of the entries without display-only fields. It is what gets
// stored on an order and fed to pricing.
func (c *Cart) Snapshot() []LineItem {
	out := c.Items()
	for i := range out {
		out[i].Image = ""
		out[i].Colors = ""
	}
	return out
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items())
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*c = *NewCart(items...)
	return nil
}

// CartSession is the persisted form of a cart, keyed by session token.
type CartSession struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)"`
	Items     []LineItem `gorm:"type:text;serializer:json"`
	UpdatedAt time.Time
}
