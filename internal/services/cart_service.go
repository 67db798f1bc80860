package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// CartSummary is a cart together with its priced breakdown.
type CartSummary struct {
	Items  []models.LineItem `json:"items"`
	Lines  []pricing.Line    `json:"lines"`
	Totals pricing.Totals    `json:"totals"`
}

// CartService loads the cart of a session, applies one mutation and writes it back
// only when it changed.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	pricing  *pricing.Engine
	logger   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, engine *pricing.Engine, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		pricing:  engine,
		logger:   logger,
	}
}

// Get returns the cart of sessionID, empty when the session has none.
func (s *CartService) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

// Summary prices the cart of sessionID.
func (s *CartService) Summary(ctx context.Context, sessionID string) (CartSummary, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return CartSummary{}, err
	}
	items := cart.Items()
	return CartSummary{
		Items:  items,
		Lines:  pricing.Lines(items),
		Totals: s.pricing.Totals(items),
	}, nil
}

// AddItem puts quantity units of productID into the cart. It reports false, with no
// error, when the product was already in the cart; the existing line is left alone.
// An empty color selects the product's first color.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, quantity int, color string) (bool, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
		}
		return false, err
	}
	if color == "" {
		if colors := product.ColorList(); len(colors) > 0 {
			color = colors[0]
		}
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if err := cart.Add(product.LineItem(quantity, color)); err != nil {
		if errors.Is(err, models.ErrDuplicateLineItem) {
			s.logger.Debug("product already in cart", zap.String("session_id", sessionID), zap.String("product_id", productID))
			return false, nil
		}
		return false, err
	}
	return true, s.save(ctx, sessionID, cart)
}

// UpdateItem changes quantity and color of a product already in the cart.
func (s *CartService) UpdateItem(ctx context.Context, sessionID, productID string, quantity int, color string) error {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := cart.Update(productID, quantity, color); err != nil {
		return err
	}
	return s.save(ctx, sessionID, cart)
}

// RemoveItem drops productID from the cart and reports whether it was there.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (bool, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	removed := cart.Remove(productID)
	return removed, s.save(ctx, sessionID, cart)
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	cart.Clear()
	return s.save(ctx, sessionID, cart)
}

// Totals prices the items of cart.
func (s *CartService) Totals(cart *models.Cart) pricing.Totals {
	return s.pricing.Totals(cart.Items())
}

func (s *CartService) save(ctx context.Context, sessionID string, cart *models.Cart) error {
	if !cart.Dirty() {
		return nil
	}
	if err := s.carts.Save(ctx, sessionID, cart); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	cart.MarkClean()
	return nil
}
