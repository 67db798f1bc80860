package repositories

import (
	"context"

	"storefront/internal/models"
)

// CartRepository stores carts keyed by session token.
type CartRepository interface {
	// Load returns the stored cart, or an empty one when the session has none.
	Load(ctx context.Context, sessionID string) (*models.Cart, error)
	// Save stores the cart; an empty cart removes the session row.
	Save(ctx context.Context, sessionID string, cart *models.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
