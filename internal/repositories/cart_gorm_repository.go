package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository persists carts in the cart_sessions table so that checkout can
// clear a cart inside the same transaction that inserts the order.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) Load(ctx context.Context, sessionID string) (*models.Cart, error) {
	var session models.CartSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for session %s: %w", sessionID, err)
	}
	return models.NewCart(session.Items...), nil
}

func (r *GORMCartRepository) Save(ctx context.Context, sessionID string, cart *models.Cart) error {
	if cart.IsEmpty() {
		return r.Delete(ctx, sessionID)
	}
	session := models.CartSession{
		ID:        sessionID,
		Items:     cart.Items(),
		UpdatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&session).Error
	if err != nil {
		return fmt.Errorf("failed to save cart for session %s: %w", sessionID, err)
	}
	return nil
}

func (r *GORMCartRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).Delete(&models.CartSession{}, "id = ?", sessionID).Error; err != nil {
		return fmt.Errorf("failed to delete cart for session %s: %w", sessionID, err)
	}
	return nil
}
