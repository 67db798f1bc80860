package cache

import (
	"context"
	"errors"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// CachedProductRepository reads single products through a RedisCache and falls back
// to the wrapped repository. Listings and search always hit the database. A failing
// cache is logged and bypassed.
type CachedProductRepository struct {
	repositories.ProductRepository
	cache  *RedisCache
	logger *zap.Logger
}

func NewCachedProductRepository(next repositories.ProductRepository, cache *RedisCache, logger *zap.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		ProductRepository: next,
		cache:             cache,
		logger:            logger,
	}
}

func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := r.cache.Get(ctx, id)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
	}

	product, err = r.ProductRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, product); err != nil {
		r.logger.Warn("product cache write failed", zap.String("product_id", id), zap.Error(err))
	}
	return product, nil
}

func (r *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, product.ID)
	return nil
}

func (r *CachedProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.logger.Warn("product cache invalidation failed", zap.String("product_id", id), zap.Error(err))
	}
}
