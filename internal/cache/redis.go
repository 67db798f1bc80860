package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"storefront/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// RedisCache stores products as JSON under product:<id>.
type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: ttl,
	}
}

func (r *RedisCache) Get(ctx context.Context, productID string) (*models.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return &product, nil
}

func (r *RedisCache) Set(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	// spread expiry so a warm cache does not expire all at once
	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/5) + 1))
	if err := r.client.Set(ctx, cacheKey(product.ID), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, productID string) error {
	if err := r.client.Del(ctx, cacheKey(productID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}
