package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/NathanielMuller/ScanShelf/internal/models"
)

// ProductCache is a read-through redis side-cache for per-id product
// lookups. It is strictly derived state: every error degrades to a miss and
// is logged, never surfaced, and mutations delete the affected keys. A nil
// *ProductCache is valid and always misses.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewProductCache wraps an existing redis client. ttl should be the long
// per-id TTL from config.
func NewProductCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl, log: log}
}

// Get returns the cached product for id, or ok=false on miss or any error.
func (c *ProductCache) Get(ctx context.Context, id int) (models.Product, bool) {
	if c == nil {
		return models.Product{}, false
	}
	data, err := c.rdb.Get(ctx, ProductKey(id)).Bytes()
	if err == redis.Nil {
		return models.Product{}, false
	}
	if err != nil {
		c.log.Warn().Err(err).Int("product_id", id).Msg("redis get failed")
		return models.Product{}, false
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		c.log.Warn().Err(err).Int("product_id", id).Msg("redis unmarshal failed")
		return models.Product{}, false
	}
	if p.ID != id {
		c.log.Warn().Int("key_id", id).Int("model_id", p.ID).Msg("cache id mismatch, dropping key")
		c.Delete(context.Background(), id)
		return models.Product{}, false
	}
	return p, true
}

// Set stores a product under its per-id key.
func (c *ProductCache) Set(ctx context.Context, p models.Product) {
	if c == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		c.log.Warn().Err(err).Int("product_id", p.ID).Msg("redis marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, ProductKey(p.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Int("product_id", p.ID).Msg("redis set failed")
	}
}

// Delete drops the per-id keys of the given products.
func (c *ProductCache) Delete(ctx context.Context, ids ...int) {
	if c == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProductKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Msg("redis del failed")
	}
}
