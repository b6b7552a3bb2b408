package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/minhvt/product_catalog/internal/domain"
	"github.com/minhvt/product_catalog/internal/pkg/logger"
)

const (
	categoriesKey          = "catalog:categories"
	categoriesRefreshedKey = "catalog:categories:refreshed_at"
	statisticsKey          = "catalog:statistics"
)

// CategoryRedis is the Redis-backed category cache. All entries live in one
// hash guarded by a single refreshed-at key whose expiry makes the whole
// cache stale at once, mirroring the in-memory backend. Redis failures are
// logged and degrade to cache misses; the cache is an optimization, never a
// source of errors.
type CategoryRedis struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewCategoryRedis creates a Redis-backed category cache
func NewCategoryRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *CategoryRedis {
	return &CategoryRedis{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Get returns the cached category for id, or a miss.
func (c *CategoryRedis) Get(ctx context.Context, id uuid.UUID) (*domain.Category, bool) {
	hits, _ := c.GetMany(ctx, []uuid.UUID{id})
	category, ok := hits[id]
	return category, ok
}

// GetMany resolves ids against the cached hash. When the refreshed-at key has
// expired every id is reported missing regardless of hash contents.
func (c *CategoryRedis) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Category, []uuid.UUID) {
	if len(ids) == 0 {
		return nil, nil
	}

	if err := c.client.Get(ctx, categoriesRefreshedKey).Err(); err != nil {
		if err != redis.Nil {
			c.logger.Warnf("category cache freshness check failed: %v", err)
		}
		return nil, ids
	}

	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = id.String()
	}

	values, err := c.client.HMGet(ctx, categoriesKey, fields...).Result()
	if err != nil {
		c.logger.Warnf("category cache lookup failed: %v", err)
		return nil, ids
	}

	hits := make(map[uuid.UUID]*domain.Category, len(ids))
	var missing []uuid.UUID
	for i, raw := range values {
		data, ok := raw.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}

		var category domain.Category
		if err := json.Unmarshal([]byte(data), &category); err != nil {
			c.logger.Warnf("category cache entry corrupt for %s: %v", ids[i], err)
			missing = append(missing, ids[i])
			continue
		}
		hits[ids[i]] = &category
	}

	return hits, missing
}

// PutMany merges entries into the hash and resets the shared refreshed-at key
func (c *CategoryRedis) PutMany(ctx context.Context, entries map[uuid.UUID]*domain.Category) {
	if len(entries) == 0 {
		return
	}

	values := make([]interface{}, 0, len(entries)*2)
	for id, category := range entries {
		data, err := json.Marshal(category)
		if err != nil {
			c.logger.Warnf("failed to marshal category %s for cache: %v", id, err)
			continue
		}
		values = append(values, id.String(), data)
	}
	if len(values) == 0 {
		return
	}

	now := time.Now().Format(time.RFC3339Nano)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, categoriesKey, values...)
	pipe.Expire(ctx, categoriesKey, c.ttl)
	pipe.Set(ctx, categoriesRefreshedKey, now, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warnf("failed to refresh category cache: %v", err)
	}
}

// Clear drops the whole category cache
func (c *CategoryRedis) Clear(ctx context.Context) {
	if err := c.client.Unlink(ctx, categoriesKey, categoriesRefreshedKey).Err(); err != nil {
		c.logger.Warnf("failed to clear category cache: %v", err)
	}
}

// StatisticsRedis is the Redis-backed statistics cache.
type StatisticsRedis struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewStatisticsRedis creates a Redis-backed statistics cache
func NewStatisticsRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *StatisticsRedis {
	return &StatisticsRedis{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Get returns the cached aggregate, or a miss.
func (c *StatisticsRedis) Get(ctx context.Context) (*domain.ProductStatistics, bool) {
	data, err := c.client.Get(ctx, statisticsKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnf("statistics cache lookup failed: %v", err)
		}
		return nil, false
	}

	var stats domain.ProductStatistics
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		c.logger.Warnf("statistics cache entry corrupt: %v", err)
		return nil, false
	}

	return &stats, true
}

// Set stores the aggregate with its own TTL
func (c *StatisticsRedis) Set(ctx context.Context, stats *domain.ProductStatistics) {
	data, err := json.Marshal(stats)
	if err != nil {
		c.logger.Warnf("failed to marshal statistics for cache: %v", err)
		return
	}

	if err := c.client.Set(ctx, statisticsKey, data, c.ttl).Err(); err != nil {
		c.logger.Warnf("failed to cache statistics: %v", err)
	}
}

// Clear drops the cached aggregate
func (c *StatisticsRedis) Clear(ctx context.Context) {
	if err := c.client.Unlink(ctx, statisticsKey).Err(); err != nil {
		c.logger.Warnf("failed to clear statistics cache: %v", err)
	}
}
