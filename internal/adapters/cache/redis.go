package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
)

const keyPrefix = "leaderboard:datasets:"

// RedisCache stores JSON-encoded datasets in Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis instance at url ("redis://host:port/db")
// and checks it answers. ttl 0 stores entries without expiry.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", ErrBackend, err)
	}
	c := &RedisCache{client: redis.NewClient(opt), ttl: ttl}
	if err := c.client.Ping(ctx).Err(); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrBackend, err)
	}
	return c, nil
}

// Key returns the Redis key holding projectID's datasets.
func Key(projectID string) string {
	return keyPrefix + projectID
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, projectID string) (*model.Datasets, bool, error) {
	raw, err := c.client.Get(ctx, Key(projectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %w", ErrBackend, err)
	}
	var ds model.Datasets
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, false, fmt.Errorf("%w: decode: %w", ErrBackend, err)
	}
	return &ds, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, projectID string, ds *model.Datasets) error {
	if ds == nil {
		return ErrNilDatasets
	}
	raw, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrBackend, err)
	}
	if err := c.client.Set(ctx, Key(projectID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", ErrBackend, err)
	}
	return nil
}

// Invalidate implements Cache.
func (c *RedisCache) Invalidate(ctx context.Context, projectID string) error {
	if err := c.client.Del(ctx, Key(projectID)).Err(); err != nil {
		return fmt.Errorf("%w: del: %w", ErrBackend, err)
	}
	return nil
}

// Name implements Cache.
func (c *RedisCache) Name() string { return BackendRedis }

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
