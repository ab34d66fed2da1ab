package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CountCache keeps per-user queue badge counts in Redis with a short TTL.
// Cache failures are treated as misses; the badge is advisory.
type CountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCountCache constructs the cache. A nil client disables caching.
func NewCountCache(client *redis.Client, ttl time.Duration) *CountCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CountCache{client: client, ttl: ttl}
}

func countKey(userID int64) string {
	return fmt.Sprintf("taskqueue:count:%d", userID)
}

// Get returns the cached count, or ok=false on miss or cache trouble.
func (c *CountCache) Get(ctx context.Context, userID int64) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, countKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count under the configured TTL.
func (c *CountCache) Set(ctx context.Context, userID int64, count int) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, countKey(userID), strconv.Itoa(count), c.ttl).Err()
}

// Invalidate drops a user's cached count, typically after one of their
// tickets moved.
func (c *CountCache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Del(ctx, countKey(userID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
