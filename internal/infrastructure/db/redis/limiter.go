package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per caller in fixed windows backed by Redis.
// Key format: throttle:<route>:<caller>
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = 10 * time.Second
	}
	return &RateLimiter{client: client, limit: int64(limit), window: window}
}

// Allow increments the caller's counter for the route and reports whether the
// request is within the limit. The window TTL is set on the first hit.
func (l *RateLimiter) Allow(ctx context.Context, route, caller string) (bool, error) {
	key := fmt.Sprintf("throttle:%s:%s", route, caller)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}

	return incr.Val() <= l.limit, nil
}
