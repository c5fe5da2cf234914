package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitPrefix = "ratelimit:turns:"
)

// RateLimiter counts chat turns per caller in a one minute window
type RateLimiter struct {
	client         *Client
	turnsPerMinute int
	burst          int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, turnsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client:         client,
		turnsPerMinute: turnsPerMinute,
		burst:          burst,
	}
}

// Allow checks if a turn should be allowed based on rate limits
// Returns (allowed, remaining, resetTime, error)
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	fullKey := fmt.Sprintf("%s%s", rateLimitPrefix, key)
	windowEnd := time.Now().Truncate(time.Minute).Add(time.Minute)

	pipe := r.client.rdb.Pipeline()

	// Increment counter
	incrCmd := pipe.Incr(ctx, fullKey)

	// Set expiry if key is new
	pipe.ExpireNX(ctx, fullKey, time.Minute)

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	allowed, remaining := r.verdict(incrCmd.Val())
	return allowed, remaining, windowEnd, nil
}

// verdict applies the window limit to the post-increment count
func (r *RateLimiter) verdict(count int64) (bool, int) {
	limit := int64(r.turnsPerMinute + r.burst)
	remaining := int(limit - count)
	if remaining < 0 {
		remaining = 0
	}
	return count <= limit, remaining
}
