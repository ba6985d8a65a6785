package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// RedisLimiter implements domain.RateLimiter as a fixed window counter
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
}

// NewRedisLimiter creates a limiter storing counters under prefix
func NewRedisLimiter(client redis.Cmdable, prefix string) domain.RateLimiter {
	return &RedisLimiter{client: client, prefix: prefix}
}

// Allow implements domain.RateLimiter
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	k := l.prefix + key

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit ttl: %w", err)
	}
	// First hit of a window, or a counter that lost its expiry.
	if n == 1 || ttl < 0 {
		if err := l.client.PExpire(ctx, k, window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire: %w", err)
		}
		ttl = window
	}

	return n <= int64(limit), ttl, nil
}
