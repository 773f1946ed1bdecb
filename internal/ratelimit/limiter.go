package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth:login:"

// Limiter is a fixed-window counter kept in Redis.
type Limiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
}

func NewLimiter(rdb redis.Cmdable, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// Result describes one Allow decision.
type Result struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// Allow counts a hit for scope/key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, scope, key string) (Result, error) {
	redisKey := fmt.Sprintf("%s%s:%s", keyPrefix, scope, key)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return Result{Allowed: true}, fmt.Errorf("rate limit %s: %w", scope, err)
	}

	retryAfter := ttl.Val()
	if retryAfter < 0 {
		// first hit of a window, or a key that lost its expiry
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Result{Allowed: true}, fmt.Errorf("rate limit %s: %w", scope, err)
		}
		retryAfter = l.window
	}

	count := incr.Val()
	if count <= int64(l.limit) {
		return Result{Allowed: true, Count: count}, nil
	}
	return Result{Allowed: false, Count: count, RetryAfter: retryAfter}, nil
}
