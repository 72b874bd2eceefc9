// Package limiter provides a Redis-backed implementation of the
// AttemptLimiter port for deployments running more than one instance.
// Counters use fixed windows (INCR plus TTL on first hit), which
// approximates the in-memory limiter's sliding window closely enough
// for a coarse anti-brute-force guard.
package limiter

import (
	"context"
	"time"

	"github.com/gnoparus/pbtodo/ports"
	"github.com/gnoparus/pbtodo/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	countPrefix = "pbtodo:ratelimit:cnt:"
	blockPrefix = "pbtodo:ratelimit:block:"
)

// RedisLimiter enforces the same attempt budget and block semantics as
// ratelimit.Limiter, with state shared through Redis. Redis failures
// are logged and fail open: a throttle outage must not lock every user
// out of login.
type RedisLimiter struct {
	client *redis.Client
	config ratelimit.Config
	log    *zap.Logger
}

// NewRedisLimiter creates a RedisLimiter. Configuration rules match the
// in-memory limiter: non-positive MaxAttempts or Window are rejected.
func NewRedisLimiter(client *redis.Client, cfg ratelimit.Config, log *zap.Logger) (*RedisLimiter, error) {
	if cfg.MaxAttempts <= 0 {
		return nil, ratelimit.ErrInvalidMaxAttempts
	}
	if cfg.Window <= 0 {
		return nil, ratelimit.ErrInvalidWindow
	}

	return &RedisLimiter{client: client, config: cfg, log: log}, nil
}

var _ ports.AttemptLimiter = (*RedisLimiter)(nil)

// CanAttempt reports whether the identity is currently blocked
func (l *RedisLimiter) CanAttempt(identity string) bool {
	ctx := context.Background()

	exists, err := l.client.Exists(ctx, blockPrefix+identity).Result()
	if err != nil {
		l.log.Warn("rate limit check failed, allowing attempt", zap.Error(err))
		return true
	}

	return exists == 0
}

// RecordAttempt counts one attempt and starts a block once the budget
// for the window is spent
func (l *RedisLimiter) RecordAttempt(identity string) {
	ctx := context.Background()
	key := countPrefix + identity

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.log.Warn("rate limit increment failed", zap.Error(err))
		return
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.config.Window).Err(); err != nil {
			l.log.Warn("rate limit expire failed", zap.Error(err))
		}
	}

	if count >= int64(l.config.MaxAttempts) {
		if err := l.client.Set(ctx, blockPrefix+identity, "1", l.config.BlockDuration).Err(); err != nil {
			l.log.Warn("rate limit block failed", zap.Error(err))
		}
	}
}

// Remaining returns the attempts left in the current window
func (l *RedisLimiter) Remaining(identity string) int {
	ctx := context.Background()

	count, err := l.client.Get(ctx, countPrefix+identity).Int()
	if err != nil {
		if err != redis.Nil {
			l.log.Warn("rate limit read failed", zap.Error(err))
		}
		return l.config.MaxAttempts
	}

	remaining := l.config.MaxAttempts - count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RetryAfter returns the remaining block TTL, zero when not blocked
func (l *RedisLimiter) RetryAfter(identity string) time.Duration {
	ctx := context.Background()

	ttl, err := l.client.PTTL(ctx, blockPrefix+identity).Result()
	if err != nil {
		l.log.Warn("rate limit ttl read failed", zap.Error(err))
		return 0
	}
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Reset clears the identity's counter and block after a successful action
func (l *RedisLimiter) Reset(identity string) {
	ctx := context.Background()

	if err := l.client.Del(ctx, countPrefix+identity, blockPrefix+identity).Err(); err != nil {
		l.log.Warn("rate limit reset failed", zap.Error(err))
	}
}
