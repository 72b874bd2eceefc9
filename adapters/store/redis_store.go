package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gnoparus/pbtodo/ports"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pbtodo:invalidated:"

// RedisStore is a Redis implementation of the TokenStore interface,
// shared by every instance of the service. Redis owns the expiry, so no
// purge pass is needed. Like the in-memory store, a recorded
// invalidation is never shortened by a later call with a smaller expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis token store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ ports.TokenStore = (*RedisStore)(nil)

func (s *RedisStore) key(tokenID string) string {
	return redisKeyPrefix + tokenID
}

// InvalidateToken marks a token ID as invalidated until expiry. The
// value records when the invalidation happened, which helps when
// inspecting the keyspace by hand.
func (s *RedisStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	key := s.key(tokenID)

	// PTTL reports a negative duration for a missing key, so a fresh
	// invalidation always passes this check
	current, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check existing invalidation: %w", err)
	}
	if current >= expiry {
		return nil
	}

	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := s.client.Set(ctx, key, stamp, expiry).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	return nil
}

// IsTokenInvalidated checks whether a token ID is invalidated in Redis
func (s *RedisStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	val, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token invalidation: %w", err)
	}

	return val > 0, nil
}
