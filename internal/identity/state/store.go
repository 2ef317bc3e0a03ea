// Package state issues and consumes one-time OAuth login states.
package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"soundvault/internal/identity/domain"
)

// DefaultTTL bounds how long a browser may take between login and callback.
const DefaultTTL = 10 * time.Minute

const keyPrefix = "oauth:state:"

// Store issues a state for the login redirect and consumes it on the callback.
type Store interface {
	// Issue returns a new state value to put on the authorize URL. An empty state means none is enforced.
	Issue(ctx context.Context) (string, error)
	// Consume accepts a state exactly once. Unknown, expired or reused states return domain.ErrInvalidState.
	Consume(ctx context.Context, state string) error
}

// RedisStore keeps states in Redis with a TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns a Redis-backed store. ttl <= 0 uses DefaultTTL.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Issue stores a random state with the configured TTL.
func (s *RedisStore) Issue(ctx context.Context) (string, error) {
	st := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+st, 1, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("persist state: %w", err)
	}
	return st, nil
}

// Consume deletes the state; it is valid only if the delete removed a key.
func (s *RedisStore) Consume(ctx context.Context, st string) error {
	if st == "" {
		return domain.ErrInvalidState
	}
	n, err := s.client.Del(ctx, keyPrefix+st).Result()
	if err != nil {
		return fmt.Errorf("consume state: %w", err)
	}
	if n == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// NopStore is used when no Redis is configured: no state is issued and any callback is accepted.
type NopStore struct{}

var _ Store = NopStore{}

// Issue returns an empty state.
func (NopStore) Issue(context.Context) (string, error) { return "", nil }

// Consume accepts every state.
func (NopStore) Consume(context.Context, string) error { return nil }
