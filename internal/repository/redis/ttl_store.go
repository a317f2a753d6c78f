package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edvana/school-platform-auth/internal/repository"
)

// TTLStore implements port.TTLStore on Redis. OTP records and revoked-token
// markers both live here; Redis expiry enforces the per-entry lifetime.
type TTLStore struct {
	client *redis.Client
}

// NewTTLStore wraps the Redis client as a TTL key-value store.
func NewTTLStore(client *redis.Client) *TTLStore {
	return &TTLStore{client: client}
}

// Set writes value under key with the given expiry, replacing any previous
// entry and its timer.
func (s *TTLStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("ttl store: key is required")
	}
	if ttl <= 0 {
		return errors.New("ttl store: ttl must be positive")
	}

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Get returns the stored value or repository.ErrNotFound for missing and
// expired entries alike.
func (s *TTLStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Delete removes the entry. A missing key is not an error.
func (s *TTLStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
