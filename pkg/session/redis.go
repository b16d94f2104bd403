package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an idle session survives in Redis.
const DefaultTTL = 24 * time.Hour

// RedisStore shares session tokens through Redis.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. A ttl <= 0 uses DefaultTTL.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key Key) (string, error) {
	token, err := s.redis.Get(ctx, key.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sessionLookups.WithLabelValues("miss").Inc()
			return "", ErrNoSession
		}
		sessionErrors.WithLabelValues("get").Inc()
		return "", fmt.Errorf("redis get: %w", err)
	}

	sessionLookups.WithLabelValues("hit").Inc()
	return token, nil
}

// Set implements Store. Every write refreshes the TTL. Empty tokens are
// ignored.
func (s *RedisStore) Set(ctx context.Context, key Key, token string) error {
	if token == "" {
		return nil
	}

	if err := s.redis.Set(ctx, key.String(), token, s.ttl).Err(); err != nil {
		sessionErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete forgets the session for key.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		sessionErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
