package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"magnetview/models"
)

// RedisStore backs the cache with a shared, process-lifetime Redis
// connection pool. Expiry is delegated entirely to Redis TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore opens a pooled client against the given address. The
// connection is owned by the process; Close is called once at shutdown.
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping verifies the backend is reachable. main uses it to decide whether
// to fall back to the in-memory store.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Exists(ctx context.Context, link string) (bool, error) {
	n, err := s.client.Exists(ctx, Key(link)).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Get(ctx context.Context, link string) (*models.ResolutionResult, error) {
	raw, err := s.client.Get(ctx, Key(link)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var result models.ResolutionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// Corrupt entry: drop it and report a miss.
		log.Printf("[cache] discarding corrupt entry for %s: %v", Key(link), err)
		s.client.Del(ctx, Key(link))
		return nil, nil
	}
	return &result, nil
}

func (s *RedisStore) Set(ctx context.Context, link string, result *models.ResolutionResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	// SET with EX: value and expiry land atomically.
	if err := s.client.Set(ctx, Key(link), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (s *RedisStore) Refresh(ctx context.Context, link string, ttl time.Duration) error {
	if err := s.client.Expire(ctx, Key(link), ttl).Err(); err != nil {
		return fmt.Errorf("cache refresh: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
