package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/retailpos/backend/internal/infrastructure/config"
)

// IdempotencyStore guards against double submits from a POS terminal.
// Claim returns true exactly once per key within the TTL; a retried or
// double-clicked posting with the same key is rejected by the handler.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// New selects the redis-backed store when redis is enabled, and the
// in-process store otherwise. A single-terminal deployment does not need
// redis; it matters only when several app processes share one database.
func New(cfg config.RedisConfig) IdempotencyStore {
	if !cfg.Enabled {
		return NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStore(client)
}

// MemoryStore is an in-process idempotency store
type MemoryStore struct {
	mu      sync.Mutex
	claimed map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{claimed: make(map[string]time.Time)}
}

// Claim marks the key as used. Expired entries are reaped lazily.
func (s *MemoryStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, expiry := range s.claimed {
		if expiry.Before(now) {
			delete(s.claimed, k)
		}
	}
	if _, taken := s.claimed[key]; taken {
		return false, nil
	}
	s.claimed[key] = now.Add(ttl)
	return true, nil
}

// RedisStore is a redis-backed idempotency store
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore over an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Claim atomically sets the key if absent
func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, "idem:"+key, 1, ttl).Result()
}
