// Package session holds the transient per-session output of content
// generation. One batch per session key, overwritten by the next generation
// call, never part of durable project history.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aurasflow/backend/internal/models"
)

// DefaultTTL bounds how long an unread batch survives. Batches are single-use
// presentation data; losing one only means the caller re-runs generation.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "aurasflow:batch:"

// RedisStore keeps batches in Redis so they survive instance restarts within
// the TTL and are shared across replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, sessionKey string, items []models.GeneratedItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+sessionKey, data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionKey string) ([]models.GeneratedItem, error) {
	data, err := s.client.Get(ctx, keyPrefix+sessionKey).Bytes()
	if err == redis.Nil {
		return []models.GeneratedItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.GeneratedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionKey string) error {
	return s.client.Del(ctx, keyPrefix+sessionKey).Err()
}

// MemoryStore is the fallback when Redis is not configured, and the test
// double. Entries expire lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	items     []models.GeneratedItem
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Put(ctx context.Context, sessionKey string, items []models.GeneratedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionKey] = memoryEntry{
		items:     items,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionKey string) ([]models.GeneratedItem, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionKey]
	s.mu.RUnlock()

	if !ok {
		return []models.GeneratedItem{}, nil
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, sessionKey)
		s.mu.Unlock()
		return []models.GeneratedItem{}, nil
	}
	return entry.items, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionKey)
	return nil
}

// Sweep drops expired entries and returns how many were removed. Redis
// handles expiry itself; this only matters for the in-memory fallback.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
