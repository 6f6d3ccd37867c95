package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"magnetview/models"
)

// memoryItem holds one serialized entry with its expiry.
type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded map implementation of Store. It is the
// fallback when no Redis address is configured, and what tests run
// against. Values round-trip through JSON exactly like the Redis backend
// so the two are interchangeable.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*memoryItem),
		now:   time.Now,
	}
}

// fresh reports whether the item is still within its TTL window. Expired
// entries are logically absent even before removal.
func (s *MemoryStore) fresh(item *memoryItem) bool {
	return item != nil && s.now().Before(item.expiresAt)
}

func (s *MemoryStore) Exists(_ context.Context, link string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fresh(s.items[Key(link)]), nil
}

func (s *MemoryStore) Get(_ context.Context, link string) (*models.ResolutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(link)
	item := s.items[key]
	if item == nil {
		return nil, nil
	}
	if !s.fresh(item) {
		delete(s.items, key)
		return nil, nil
	}
	var result models.ResolutionResult
	if err := json.Unmarshal(item.value, &result); err != nil {
		delete(s.items, key)
		return nil, nil
	}
	return &result, nil
}

func (s *MemoryStore) Set(_ context.Context, link string, result *models.ResolutionResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[Key(link)] = &memoryItem{value: raw, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Refresh(_ context.Context, link string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item := s.items[Key(link)]; s.fresh(item) {
		item.expiresAt = s.now().Add(ttl)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*memoryItem)
	return nil
}
