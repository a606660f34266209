package cache

import (
	"errors"
	"sync"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryService implements CacheService with an in-process concurrent map.
// Reads and inserts are safe from multiple goroutines and never block a
// caller on contention beyond the map lookup itself.
type MemoryService struct {
	items sync.Map
}

// NewMemoryService creates a new in-process cache
func NewMemoryService() *MemoryService {
	return &MemoryService{}
}

// Get retrieves a value, treating expired entries as a miss
func (m *MemoryService) Get(key string) ([]byte, error) {
	v, ok := m.items.Load(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	item := v.(memoryItem)
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		m.items.Delete(key)
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

// Set stores a value with an expiration time; zero expiration never expires
func (m *MemoryService) Set(key string, value []byte, expiration time.Duration) error {
	item := memoryItem{value: value}
	if expiration > 0 {
		item.expiresAt = time.Now().Add(expiration)
	}
	m.items.Store(key, item)
	return nil
}

// Delete removes a value
func (m *MemoryService) Delete(key string) error {
	m.items.Delete(key)
	return nil
}
