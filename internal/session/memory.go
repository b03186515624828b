package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrKeyNotFound is returned by the memory store for missing or expired keys
var ErrKeyNotFound = errors.New("key not found")

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// memoryStore is an in-process Store used in mock mode and in tests
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates an in-memory Store with TTL support
func NewMemoryStore() Store {
	return &memoryStore{entries: map[string]memoryEntry{}}
}

func (s *memoryStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", ErrKeyNotFound
	}
	return entry.value, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if err != nil {
		return false, nil
	}
	return true, nil
}
