package cache

import (
	"context"
	"sync"
)

// MemoryProgressStore is an in-process ProgressStore for tests and for
// running without Redis.
type MemoryProgressStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{
		data: make(map[string]string),
	}
}

func (s *MemoryProgressStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *MemoryProgressStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryProgressStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
