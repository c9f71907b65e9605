package resettoken

import (
	"context"
	"sync"
)

// MemoryStore holds entries in process memory. Lost on restart and not shared
// across instances; expired entries linger until overwritten or consumed.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m: make(map[string]Entry),
	}
}

func (s *MemoryStore) Put(_ context.Context, userID string, e Entry) error {
	s.mu.Lock()
	s.m[userID] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID string) (Entry, bool, error) {
	s.mu.RLock()
	e, ok := s.m[userID]
	s.mu.RUnlock()
	return e, ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.m, userID)
	s.mu.Unlock()
	return nil
}
