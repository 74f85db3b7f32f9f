package daily

import (
	"context"
	"sync"
)

// MemoryStore keeps metrics for the life of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	days map[string]Metrics
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: make(map[string]Metrics)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, day string) (Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.days[day]
	if !ok {
		return Metrics{}, ErrNotFound
	}
	return m, nil
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, m Metrics) (Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.days[m.Date]; ok {
		return existing, nil
	}
	s.days[m.Date] = m
	return m, nil
}
