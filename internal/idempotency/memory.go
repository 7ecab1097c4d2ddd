package idempotency

import (
	"context"
	"sync"
	"time"
)

type pair struct {
	handlerID string
	key       string
}

// MemoryStore keeps completion records in a process-local map. This is the
// default backend: the domain events are low-volume administrative events,
// so entries are never evicted for the lifetime of the process.
type MemoryStore struct {
	mu        sync.Mutex
	completed map[pair]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		completed: make(map[pair]time.Time),
	}
}

// HasCompleted implements Store.
func (s *MemoryStore) HasCompleted(_ context.Context, handlerID, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completed[pair{handlerID, key}]
	return ok, nil
}

// MarkCompleted implements Store. The first completion timestamp wins;
// duplicate marks leave the record untouched.
func (s *MemoryStore) MarkCompleted(_ context.Context, handlerID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := pair{handlerID, key}
	if _, ok := s.completed[p]; !ok {
		s.completed[p] = time.Now().UTC()
	}
	return nil
}

// Len returns the number of recorded completions. Used by tests and the
// readiness endpoint.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed)
}

var _ Store = (*MemoryStore)(nil)
