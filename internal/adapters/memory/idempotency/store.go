package idempotency

import (
	"context"
	"sync"

	"github.com/clinicflow/scheduling-api/internal/ports/out/idempotency"
)

// Store is an in-memory implementation of idempotency.Store.
// It is safe for concurrent use. Entries live for the lifetime of the process.
type Store struct {
	mu sync.RWMutex
	m  map[idempotency.Key]idempotency.Record
}

func NewStore() *Store {
	return &Store{
		m: make(map[idempotency.Key]idempotency.Record),
	}
}

func (s *Store) Get(ctx context.Context, key idempotency.Key) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[key]
	return rec, ok, nil
}

func (s *Store) Put(ctx context.Context, key idempotency.Key, rec idempotency.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.m[key]; exists {
		return nil
	}
	s.m[key] = rec
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
