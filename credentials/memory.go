package credentials

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store, useful in tests and for callers
// that do not want a persistent cache.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
	saves int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context) (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creds.IsZero() {
		return Credentials{}, false, nil
	}
	return s.creds, true, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = creds
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saves
}

var _ Store = (*MemoryStore)(nil)
