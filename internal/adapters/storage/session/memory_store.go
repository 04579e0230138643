package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with a map. Used in tests and when the
// portal runs without a database file.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Save stores a session record.
func (s *MemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Token] = record
	return nil
}

// Load retrieves a session record by token.
func (s *MemoryStore) Load(_ context.Context, token string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[token]
	return record, ok, nil
}

// Delete removes a session record.
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
	return nil
}

// DeleteExpired removes sessions created before the cutoff.
func (s *MemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, record := range s.records {
		if record.CreatedAt.Before(cutoff) {
			delete(s.records, token)
			removed++
		}
	}
	return removed, nil
}
