// Package store holds the session and consent store implementations.
package store

import (
	"context"
	"sync"

	"jan-server/services/engage-api/internal/domain/consent"
)

// MemoryConsentStore keeps consent records in process memory.
type MemoryConsentStore struct {
	mu      sync.RWMutex
	records map[string]consent.Record
	byUser  map[string][]string // user -> record keys in first-write order
}

// NewMemoryConsentStore creates an empty consent store.
func NewMemoryConsentStore() *MemoryConsentStore {
	return &MemoryConsentStore{
		records: make(map[string]consent.Record),
		byUser:  make(map[string][]string),
	}
}

// Put replaces the record for the (user, type) pair.
func (s *MemoryConsentStore) Put(_ context.Context, record consent.Record) error {
	key := record.Key()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[key]; !exists {
		s.byUser[record.UserID] = append(s.byUser[record.UserID], key)
	}
	s.records[key] = record.Clone()
	return nil
}

// Get returns the record for the (user, type) pair.
func (s *MemoryConsentStore) Get(_ context.Context, userID string, t consent.Type) (consent.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[consent.Key(userID, t)]
	if !ok {
		return consent.Record{}, consent.ErrRecordNotFound
	}
	return record.Clone(), nil
}

// ListByUser returns every record held for userID.
func (s *MemoryConsentStore) ListByUser(_ context.Context, userID string) ([]consent.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.byUser[userID]
	out := make([]consent.Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.records[key].Clone())
	}
	return out, nil
}
