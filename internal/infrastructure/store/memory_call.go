package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/call"
	"jan-server/services/engage-api/internal/utils/keylock"
)

// MemoryCallStore is an in-memory call session store.
// The map is guarded by an RWMutex; writes to one call are serialized by a per-call lock.
type MemoryCallStore struct {
	mu       sync.RWMutex
	sessions map[string]*call.Session
	locks    *keylock.KeyedMutex
	log      zerolog.Logger
}

// NewMemoryCallStore creates an empty call store.
func NewMemoryCallStore(log zerolog.Logger) *MemoryCallStore {
	return &MemoryCallStore{
		sessions: make(map[string]*call.Session),
		locks:    keylock.New(),
		log:      log.With().Str("component", "call-store").Logger(),
	}
}

// Create stores a new session.
func (s *MemoryCallStore) Create(_ context.Context, sess *call.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return call.ErrSessionExists
	}
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Get returns a snapshot of the session.
func (s *MemoryCallStore) Get(_ context.Context, id string) (*call.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, call.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Update runs fn on a working copy under the call's lock and stores it when fn succeeds.
func (s *MemoryCallStore) Update(_ context.Context, id string, fn call.UpdateFunc) (*call.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.mu.RLock()
	current, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, call.ErrSessionNotFound
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return nil, call.ErrSessionNotFound
	}
	s.sessions[id] = working
	return working.Clone(), nil
}

// Delete removes the session.
func (s *MemoryCallStore) Delete(_ context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return call.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// List returns snapshots of every session, oldest first.
func (s *MemoryCallStore) List(_ context.Context) ([]*call.Session, error) {
	s.mu.RLock()
	out := make([]*call.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Len reports the number of sessions held.
func (s *MemoryCallStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
