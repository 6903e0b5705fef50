package store

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/conversation"
	"jan-server/services/engage-api/internal/infrastructure/metrics"
	"jan-server/services/engage-api/internal/utils/keylock"
)

const (
	evictReasonCapacity = "capacity"
	evictReasonIdle     = "idle"
)

// LRUConversationStore bounds conversation sessions by count and idle time.
// The least recently used session is dropped when the cache is full.
type LRUConversationStore struct {
	cache *lru.Cache
	locks *keylock.KeyedMutex
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

// NewLRUConversationStore creates a store holding at most maxSessions sessions.
func NewLRUConversationStore(maxSessions int, ttl time.Duration, log zerolog.Logger) (*LRUConversationStore, error) {
	cache, err := lru.New(maxSessions)
	if err != nil {
		return nil, fmt.Errorf("create conversation cache: %w", err)
	}
	return &LRUConversationStore{
		cache: cache,
		locks: keylock.New(),
		ttl:   ttl,
		log:   log.With().Str("component", "conversation-store").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Mutate creates the session when absent or idle, applies fn under the user's lock and stores the result.
func (s *LRUConversationStore) Mutate(_ context.Context, userID string, now time.Time, fn conversation.MutateFunc) (*conversation.Session, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	sess := s.live(userID)
	if sess == nil {
		sess = conversation.NewSession(userID, now)
	}

	working := sess.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	if evicted := s.cache.Add(userID, working); evicted {
		metrics.RecordConversationEvicted(evictReasonCapacity)
		s.log.Debug().Msg("conversation cache full, evicted least recently used session")
	}
	return working.Clone(), nil
}

// Get returns a snapshot of the user's live session.
func (s *LRUConversationStore) Get(_ context.Context, userID string) (*conversation.Session, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	sess := s.live(userID)
	if sess == nil {
		return nil, conversation.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Delete removes the user's session.
func (s *LRUConversationStore) Delete(_ context.Context, userID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	s.cache.Remove(userID)
	return nil
}

// Sweep removes every session idle for longer than the TTL and returns how many were removed.
func (s *LRUConversationStore) Sweep(_ context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	removed := 0
	for _, key := range s.cache.Keys() {
		userID, ok := key.(string)
		if !ok {
			continue
		}
		unlock := s.locks.Lock(userID)
		if v, ok := s.cache.Peek(userID); ok {
			if sess := v.(*conversation.Session); sess.IdleSince(s.now(), s.ttl) {
				s.cache.Remove(userID)
				metrics.RecordConversationEvicted(evictReasonIdle)
				removed++
			}
		}
		unlock()
	}
	return removed
}

// Len reports the number of sessions held, idle ones included.
func (s *LRUConversationStore) Len() int {
	return s.cache.Len()
}

// live returns the stored session, dropping it first if it has gone idle. Callers hold the user's lock.
func (s *LRUConversationStore) live(userID string) *conversation.Session {
	v, ok := s.cache.Get(userID)
	if !ok {
		return nil
	}
	sess := v.(*conversation.Session)
	if sess.IdleSince(s.now(), s.ttl) {
		s.cache.Remove(userID)
		metrics.RecordConversationEvicted(evictReasonIdle)
		return nil
	}
	return sess
}
