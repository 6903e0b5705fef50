package conversation

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by Get when the user has no live session.
var ErrSessionNotFound = errors.New("conversation session not found")

// MutateFunc edits a session in place while the store holds the user's lock.
type MutateFunc func(s *Session) error

// Store holds one session per user.
// Mutate creates the session when absent, runs fn under a per-user lock, persists the result
// and returns a snapshot. Get returns a snapshot and never creates.
type Store interface {
	Mutate(ctx context.Context, userID string, now time.Time, fn MutateFunc) (*Session, error)
	Get(ctx context.Context, userID string) (*Session, error)
	Delete(ctx context.Context, userID string) error
}
