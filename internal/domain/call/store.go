package call

import "context"

// UpdateFunc edits a session while the store holds that call's lock.
type UpdateFunc func(s *Session) error

// Store owns call sessions. Get and List return snapshots; all writes go through Update.
type Store interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Session, error)
}
