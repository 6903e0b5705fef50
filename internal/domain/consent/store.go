package consent

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned when no consent decision exists for a (user, type) pair.
var ErrRecordNotFound = errors.New("consent record not found")

// Store persists consent records. Put replaces any previous record with the same key.
type Store interface {
	Put(ctx context.Context, record Record) error
	Get(ctx context.Context, userID string, t Type) (Record, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
}
