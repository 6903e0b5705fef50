// Package audit defines the compliance audit trail emitted by domain services.
package audit

import (
	"context"
	"time"
)

// Event is a single audit record.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"event"`
	UserID    string         `json:"user_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sink receives audit events. Emit must not block the caller and never fails from its point of view.
type Sink interface {
	Emit(ctx context.Context, name, userID string, metadata map[string]any)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, name, userID string, metadata map[string]any)

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, name, userID string, metadata map[string]any) {
	f(ctx, name, userID, metadata)
}

// Nop discards every event.
var Nop Sink = SinkFunc(func(context.Context, string, string, map[string]any) {})
