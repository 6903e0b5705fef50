package consent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/audit"
)

// Ledger records and answers consent decisions. Absence of a record means no consent.
type Ledger struct {
	store Store
	audit audit.Sink
	log   zerolog.Logger
	now   func() time.Time
}

// NewLedger creates a consent ledger.
func NewLedger(store Store, sink audit.Sink, log zerolog.Logger) *Ledger {
	if sink == nil {
		sink = audit.Nop
	}
	return &Ledger{
		store: store,
		audit: sink,
		log:   log.With().Str("component", "consent-ledger").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record stores the decision, replacing any earlier one, and emits consent_<type>.
func (l *Ledger) Record(ctx context.Context, userID string, t Type, granted bool, metadata map[string]any) error {
	record := Record{
		UserID:    userID,
		Type:      t,
		Granted:   granted,
		Timestamp: l.now(),
		Metadata:  cloneMetadata(metadata),
	}
	if err := l.store.Put(ctx, record); err != nil {
		return fmt.Errorf("record consent: %w", err)
	}

	event := make(map[string]any, len(metadata)+1)
	event["granted"] = granted
	for k, v := range metadata {
		if k == "granted" {
			continue
		}
		event[k] = v
	}
	l.audit.Emit(ctx, "consent_"+string(t), userID, event)

	l.log.Info().
		Str("consent_type", string(t)).
		Bool("granted", granted).
		Msg("consent recorded")
	return nil
}

// Check reports whether userID currently grants consent of type t. Store failures deny.
func (l *Ledger) Check(ctx context.Context, userID string, t Type) bool {
	record, err := l.store.Get(ctx, userID, t)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			l.log.Error().Err(err).Str("consent_type", string(t)).Msg("consent lookup failed, denying")
		}
		return false
	}
	return record.Granted
}

// History returns every consent record held for userID.
func (l *Ledger) History(ctx context.Context, userID string) ([]Record, error) {
	records, err := l.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("consent history: %w", err)
	}
	return records, nil
}
