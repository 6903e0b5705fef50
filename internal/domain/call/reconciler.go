package call

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/audit"
)

// Reconciler applies provider status callbacks to call sessions.
type Reconciler struct {
	store Store
	audit audit.Sink
	log   zerolog.Logger
	now   func() time.Time
}

// NewReconciler creates a reconciler over store.
func NewReconciler(store Store, sink audit.Sink, log zerolog.Logger) *Reconciler {
	if sink == nil {
		sink = audit.Nop
	}
	return &Reconciler{
		store: store,
		audit: sink,
		log:   log.With().Str("component", "callback-reconciler").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Apply validates ev and feeds it into the matching session.
// Unknown call ids return ErrSessionNotFound and never create a session.
func (r *Reconciler) Apply(ctx context.Context, ev StatusEvent) (*Session, ApplyResult, error) {
	if err := ev.Validate(); err != nil {
		return nil, ApplyResult{}, err
	}

	var result ApplyResult
	sess, err := r.store.Update(ctx, ev.CallID, func(s *Session) error {
		result = s.ApplyEvent(ev, r.now())
		return nil
	})
	if err != nil {
		return nil, ApplyResult{}, err
	}

	logEvent := r.log.Info()
	if result.Effect == EffectIgnored {
		logEvent = r.log.Warn()
	}
	logEvent.
		Str("call_id", ev.CallID).
		Str("provider_call_id", ev.ProviderCallID).
		Str("provider_status", ev.ProviderStatus).
		Str("effect", string(result.Effect)).
		Str("reason", result.Reason).
		Str("from", string(result.From)).
		Str("to", string(result.To)).
		Msg("provider status callback")

	if result.Effect == EffectIgnored {
		return sess, result, nil
	}

	userID := ev.To
	if userID == "" {
		userID = "unknown"
	}
	r.audit.Emit(ctx, "call_status_"+ev.ProviderStatus, userID, map[string]any{
		"call_id":          ev.CallID,
		"provider_call_id": ev.ProviderCallID,
		"status":           ev.ProviderStatus,
		"effect":           string(result.Effect),
	})

	return sess, result, nil
}
