package call

import (
	"strings"
	"time"
)

// StatusEvent is a provider status callback for one call.
type StatusEvent struct {
	CallID         string
	ProviderCallID string
	ProviderStatus string
	// Sequence is the provider's per-call callback counter, when it sends one.
	Sequence *int
	From     string
	To       string
	Duration int
}

// Validate rejects events missing the fields needed to correlate them.
func (e StatusEvent) Validate() error {
	if strings.TrimSpace(e.CallID) == "" ||
		strings.TrimSpace(e.ProviderCallID) == "" ||
		strings.TrimSpace(e.ProviderStatus) == "" {
		return ErrMalformedCallback
	}
	if e.Sequence != nil && *e.Sequence < 0 {
		return ErrMalformedCallback
	}
	return nil
}

// Effect describes what applying an event did to a session.
type Effect string

const (
	// EffectTransitioned means Status changed.
	EffectTransitioned Effect = "transitioned"
	// EffectRecorded means the raw provider status was stored without a state change.
	EffectRecorded Effect = "recorded"
	// EffectIgnored means the session was left untouched.
	EffectIgnored Effect = "ignored"
)

// ApplyResult reports the outcome of ApplyEvent.
type ApplyResult struct {
	Effect Effect
	From   Status
	To     Status
	Reason string
}

// ApplyEvent feeds a provider event into the state machine.
// Stale sequence numbers, unknown statuses, foreign provider ids and illegal transitions are ignored.
func (s *Session) ApplyEvent(ev StatusEvent, now time.Time) ApplyResult {
	result := ApplyResult{From: s.Status, To: s.Status}

	if ev.Sequence != nil && s.ProviderSequence != NoSequence && *ev.Sequence <= s.ProviderSequence {
		result.Effect, result.Reason = EffectIgnored, "stale_sequence"
		return result
	}
	if s.ProviderCallID != "" && s.ProviderCallID != ev.ProviderCallID {
		result.Effect, result.Reason = EffectIgnored, "provider_call_mismatch"
		return result
	}

	target, ok := MapProviderStatus(ev.ProviderStatus)
	if !ok {
		result.Effect, result.Reason = EffectIgnored, "unknown_status"
		return result
	}

	if target != s.Status && !s.Status.CanTransitionTo(target) {
		result.Effect, result.Reason = EffectIgnored, "illegal_transition"
		return result
	}

	if s.ProviderCallID == "" {
		s.ProviderCallID = ev.ProviderCallID
	}
	s.ProviderStatus = ev.ProviderStatus
	if ev.Sequence != nil {
		s.ProviderSequence = *ev.Sequence
	}
	s.LastStatusUpdate = &now
	s.UpdatedAt = now

	if target == s.Status {
		result.Effect = EffectRecorded
		return result
	}

	s.Status = target
	if target.IsTerminal() {
		s.EndedAt = &now
	}
	result.Effect = EffectTransitioned
	result.To = target
	return result
}
