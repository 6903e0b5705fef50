package call_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/engage-api/internal/domain/call"
)

func seq(n int) *int { return &n }

func TestSession_ApplyEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setup      func(s *call.Session)
		event      call.StatusEvent
		wantEffect call.Effect
		wantStatus call.Status
		wantReason string
	}{
		{
			name:       "ringing from initiated",
			event:      call.StatusEvent{ProviderCallID: "CA1", ProviderStatus: "ringing", Sequence: seq(1)},
			wantEffect: call.EffectTransitioned,
			wantStatus: call.StatusRinging,
		},
		{
			name:       "queued while initiated records raw status",
			event:      call.StatusEvent{ProviderCallID: "CA1", ProviderStatus: "queued"},
			wantEffect: call.EffectRecorded,
			wantStatus: call.StatusInitiated,
		},
		{
			name: "stale sequence ignored",
			setup: func(s *call.Session) {
				s.Status = call.StatusAnswered
				s.ProviderSequence = 3
			},
			event:      call.StatusEvent{ProviderCallID: "CA1", ProviderStatus: "ringing", Sequence: seq(2)},
			wantEffect: call.EffectIgnored,
			wantStatus: call.StatusAnswered,
			wantReason: "stale_sequence",
		},
		{
			name:       "backward transition without sequence ignored",
			setup:      func(s *call.Session) { s.Status = call.StatusAnswered },
			event:      call.StatusEvent{ProviderCallID: "CA1", ProviderStatus: "ringing"},
			wantEffect: call.EffectIgnored,
			wantStatus: call.StatusAnswered,
			wantReason: "illegal_transition",
		},
		{
			name:       "terminal is absorbing",
			setup:      func(s *call.Session) { s.Status = call.StatusBusy },
			event:      call.StatusEvent{ProviderCallID: "CA1", ProviderStatus: "completed", Sequence: seq(9)},
			wantEffect: call.EffectIgnored,
			wantStatus: call.StatusBusy,
			wantReason: "illegal_transition",
		},
		{
			name:       "foreign provider id ignored",
			setup:      func(s *call.Session) { s.ProviderCallID = "CA1" },
			event:      call.StatusEvent{ProviderCallID: "CA2", ProviderStatus: "ringing"},
			wantEffect: call.EffectIgnored,
			wantStatus: call.StatusInitiated,
			wantReason: "provider_call_mismatch",
		},
		{
			name:       "unknown status ignored",
			event:      call.StatusEvent{ProviderCallID: "CA1", ProviderStatus: "paused"},
			wantEffect: call.EffectIgnored,
			wantStatus: call.StatusInitiated,
			wantReason: "unknown_status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := call.NewSession("call_1", now)
			if tt.setup != nil {
				tt.setup(s)
			}
			before := s.Clone()

			res := s.ApplyEvent(tt.event, now)

			assert.Equal(t, tt.wantEffect, res.Effect)
			assert.Equal(t, tt.wantStatus, s.Status)
			assert.Equal(t, tt.wantReason, res.Reason)
			if tt.wantEffect == call.EffectIgnored {
				assert.Equal(t, before, s, "ignored events leave the session untouched")
			} else {
				assert.Equal(t, tt.event.ProviderStatus, s.ProviderStatus)
				require.NotNil(t, s.LastStatusUpdate)
			}
		})
	}
}

func TestSession_ApplyEvent_TerminalSetsEndedAt(t *testing.T) {
	now := time.Now().UTC()
	s := call.NewSession("call_1", now)

	res := s.ApplyEvent(call.StatusEvent{ProviderCallID: "CA1", ProviderStatus: "completed"}, now)

	assert.Equal(t, call.EffectTransitioned, res.Effect)
	require.NotNil(t, s.EndedAt)
	assert.Empty(t, s.Outcome, "provider events never set the business outcome")
	assert.Nil(t, s.CompletedAt)
}

func TestSession_CompleteOnce(t *testing.T) {
	now := time.Now().UTC()
	s := call.NewSession("call_1", now)
	s.Status = call.StatusAnswered

	require.NoError(t, s.Complete("completed", now))
	assert.Equal(t, call.StatusCompleted, s.Status)
	assert.Equal(t, "completed", s.Outcome)
	require.NotNil(t, s.CompletedAt)

	err := s.Complete("failed", now.Add(time.Minute))
	assert.ErrorIs(t, err, call.ErrOutcomeAlreadySet)
	assert.Equal(t, "completed", s.Outcome)
	assert.Equal(t, now, *s.CompletedAt)
}

func TestSession_CompleteKeepsTerminalStatus(t *testing.T) {
	now := time.Now().UTC()
	s := call.NewSession("call_1", now)
	s.Status = call.StatusNoAnswer

	require.NoError(t, s.Complete("no_answer", now))
	assert.Equal(t, call.StatusNoAnswer, s.Status)
}

func TestSession_SetAudioOnce(t *testing.T) {
	now := time.Now().UTC()
	s := call.NewSession("call_1", now)

	require.NoError(t, s.SetAudio([]byte{1, 2, 3}, true, now))
	assert.ErrorIs(t, s.SetAudio([]byte{4}, true, now), call.ErrAudioAlreadySet)
	assert.Equal(t, []byte{1, 2, 3}, s.Audio)
}

func TestSession_NeedsFallback(t *testing.T) {
	tests := []struct {
		name string
		size int
		ok   bool
		want bool
	}{
		{"50 byte placeholder", 50, true, true},
		{"5000 byte audio", 5000, true, false},
		{"exactly threshold", 100, true, false},
		{"large audio flagged failed", 5000, false, true},
		{"empty audio", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := call.NewSession("call_1", time.Now())
			require.NoError(t, s.SetAudio(make([]byte, tt.size), tt.ok, time.Now()))
			assert.Equal(t, tt.want, s.NeedsFallback(100))
		})
	}
}

func TestSession_CloneIsDeep(t *testing.T) {
	s := call.NewSession("call_1", time.Now())
	s.CustomerData = map[string]any{"name": "Asha"}
	require.NoError(t, s.SetAudio([]byte{1}, true, time.Now()))

	c := s.Clone()
	c.CustomerData["name"] = "changed"
	c.Audio[0] = 9

	assert.Equal(t, "Asha", s.CustomerData["name"])
	assert.Equal(t, byte(1), s.Audio[0])
}
