package call

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when no call session exists for an id.
	ErrSessionNotFound = errors.New("call session not found")
	// ErrSessionExists is returned when creating a session whose id is taken.
	ErrSessionExists = errors.New("call session already exists")
	// ErrOutcomeAlreadySet is returned by a second completion of the same call.
	ErrOutcomeAlreadySet = errors.New("call outcome already set")
	// ErrAudioAlreadySet is returned when synthesized audio is written twice.
	ErrAudioAlreadySet = errors.New("call audio already set")
	// ErrMalformedCallback is returned for provider callbacks missing required fields.
	ErrMalformedCallback = errors.New("malformed provider callback")
)

// NoSequence marks a session that has not yet seen a sequenced provider callback.
const NoSequence = -1

// Session is the state of one outbound call.
type Session struct {
	ID           string         `json:"call_id"`
	PhoneNumber  string         `json:"phone_number"`
	Purpose      string         `json:"purpose"`
	Sector       string         `json:"sector"`
	Language     string         `json:"language"`
	CustomerData map[string]any `json:"customer_data,omitempty"`
	PublicURL    string         `json:"public_url,omitempty"`

	Status       Status `json:"status"`
	GreetingText string `json:"greeting"`
	Audio        []byte `json:"-"`
	AudioSet     bool   `json:"-"`
	SynthesisOK  bool   `json:"synthesis_ok"`

	ProviderCallID   string `json:"provider_call_id,omitempty"`
	ProviderStatus   string `json:"provider_status,omitempty"`
	ProviderSequence int    `json:"-"`

	Outcome string `json:"outcome,omitempty"`

	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastStatusUpdate *time.Time `json:"last_status_update,omitempty"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// NewSession returns a session in the initiated state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:               id,
		Status:           StatusInitiated,
		ProviderSequence: NoSequence,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Audio != nil {
		out.Audio = append([]byte(nil), s.Audio...)
	}
	if s.CustomerData != nil {
		out.CustomerData = make(map[string]any, len(s.CustomerData))
		for k, v := range s.CustomerData {
			out.CustomerData[k] = v
		}
	}
	out.LastStatusUpdate = cloneTime(s.LastStatusUpdate)
	out.EndedAt = cloneTime(s.EndedAt)
	out.CompletedAt = cloneTime(s.CompletedAt)
	return &out
}

// SetAudio stores synthesized audio once.
func (s *Session) SetAudio(audio []byte, ok bool, now time.Time) error {
	if s.AudioSet {
		return ErrAudioAlreadySet
	}
	s.Audio = append([]byte(nil), audio...)
	s.SynthesisOK = ok
	s.AudioSet = true
	s.UpdatedAt = now
	return nil
}

// Complete records the business outcome once and closes the call if it is still open.
func (s *Session) Complete(outcome string, now time.Time) error {
	if s.Outcome != "" {
		return ErrOutcomeAlreadySet
	}
	s.Outcome = outcome
	s.CompletedAt = &now
	if !s.Status.IsTerminal() {
		s.Status = StatusCompleted
		s.EndedAt = &now
	}
	s.UpdatedAt = now
	return nil
}

// NeedsFallback reports whether playback must use provider text-to-speech instead of the stored audio.
// The byte threshold is kept for synthesizers that return a short placeholder instead of an error.
func (s *Session) NeedsFallback(minAudioBytes int) bool {
	return !s.SynthesisOK || len(s.Audio) < minAudioBytes
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
