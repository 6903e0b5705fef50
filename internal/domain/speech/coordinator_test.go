package speech_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/engage-api/internal/domain/call"
	"jan-server/services/engage-api/internal/domain/consent"
	"jan-server/services/engage-api/internal/domain/speech"
	"jan-server/services/engage-api/internal/utils/platformerrors"
)

const publicURL = "https://engage.example.com"

type callStore struct {
	mu       sync.Mutex
	sessions map[string]*call.Session
}

func newCallStore() *callStore {
	return &callStore{sessions: make(map[string]*call.Session)}
}

func (m *callStore) Create(_ context.Context, s *call.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return call.ErrSessionExists
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *callStore) Get(_ context.Context, id string) (*call.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, call.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *callStore) Update(_ context.Context, id string, fn call.UpdateFunc) (*call.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, call.ErrSessionNotFound
	}
	working := s.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	m.sessions[id] = working
	return working.Clone(), nil
}

func (m *callStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *callStore) List(_ context.Context) ([]*call.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*call.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Clone())
	}
	return out, nil
}

type fakeLedger struct {
	granted  map[string]bool
	recorded []consent.Record
}

func (f *fakeLedger) Check(_ context.Context, userID string, t consent.Type) bool {
	return f.granted[consent.Key(userID, t)]
}

func (f *fakeLedger) Record(_ context.Context, userID string, t consent.Type, granted bool, metadata map[string]any) error {
	f.recorded = append(f.recorded, consent.Record{UserID: userID, Type: t, Granted: granted, Metadata: metadata})
	return nil
}

type fakeSynth struct {
	SynthesizeFunc func(ctx context.Context, text, locale, speaker string) ([]byte, error)
	TranscribeFunc func(ctx context.Context, audio []byte, filename, locale string) (speech.Transcript, error)
	lastLocale     string
	lastSpeaker    string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, locale, speaker string) ([]byte, error) {
	f.lastLocale = locale
	f.lastSpeaker = speaker
	return f.SynthesizeFunc(ctx, text, locale, speaker)
}

func (f *fakeSynth) Transcribe(ctx context.Context, audio []byte, filename, locale string) (speech.Transcript, error) {
	return f.TranscribeFunc(ctx, audio, filename, locale)
}

type fakeTelephony struct {
	PlaceCallFunc func(ctx context.Context, req speech.PlaceCallRequest) (speech.Placement, error)
	calls         []speech.PlaceCallRequest
}

func (f *fakeTelephony) PlaceCall(ctx context.Context, req speech.PlaceCallRequest) (speech.Placement, error) {
	f.calls = append(f.calls, req)
	return f.PlaceCallFunc(ctx, req)
}

type recordedEvent struct {
	name     string
	userID   string
	metadata map[string]any
}

type captureSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (s *captureSink) Emit(_ context.Context, name, userID string, metadata map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, recordedEvent{name: name, userID: userID, metadata: metadata})
}

func (s *captureSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.name)
	}
	return out
}

type harness struct {
	store  *callStore
	ledger *fakeLedger
	synth  *fakeSynth
	tel    *fakeTelephony
	sink   *captureSink
	coord  *speech.Coordinator
}

func newHarness(audioSize int, enforce bool) *harness {
	h := &harness{
		store:  newCallStore(),
		ledger: &fakeLedger{granted: map[string]bool{}},
		synth: &fakeSynth{SynthesizeFunc: func(context.Context, string, string, string) ([]byte, error) {
			return bytes.Repeat([]byte{0x52}, audioSize), nil
		}},
		tel: &fakeTelephony{PlaceCallFunc: func(context.Context, speech.PlaceCallRequest) (speech.Placement, error) {
			return speech.Placement{ProviderCallID: "CA123", Status: "queued"}, nil
		}},
		sink: &captureSink{},
	}
	h.coord = speech.NewCoordinator(h.store, h.ledger, h.synth, h.tel, nil, h.sink, speech.Config{
		PublicURL:             publicURL + "/",
		FallbackAudioMinBytes: 100,
		ConsentEnforced:       enforce,
		SynthesisTimeout:      time.Second,
		TelephonyTimeout:      time.Second,
		DefaultSector:         "banking",
	}, zerolog.Nop())
	return h
}

func TestInitiateOutboundCall_HindiReminder(t *testing.T) {
	h := newHarness(5000, false)
	ctx := context.Background()

	sess, err := h.coord.InitiateOutboundCall(ctx, speech.OutboundCallRequest{
		PhoneNumber: "+919876543210",
		Purpose:     "sip_debit_reminder",
		Sector:      "mutual_funds",
		Language:    "hi",
	})
	require.NoError(t, err)

	hi := speech.DefaultCatalog().Languages["hi"]
	assert.Equal(t, hi.Greetings["sip_debit_reminder"]+" "+hi.Disclosure, sess.GreetingText)
	assert.True(t, strings.HasPrefix(sess.ID, "call_"))
	assert.Len(t, sess.ID, len("call_")+24)
	assert.Equal(t, call.StatusInitiated, sess.Status)
	assert.Equal(t, "CA123", sess.ProviderCallID)
	assert.Equal(t, "queued", sess.ProviderStatus)
	assert.True(t, sess.SynthesisOK)
	assert.Equal(t, "hi-IN", h.synth.lastLocale)
	assert.Equal(t, "meera", h.synth.lastSpeaker)

	require.Len(t, h.tel.calls, 1)
	assert.Equal(t, "+919876543210", h.tel.calls[0].To)
	assert.Equal(t, publicURL+"/v1/voice/twiml/"+sess.ID, h.tel.calls[0].InstructionsURL)
	assert.Equal(t, publicURL+"/v1/voice/status/"+sess.ID, h.tel.calls[0].StatusURL)

	// advisory mode records the missing consent and proceeds
	require.Len(t, h.ledger.recorded, 1)
	assert.Equal(t, consent.TypeOutboundCall, h.ledger.recorded[0].Type)
	assert.False(t, h.ledger.recorded[0].Granted)

	assert.Equal(t, []string{"outbound_call_initiated"}, h.sink.names())
	assert.Equal(t, "success", h.sink.events[0].metadata["audio_gen"])

	doc := h.coord.RenderPlaybackInstructions(ctx, sess.ID)
	assert.Contains(t, doc, "<Play>"+publicURL+"/v1/voice/audio/"+sess.ID+".wav</Play>")
	assert.Contains(t, doc, `<Say voice="alice" language="en-IN">Thank you for your time. Goodbye.</Say>`)
}

func TestInitiateOutboundCall_ConsentGrantedRecordsNothing(t *testing.T) {
	h := newHarness(5000, true)
	h.ledger.granted[consent.Key("+919876543210", consent.TypeOutboundCall)] = true

	_, err := h.coord.InitiateOutboundCall(context.Background(), speech.OutboundCallRequest{
		PhoneNumber: "+919876543210",
		Purpose:     "kyc_update_reminder",
	})
	require.NoError(t, err)
	assert.Empty(t, h.ledger.recorded)
}

func TestInitiateOutboundCall_EnforcedConsentDenies(t *testing.T) {
	h := newHarness(5000, true)

	_, err := h.coord.InitiateOutboundCall(context.Background(), speech.OutboundCallRequest{
		PhoneNumber: "+919876543210",
		Purpose:     "sip_debit_reminder",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, speech.ErrConsentDenied))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConsentDenied))
	assert.Empty(t, h.tel.calls)

	sessions, _ := h.store.List(context.Background())
	assert.Empty(t, sessions)
}

func TestInitiateOutboundCall_PlacementFailureRemovesSession(t *testing.T) {
	h := newHarness(5000, false)
	h.tel.PlaceCallFunc = func(context.Context, speech.PlaceCallRequest) (speech.Placement, error) {
		return speech.Placement{}, errors.New("provider down")
	}

	_, err := h.coord.InitiateOutboundCall(context.Background(), speech.OutboundCallRequest{
		PhoneNumber: "+919876543210",
		Purpose:     "sip_debit_reminder",
	})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))

	sessions, _ := h.store.List(context.Background())
	assert.Empty(t, sessions)
	assert.Empty(t, h.sink.names())
}

func TestInitiateOutboundCall_SynthesisFailureFallsBack(t *testing.T) {
	h := newHarness(0, false)
	h.synth.SynthesizeFunc = func(context.Context, string, string, string) ([]byte, error) {
		return nil, context.DeadlineExceeded
	}
	ctx := context.Background()

	sess, err := h.coord.InitiateOutboundCall(ctx, speech.OutboundCallRequest{
		PhoneNumber: "+919876543210",
		Purpose:     "sip_debit_reminder",
		Language:    "hi",
	})
	require.NoError(t, err)
	assert.False(t, sess.SynthesisOK)
	assert.Equal(t, "fallback", h.sink.events[0].metadata["audio_gen"])

	doc := h.coord.RenderPlaybackInstructions(ctx, sess.ID)
	assert.NotContains(t, doc, "<Play>")
	assert.Contains(t, doc, `<Say voice="Polly.Aditi" language="hi-IN">`)
	assert.Contains(t, doc, `<Pause length="1"></Pause>`)
	assert.Contains(t, doc, "Thank you for your time. Goodbye.")

	_, err = h.coord.Audio(ctx, sess.ID)
	assert.ErrorIs(t, err, call.ErrSessionNotFound)
}

func TestInitiateOutboundCall_CallbackBaseOverride(t *testing.T) {
	h := newHarness(5000, false)
	ctx := context.Background()
	const tunnel = "https://tunnel.ngrok.example"

	sess, err := h.coord.InitiateOutboundCall(ctx, speech.OutboundCallRequest{
		PhoneNumber: "+919876543210",
		Purpose:     "kyc_update_reminder",
		PublicURL:   " " + tunnel + "/ ",
	})
	require.NoError(t, err)
	assert.Equal(t, tunnel, sess.PublicURL)

	require.Len(t, h.tel.calls, 1)
	assert.Equal(t, tunnel+"/v1/voice/twiml/"+sess.ID, h.tel.calls[0].InstructionsURL)
	assert.Equal(t, tunnel+"/v1/voice/status/"+sess.ID, h.tel.calls[0].StatusURL)

	doc := h.coord.RenderPlaybackInstructions(ctx, sess.ID)
	assert.Contains(t, doc, "<Play>"+tunnel+"/v1/voice/audio/"+sess.ID+".wav</Play>")
}

func TestInitiateOutboundCall_SlowSynthesisIsBounded(t *testing.T) {
	h := newHarness(0, false)
	h.synth.SynthesizeFunc = func(ctx context.Context, _, _, _ string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	const timeout = 50 * time.Millisecond
	h.coord = speech.NewCoordinator(h.store, h.ledger, h.synth, h.tel, nil, h.sink, speech.Config{
		PublicURL:             publicURL,
		FallbackAudioMinBytes: 100,
		SynthesisTimeout:      timeout,
		TelephonyTimeout:      time.Second,
		DefaultSector:         "banking",
	}, zerolog.Nop())

	start := time.Now()
	sess, err := h.coord.InitiateOutboundCall(context.Background(), speech.OutboundCallRequest{
		PhoneNumber: "+919876543210",
		Purpose:     "sip_debit_reminder",
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, sess.SynthesisOK)
	assert.Empty(t, sess.Audio)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, 2*time.Second)
	require.Len(t, h.tel.calls, 1)
}

func TestRenderPlaybackInstructions_AudioThreshold(t *testing.T) {
	tests := []struct {
		name      string
		audioSize int
		wantPlay  bool
	}{
		{"tiny audio uses provider voice", 50, false},
		{"threshold size plays audio", 100, true},
		{"full audio plays", 5000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.audioSize, false)
			ctx := context.Background()
			sess, err := h.coord.InitiateOutboundCall(ctx, speech.OutboundCallRequest{
				PhoneNumber: "+919876543210",
				Purpose:     "kyc_update_reminder",
				Language:    "en",
			})
			require.NoError(t, err)

			doc := h.coord.RenderPlaybackInstructions(ctx, sess.ID)
			if got := strings.Contains(doc, "<Play>"); got != tt.wantPlay {
				t.Errorf("playback contains <Play> = %v, want %v\n%s", got, tt.wantPlay, doc)
			}
			// rendering twice yields the same document
			assert.Equal(t, doc, h.coord.RenderPlaybackInstructions(ctx, sess.ID))
		})
	}
}

func TestRenderPlaybackInstructions_UnknownCall(t *testing.T) {
	h := newHarness(5000, false)
	doc := h.coord.RenderPlaybackInstructions(context.Background(), "call_missing")
	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, "<Say>Meeting not found.</Say>")
}

func TestComplete_RejectsSecondOutcome(t *testing.T) {
	h := newHarness(5000, false)
	ctx := context.Background()
	sess, err := h.coord.InitiateOutboundCall(ctx, speech.OutboundCallRequest{
		PhoneNumber: "+919876543210",
		Purpose:     "sip_debit_reminder",
	})
	require.NoError(t, err)

	done, err := h.coord.Complete(ctx, sess.ID, "promised_payment")
	require.NoError(t, err)
	assert.Equal(t, "promised_payment", done.Outcome)
	assert.Equal(t, call.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	_, err = h.coord.Complete(ctx, sess.ID, "declined")
	assert.ErrorIs(t, err, call.ErrOutcomeAlreadySet)

	got, err := h.coord.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "promised_payment", got.Outcome)
	assert.Contains(t, h.sink.names(), "outbound_call_completed")

	_, err = h.coord.Complete(ctx, "call_missing", "x")
	assert.ErrorIs(t, err, call.ErrSessionNotFound)
}

func TestSpeakAndTranscribe(t *testing.T) {
	h := newHarness(300, false)
	h.synth.TranscribeFunc = func(_ context.Context, audio []byte, _, locale string) (speech.Transcript, error) {
		return speech.Transcript{Text: "namaste", Confidence: 0.9}, nil
	}
	ctx := context.Background()

	audio, err := h.coord.Speak(ctx, "hello", "ta", "")
	require.NoError(t, err)
	assert.Len(t, audio, 300)
	assert.Equal(t, "ta-IN", h.synth.lastLocale)

	tr, err := h.coord.Transcribe(ctx, []byte("wav"), "a.wav", "hi")
	require.NoError(t, err)
	assert.Equal(t, "namaste", tr.Text)
	assert.Equal(t, "hi", tr.Language)

	h.synth.SynthesizeFunc = func(context.Context, string, string, string) ([]byte, error) {
		return nil, errors.New("boom")
	}
	_, err = h.coord.Speak(ctx, "hello", "en", "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))

	assert.Contains(t, h.coord.Voices("hi"), "meera")
}
