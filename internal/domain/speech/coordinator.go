// Package speech places outbound calls and serves their playback instructions.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"jan-server/services/engage-api/internal/domain/audit"
	"jan-server/services/engage-api/internal/domain/call"
	"jan-server/services/engage-api/internal/domain/consent"
	"jan-server/services/engage-api/internal/utils/idgen"
	"jan-server/services/engage-api/internal/utils/platformerrors"
)

const callIDLength = 24

// ErrConsentDenied is returned when outbound consent is enforced and absent.
var ErrConsentDenied = errors.New("outbound call consent not granted")

var tracer = otel.Tracer("engage-api/speech")

// Transcript is the result of speech recognition.
type Transcript struct {
	Text       string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

// Synthesizer converts text to speech and speech to text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, locale, speaker string) ([]byte, error)
	Transcribe(ctx context.Context, audio []byte, filename, locale string) (Transcript, error)
}

// PlaceCallRequest describes a call for the telephony provider.
type PlaceCallRequest struct {
	To              string
	InstructionsURL string
	StatusURL       string
}

// Placement is the provider's answer to a placed call.
type Placement struct {
	ProviderCallID string
	Status         string
}

// Telephony places calls with the voice provider.
type Telephony interface {
	PlaceCall(ctx context.Context, req PlaceCallRequest) (Placement, error)
}

// ConsentLedger is the part of the consent ledger the coordinator needs.
type ConsentLedger interface {
	Check(ctx context.Context, userID string, t consent.Type) bool
	Record(ctx context.Context, userID string, t consent.Type, granted bool, metadata map[string]any) error
}

// Config tunes the coordinator.
type Config struct {
	PublicURL             string
	FallbackAudioMinBytes int
	ConsentEnforced       bool
	SynthesisTimeout      time.Duration
	TelephonyTimeout      time.Duration
	DefaultSector         string
}

// OutboundCallRequest is a validated request to call a customer.
type OutboundCallRequest struct {
	PhoneNumber  string
	Purpose      string
	Sector       string
	Language     string
	Speaker      string
	CustomerData map[string]any
	// PublicURL overrides the configured callback base for this call.
	PublicURL string
}

// Coordinator drives the speech pipeline for outbound calls.
type Coordinator struct {
	store       call.Store
	consent     ConsentLedger
	synthesizer Synthesizer
	telephony   Telephony
	catalog     *Catalog
	audit       audit.Sink
	cfg         Config
	log         zerolog.Logger
	now         func() time.Time
}

// NewCoordinator creates a coordinator. A nil catalog uses the embedded one.
func NewCoordinator(store call.Store, ledger ConsentLedger, synth Synthesizer, tel Telephony, catalog *Catalog, sink audit.Sink, cfg Config, log zerolog.Logger) *Coordinator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if sink == nil {
		sink = audit.Nop
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	return &Coordinator{
		store:       store,
		consent:     ledger,
		synthesizer: synth,
		telephony:   tel,
		catalog:     catalog,
		audit:       sink,
		cfg:         cfg,
		log:         log.With().Str("component", "speech-coordinator").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Catalog exposes the voice catalog.
func (c *Coordinator) Catalog() *Catalog {
	return c.catalog
}

// InitiateOutboundCall creates the call session, synthesizes the greeting and places the call.
// The session is removed again when the provider rejects the call.
func (c *Coordinator) InitiateOutboundCall(ctx context.Context, req OutboundCallRequest) (*call.Session, error) {
	ctx, span := tracer.Start(ctx, "speech.InitiateOutboundCall")
	defer span.End()

	if req.Sector == "" {
		req.Sector = c.cfg.DefaultSector
	}
	if req.Language == "" {
		req.Language = c.catalog.DefaultLanguage
	}
	req.Language = strings.ToLower(req.Language)
	span.SetAttributes(
		attribute.String("call.purpose", req.Purpose),
		attribute.String("call.language", req.Language),
	)

	if err := c.checkConsent(ctx, req.PhoneNumber); err != nil {
		span.SetStatus(codes.Error, "consent denied")
		return nil, err
	}

	callID, err := idgen.GenerateSecureID("call", callIDLength)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to allocate call id", err)
	}
	span.SetAttributes(attribute.String("call.id", callID))

	now := c.now()
	sess := call.NewSession(callID, now)
	sess.PhoneNumber = req.PhoneNumber
	sess.Purpose = req.Purpose
	sess.Sector = req.Sector
	sess.Language = req.Language
	sess.CustomerData = req.CustomerData
	sess.PublicURL = c.callbackBase(req.PublicURL)
	sess.GreetingText = c.catalog.CallScript(req.Language, req.Purpose)

	audio, ok := c.synthesize(ctx, sess.GreetingText, req.Language, req.Speaker)
	if err := sess.SetAudio(audio, ok, c.now()); err != nil {
		return nil, err
	}

	if err := c.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create call session: %w", err)
	}

	placement, err := c.place(ctx, sess)
	if err != nil {
		if delErr := c.store.Delete(ctx, callID); delErr != nil {
			c.log.Error().Err(delErr).Str("call_id", callID).Msg("failed to remove call session after placement failure")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "placement failed")
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"telephony provider unavailable", err, map[string]any{"call_id": callID})
	}

	updated, err := c.store.Update(ctx, callID, func(s *call.Session) error {
		s.ProviderCallID = placement.ProviderCallID
		if s.ProviderStatus == "" {
			s.ProviderStatus = placement.Status
		}
		s.UpdatedAt = c.now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record provider call id: %w", err)
	}

	audioGen := "success"
	if !ok {
		audioGen = "fallback"
	}
	c.audit.Emit(ctx, "outbound_call_initiated", req.PhoneNumber, map[string]any{
		"call_id":          callID,
		"provider_call_id": placement.ProviderCallID,
		"purpose":          req.Purpose,
		"sector":           req.Sector,
		"audio_gen":        audioGen,
	})
	c.log.Info().
		Str("call_id", callID).
		Str("provider_call_id", placement.ProviderCallID).
		Str("purpose", req.Purpose).
		Str("language", req.Language).
		Bool("synthesis_ok", ok).
		Msg("outbound call placed")

	return updated, nil
}

func (c *Coordinator) checkConsent(ctx context.Context, phone string) error {
	if c.consent.Check(ctx, phone, consent.TypeOutboundCall) {
		return nil
	}
	c.log.Warn().Bool("enforced", c.cfg.ConsentEnforced).Msg("no prior outbound call consent")
	if err := c.consent.Record(ctx, phone, consent.TypeOutboundCall, false, map[string]any{"reason": "no_prior_consent"}); err != nil {
		c.log.Error().Err(err).Msg("failed to record outbound consent denial")
	}
	if c.cfg.ConsentEnforced {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConsentDenied,
			"outbound call consent not granted", ErrConsentDenied)
	}
	return nil
}

// synthesize never fails the call: errors and timeouts yield empty audio and ok=false.
func (c *Coordinator) synthesize(ctx context.Context, text, lang, speaker string) ([]byte, bool) {
	ctx, span := tracer.Start(ctx, "speech.Synthesize")
	defer span.End()

	if speaker == "" {
		speaker = c.catalog.Speaker(lang)
	}
	if c.cfg.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.SynthesisTimeout)
		defer cancel()
	}

	audio, err := c.synthesizer.Synthesize(ctx, text, c.catalog.Locale(lang), speaker)
	if err != nil {
		span.RecordError(err)
		c.log.Warn().Err(err).Str("language", lang).Msg("speech synthesis failed, playback will use provider voice")
		return nil, false
	}
	if len(audio) == 0 {
		return nil, false
	}
	return audio, true
}

func (c *Coordinator) place(ctx context.Context, sess *call.Session) (Placement, error) {
	ctx, span := tracer.Start(ctx, "speech.PlaceCall")
	defer span.End()

	if c.cfg.TelephonyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.TelephonyTimeout)
		defer cancel()
	}
	return c.telephony.PlaceCall(ctx, PlaceCallRequest{
		To:              sess.PhoneNumber,
		InstructionsURL: fmt.Sprintf("%s/v1/voice/twiml/%s", sess.PublicURL, sess.ID),
		StatusURL:       fmt.Sprintf("%s/v1/voice/status/%s", sess.PublicURL, sess.ID),
	})
}

func (c *Coordinator) callbackBase(override string) string {
	if base := strings.TrimRight(strings.TrimSpace(override), "/"); base != "" {
		return base
	}
	return c.cfg.PublicURL
}

// Get returns a snapshot of the call session.
func (c *Coordinator) Get(ctx context.Context, callID string) (*call.Session, error) {
	return c.store.Get(ctx, callID)
}

// Audio returns the synthesized greeting for callID, or ErrSessionNotFound when there is none.
func (c *Coordinator) Audio(ctx context.Context, callID string) ([]byte, error) {
	sess, err := c.store.Get(ctx, callID)
	if err != nil {
		return nil, err
	}
	if len(sess.Audio) == 0 {
		return nil, call.ErrSessionNotFound
	}
	return sess.Audio, nil
}

// Complete records the business outcome of a call once.
func (c *Coordinator) Complete(ctx context.Context, callID, outcome string) (*call.Session, error) {
	sess, err := c.store.Update(ctx, callID, func(s *call.Session) error {
		return s.Complete(outcome, c.now())
	})
	if err != nil {
		return nil, err
	}
	c.audit.Emit(ctx, "outbound_call_completed", sess.PhoneNumber, map[string]any{
		"call_id": callID,
		"outcome": outcome,
	})
	c.log.Info().Str("call_id", callID).Str("outcome", outcome).Msg("call completed")
	return sess, nil
}

// Speak synthesizes arbitrary text for lang.
func (c *Coordinator) Speak(ctx context.Context, text, lang, speaker string) ([]byte, error) {
	if speaker == "" {
		speaker = c.catalog.Speaker(lang)
	}
	if c.cfg.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.SynthesisTimeout)
		defer cancel()
	}
	audio, err := c.synthesizer.Synthesize(ctx, text, c.catalog.Locale(lang), speaker)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "speech synthesis unavailable", err)
	}
	return audio, nil
}

// Transcribe converts recorded audio to text.
func (c *Coordinator) Transcribe(ctx context.Context, audio []byte, filename, lang string) (Transcript, error) {
	if c.cfg.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.SynthesisTimeout)
		defer cancel()
	}
	t, err := c.synthesizer.Transcribe(ctx, audio, filename, c.catalog.Locale(lang))
	if err != nil {
		return Transcript{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "speech recognition unavailable", err)
	}
	if t.Language == "" {
		t.Language = lang
	}
	return t, nil
}

// Voices lists the synthesis speakers for lang.
func (c *Coordinator) Voices(lang string) []string {
	return c.catalog.Speakers(lang)
}
