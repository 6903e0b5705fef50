package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/analytics"
	"jan-server/services/engage-api/internal/domain/call"
	"jan-server/services/engage-api/internal/domain/inbound"
	"jan-server/services/engage-api/internal/domain/redact"
	"jan-server/services/engage-api/internal/domain/speech"
	"jan-server/services/engage-api/internal/infrastructure/metrics"
)

const defaultAudioContentType = "audio/wav"

// VoiceHandler handles outbound calls, provider call webhooks and speech passthrough.
type VoiceHandler struct {
	coordinator *speech.Coordinator
	reconciler  *call.Reconciler
	analytics   *analytics.Service
	generator   inbound.TextGenerator
	redactor    *redact.Redactor
	log         zerolog.Logger
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(
	coordinator *speech.Coordinator,
	reconciler *call.Reconciler,
	analyticsService *analytics.Service,
	generator inbound.TextGenerator,
	redactor *redact.Redactor,
	log zerolog.Logger,
) *VoiceHandler {
	return &VoiceHandler{
		coordinator: coordinator,
		reconciler:  reconciler,
		analytics:   analyticsService,
		generator:   generator,
		redactor:    redactor,
		log:         log.With().Str("component", "voice-handler").Logger(),
	}
}

// InitiateCall places an outbound call and records it for analytics.
func (h *VoiceHandler) InitiateCall(ctx context.Context, req speech.OutboundCallRequest) (*call.Session, error) {
	sess, err := h.coordinator.InitiateOutboundCall(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := h.analytics.RecordCall(ctx, analytics.CallRecord{
		CallID:      sess.ID,
		ProviderSID: sess.ProviderCallID,
		ToNumber:    sess.PhoneNumber,
		Status:      string(sess.Status),
		Direction:   analytics.DirectionOutbound,
		Purpose:     sess.Purpose,
		Sector:      sess.Sector,
		Language:    sess.Language,
	}); err != nil {
		h.log.Warn().Err(err).Str("call_id", sess.ID).Msg("failed to record call analytics")
	}
	return sess, nil
}

// Call returns a snapshot of the call session.
func (h *VoiceHandler) Call(ctx context.Context, callID string) (*call.Session, error) {
	return h.coordinator.Get(ctx, callID)
}

// Complete records the business outcome of a call.
func (h *VoiceHandler) Complete(ctx context.Context, callID, outcome string) (*call.Session, error) {
	return h.coordinator.Complete(ctx, callID, outcome)
}

// Instructions renders the playback TwiML for callID. It never fails.
func (h *VoiceHandler) Instructions(ctx context.Context, callID string) string {
	return h.coordinator.RenderPlaybackInstructions(ctx, callID)
}

// Audio returns the stored greeting for an audio resource name such as "call_x.wav".
func (h *VoiceHandler) Audio(ctx context.Context, resource string) ([]byte, string, error) {
	callID := strings.TrimSuffix(resource, ".wav")
	audio, err := h.coordinator.Audio(ctx, callID)
	if err != nil {
		return nil, "", err
	}
	mtype := mimetype.Detect(audio)
	if mtype.Is("application/octet-stream") || !strings.HasPrefix(mtype.String(), "audio/") {
		return audio, defaultAudioContentType, nil
	}
	return audio, mtype.String(), nil
}

// ApplyStatus reconciles a provider status callback and mirrors accepted statuses to analytics.
func (h *VoiceHandler) ApplyStatus(ctx context.Context, ev call.StatusEvent) (call.ApplyResult, error) {
	_, result, err := h.reconciler.Apply(ctx, ev)
	if err != nil {
		switch {
		case errors.Is(err, call.ErrSessionNotFound):
			metrics.RecordCallbackEffect("unknown_call")
		case errors.Is(err, call.ErrMalformedCallback):
			metrics.RecordCallbackEffect("malformed")
		default:
			metrics.RecordCallbackEffect("error")
		}
		return call.ApplyResult{}, err
	}

	metrics.RecordCallbackEffect(string(result.Effect))
	if result.Effect != call.EffectIgnored {
		if err := h.analytics.UpdateCallStatus(ctx, ev.CallID, ev.ProviderStatus, ev.Duration); err != nil {
			h.log.Warn().Err(err).Str("call_id", ev.CallID).Msg("failed to mirror call status to analytics")
		}
	}
	return result, nil
}

// Synthesis is synthesized audio with the resolved language and speaker.
type Synthesis struct {
	Audio    []byte
	Language string
	Speaker  string
}

// Speak synthesizes text.
func (h *VoiceHandler) Speak(ctx context.Context, text, lang, speaker string) (Synthesis, error) {
	lang = h.language(lang)
	if speaker == "" {
		speaker = h.coordinator.Catalog().Speaker(lang)
	}
	audio, err := h.coordinator.Speak(ctx, text, lang, speaker)
	if err != nil {
		return Synthesis{}, err
	}
	return Synthesis{Audio: audio, Language: lang, Speaker: speaker}, nil
}

// Transcribe converts recorded audio to text.
func (h *VoiceHandler) Transcribe(ctx context.Context, audio []byte, filename, lang string) (speech.Transcript, error) {
	return h.coordinator.Transcribe(ctx, audio, filename, h.language(lang))
}

// Voices lists the synthesis speakers for lang.
func (h *VoiceHandler) Voices(lang string) []string {
	return h.coordinator.Voices(h.language(lang))
}

// VoiceAnswer is the result of a voice query.
type VoiceAnswer struct {
	SessionID string
	Text      string
	Audio     []byte
	Language  string
}

// Query answers a spoken question. Synthesis failures still return the text answer.
func (h *VoiceHandler) Query(ctx context.Context, text, sector, lang, sessionID string) (VoiceAnswer, error) {
	lang = h.language(lang)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	reply, err := h.generator.GenerateResponse(ctx, inbound.ResponseRequest{
		Query:    h.redactor.Mask(text),
		Sector:   sector,
		Language: lang,
	})
	if err != nil {
		return VoiceAnswer{}, err
	}

	answer := VoiceAnswer{SessionID: sessionID, Text: reply, Language: lang}
	audio, err := h.coordinator.Speak(ctx, reply, lang, "")
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", sessionID).Msg("voice answer synthesis failed, returning text only")
		return answer, nil
	}
	answer.Audio = audio
	return answer, nil
}

func (h *VoiceHandler) language(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return h.coordinator.Catalog().DefaultLanguage
	}
	return lang
}
