package inbound

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/analytics"
	"jan-server/services/engage-api/internal/domain/consent"
	"jan-server/services/engage-api/internal/domain/conversation"
	"jan-server/services/engage-api/internal/domain/redact"
)

const (
	ConsentRequiredReply = "Please reply START to opt-in to receive messages."
	HandoffReply         = "I'll connect you with a human agent. Please wait..."
	ApologyReply         = "Sorry, I encountered an error. Please try again later."

	sectorContextKey = "sector"
)

// Intent is the classification of a customer message.
type Intent struct {
	Name          string         `json:"intent"`
	Confidence    float64        `json:"confidence"`
	Entities      map[string]any `json:"entities,omitempty"`
	RequiresHuman bool           `json:"requires_human"`
}

// ResponseRequest is the input for reply generation. Query and history are already redacted.
type ResponseRequest struct {
	Query    string
	Sector   string
	Language string
	History  []conversation.Message
}

// TextGenerator classifies intents and drafts replies.
type TextGenerator interface {
	ClassifyIntent(ctx context.Context, text, sector string) (Intent, error)
	GenerateResponse(ctx context.Context, req ResponseRequest) (string, error)
}

// Recorder stores analytics for the conversation.
type Recorder interface {
	RecordMessage(ctx context.Context, record analytics.MessageRecord) (analytics.MessageRecord, error)
	RecordIntent(ctx context.Context, record analytics.IntentRecord) (analytics.IntentRecord, error)
}

// AssistantConfig tunes reply generation.
type AssistantConfig struct {
	DefaultSector string
	Language      string
	HistoryWindow int
	Timeout       time.Duration
}

// Assistant produces the synchronous reply to an inbound message.
type Assistant struct {
	router        *Router
	consent       ConsentLedger
	conversations Conversations
	generator     TextGenerator
	recorder      Recorder
	redactor      *redact.Redactor
	cfg           AssistantConfig
	log           zerolog.Logger
}

// NewAssistant creates an assistant. recorder may be nil.
func NewAssistant(router *Router, ledger ConsentLedger, conversations Conversations, generator TextGenerator, recorder Recorder, redactor *redact.Redactor, cfg AssistantConfig, log zerolog.Logger) *Assistant {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 10
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Assistant{
		router:        router,
		consent:       ledger,
		conversations: conversations,
		generator:     generator,
		recorder:      recorder,
		redactor:      redactor,
		cfg:           cfg,
		log:           log.With().Str("component", "inbound-assistant").Logger(),
	}
}

// Reply runs msg through routing, consent, classification and generation.
// It always returns text for the customer; failures become the apology reply.
func (a *Assistant) Reply(ctx context.Context, msg Message) string {
	routed, err := a.router.Route(ctx, msg)
	if err != nil {
		a.log.Error().Err(err).Str("message_sid", msg.MessageID).Msg("route inbound message")
		return ApologyReply
	}

	sector := a.cfg.DefaultSector
	if routed.Session != nil {
		if s := routed.Session.Context[sectorContextKey]; s != "" {
			sector = s
		}
	}
	a.recordMessage(ctx, routed.UserID, msg, sector)

	if routed.Handled() {
		return routed.Reply
	}

	if !a.consent.Check(ctx, routed.UserID, consent.TypeWhatsApp) {
		return ConsentRequiredReply
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	masked := a.redactor.Mask(msg.Body)
	intent, err := a.generator.ClassifyIntent(ctx, masked, sector)
	if err != nil {
		a.log.Error().Err(err).Msg("classify intent")
		return ApologyReply
	}
	a.log.Info().Str("intent", intent.Name).Float64("confidence", intent.Confidence).Msg("intent classified")
	a.recordIntent(ctx, routed.UserID, masked, sector, intent)

	if intent.RequiresHuman {
		return HandoffReply
	}

	history := routed.Session.Recent(a.cfg.HistoryWindow)
	for i := range history {
		history[i].Content = a.redactor.Mask(history[i].Content)
	}
	reply, err := a.generator.GenerateResponse(ctx, ResponseRequest{
		Query:    masked,
		Sector:   sector,
		Language: a.cfg.Language,
		History:  history,
	})
	if err != nil {
		a.log.Error().Err(err).Msg("generate response")
		return ApologyReply
	}

	if _, err := a.conversations.Append(ctx, routed.UserID, conversation.RoleAssistant, reply); err != nil {
		a.log.Error().Err(err).Msg("append assistant reply")
		return ApologyReply
	}
	a.recordReply(ctx, routed.UserID, reply, sector)
	return reply
}

func (a *Assistant) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.Timeout)
}

func (a *Assistant) recordMessage(ctx context.Context, userID string, msg Message, sector string) {
	if a.recorder == nil {
		return
	}
	_, _ = a.recorder.RecordMessage(ctx, analytics.MessageRecord{
		MessageSID: msg.MessageID,
		FromNumber: userID,
		Content:    a.redactor.Mask(msg.Body),
		Role:       string(conversation.RoleUser),
		Channel:    analytics.ChannelWhatsApp,
		Direction:  analytics.DirectionInbound,
		Sector:     sector,
	})
}

func (a *Assistant) recordReply(ctx context.Context, userID, reply, sector string) {
	if a.recorder == nil {
		return
	}
	_, _ = a.recorder.RecordMessage(ctx, analytics.MessageRecord{
		ToNumber:  userID,
		Content:   a.redactor.Mask(reply),
		Role:      string(conversation.RoleAssistant),
		Channel:   analytics.ChannelWhatsApp,
		Direction: analytics.DirectionOutbound,
		Sector:    sector,
	})
}

func (a *Assistant) recordIntent(ctx context.Context, userID, text, sector string, intent Intent) {
	if a.recorder == nil {
		return
	}
	_, _ = a.recorder.RecordIntent(ctx, analytics.IntentRecord{
		Intent:        intent.Name,
		Text:          text,
		Confidence:    intent.Confidence,
		RequiresHuman: intent.RequiresHuman,
		Sector:        sector,
		UserID:        userID,
	})
}
