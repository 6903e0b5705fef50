// Package inbound handles customer messages arriving on the WhatsApp channel.
package inbound

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/audit"
	"jan-server/services/engage-api/internal/domain/consent"
	"jan-server/services/engage-api/internal/domain/conversation"
	"jan-server/services/engage-api/internal/domain/redact"
)

const (
	whatsappPrefix = "whatsapp:"
	previewLength  = 100

	OptInReply  = "Thank you for opting in! How can I help you today?"
	OptOutReply = "You have been opted out. Reply START to opt back in."
)

var (
	optInKeywords  = map[string]bool{"start": true, "yes": true, "subscribe": true, "join": true}
	optOutKeywords = map[string]bool{"stop": true, "unsubscribe": true, "quit": true, "cancel": true}
)

// ConsentLedger is the part of the consent ledger used on the inbound path.
type ConsentLedger interface {
	Check(ctx context.Context, userID string, t consent.Type) bool
	Record(ctx context.Context, userID string, t consent.Type, granted bool, metadata map[string]any) error
}

// Conversations is the conversation store surface used on the inbound path.
type Conversations interface {
	Append(ctx context.Context, userID string, role conversation.Role, content string) (*conversation.Session, error)
}

// Message is one inbound provider message.
type Message struct {
	From        string
	Body        string
	MessageID   string
	ProfileName string
}

// Routed is the router's decision. A non-empty Reply ends processing.
type Routed struct {
	UserID  string
	Reply   string
	Session *conversation.Session
}

// Handled reports whether the router already produced the reply.
func (r Routed) Handled() bool {
	return r.Reply != ""
}

// Router records inbound messages and answers opt-in and opt-out keywords.
type Router struct {
	consent       ConsentLedger
	conversations Conversations
	redactor      *redact.Redactor
	audit         audit.Sink
	log           zerolog.Logger
}

// NewRouter creates a router.
func NewRouter(ledger ConsentLedger, conversations Conversations, redactor *redact.Redactor, sink audit.Sink, log zerolog.Logger) *Router {
	if sink == nil {
		sink = audit.Nop
	}
	return &Router{
		consent:       ledger,
		conversations: conversations,
		redactor:      redactor,
		audit:         sink,
		log:           log.With().Str("component", "inbound-router").Logger(),
	}
}

// NormalizeSender strips the channel prefix from a provider address.
func NormalizeSender(from string) string {
	return strings.TrimPrefix(strings.TrimSpace(from), whatsappPrefix)
}

// Route records msg in the sender's conversation and handles consent keywords.
// Keyword handling runs before any consent or intent step.
func (r *Router) Route(ctx context.Context, msg Message) (Routed, error) {
	userID := NormalizeSender(msg.From)

	r.audit.Emit(ctx, "whatsapp_message_received", userID, map[string]any{
		"message_sid":     msg.MessageID,
		"message_preview": preview(r.redactor.Mask(msg.Body)),
	})

	// Append creates the session on first contact.
	sess, err := r.conversations.Append(ctx, userID, conversation.RoleUser, msg.Body)
	if err != nil {
		return Routed{UserID: userID}, fmt.Errorf("append inbound message: %w", err)
	}

	keyword := strings.ToLower(strings.TrimSpace(msg.Body))
	switch {
	case optInKeywords[keyword]:
		if err := r.consent.Record(ctx, userID, consent.TypeWhatsApp, true, map[string]any{"source": "keyword", "keyword": keyword}); err != nil {
			return Routed{UserID: userID}, err
		}
		return Routed{UserID: userID, Reply: OptInReply, Session: sess}, nil
	case optOutKeywords[keyword]:
		if err := r.consent.Record(ctx, userID, consent.TypeWhatsApp, false, map[string]any{"source": "keyword", "keyword": keyword}); err != nil {
			return Routed{UserID: userID}, err
		}
		return Routed{UserID: userID, Reply: OptOutReply, Session: sess}, nil
	}

	r.log.Debug().Str("message_sid", msg.MessageID).Int("history", len(sess.Messages)).Msg("inbound message routed")
	return Routed{UserID: userID, Session: sess}, nil
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return body
	}
	return string(runes[:previewLength])
}
