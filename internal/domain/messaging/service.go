// Package messaging sends outbound WhatsApp and SMS messages.
package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/analytics"
	"jan-server/services/engage-api/internal/domain/audit"
	"jan-server/services/engage-api/internal/domain/consent"
	"jan-server/services/engage-api/internal/domain/redact"
	"jan-server/services/engage-api/internal/utils/platformerrors"
)

const whatsappPrefix = "whatsapp:"

// Receipt is the provider's acknowledgement of a sent message.
type Receipt struct {
	MessageSID string
	Status     string
}

// Sender delivers messages through the messaging provider.
type Sender interface {
	SendWhatsApp(ctx context.Context, to, body, mediaURL string) (Receipt, error)
	SendSMS(ctx context.Context, to, body string) (Receipt, error)
}

// ConsentLedger is the consent surface used for outbound messages.
type ConsentLedger interface {
	Check(ctx context.Context, userID string, t consent.Type) bool
	Record(ctx context.Context, userID string, t consent.Type, granted bool, metadata map[string]any) error
}

// Recorder stores message analytics.
type Recorder interface {
	RecordMessage(ctx context.Context, record analytics.MessageRecord) (analytics.MessageRecord, error)
}

// Result describes a delivered message.
type Result struct {
	MessageSID string    `json:"message_sid"`
	Status     string    `json:"status"`
	To         string    `json:"to"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
}

// Service sends messages with an advisory consent check and an audit trail.
type Service struct {
	sender   Sender
	consent  ConsentLedger
	recorder Recorder
	redactor *redact.Redactor
	audit    audit.Sink
	timeout  time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates the messaging service. recorder may be nil.
func NewService(sender Sender, ledger ConsentLedger, recorder Recorder, redactor *redact.Redactor, sink audit.Sink, timeout time.Duration, log zerolog.Logger) *Service {
	if sink == nil {
		sink = audit.Nop
	}
	return &Service{
		sender:   sender,
		consent:  ledger,
		recorder: recorder,
		redactor: redactor,
		audit:    sink,
		timeout:  timeout,
		log:      log.With().Str("component", "messaging-service").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SendWhatsApp sends body to the recipient. Missing consent is recorded and logged, not enforced.
func (s *Service) SendWhatsApp(ctx context.Context, to, body, mediaURL string) (Result, error) {
	userID := strings.TrimPrefix(strings.TrimSpace(to), whatsappPrefix)
	s.advisoryConsent(ctx, userID, consent.TypeWhatsApp)

	sendCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	receipt, err := s.sender.SendWhatsApp(sendCtx, whatsappPrefix+userID, body, mediaURL)
	if err != nil {
		return Result{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "whatsapp delivery failed", err)
	}

	s.audit.Emit(ctx, "whatsapp_message_sent", userID, map[string]any{
		"message_sid": receipt.MessageSID,
		"status":      receipt.Status,
	})
	s.record(ctx, userID, body, receipt.MessageSID, analytics.ChannelWhatsApp)
	s.log.Info().Str("message_sid", receipt.MessageSID).Str("status", receipt.Status).Msg("whatsapp message sent")

	return Result{
		MessageSID: receipt.MessageSID,
		Status:     receipt.Status,
		To:         whatsappPrefix + userID,
		Type:       analytics.ChannelWhatsApp,
		Timestamp:  s.now(),
	}, nil
}

// SendSMS sends a plain text message.
func (s *Service) SendSMS(ctx context.Context, to, body string) (Result, error) {
	to = strings.TrimSpace(to)
	s.advisoryConsent(ctx, to, consent.TypeSMS)

	sendCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	receipt, err := s.sender.SendSMS(sendCtx, to, body)
	if err != nil {
		return Result{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "sms delivery failed", err)
	}

	s.audit.Emit(ctx, "sms_message_sent", to, map[string]any{
		"message_sid": receipt.MessageSID,
		"status":      receipt.Status,
		"type":        analytics.ChannelSMS,
	})
	s.record(ctx, to, body, receipt.MessageSID, analytics.ChannelSMS)
	s.log.Info().Str("message_sid", receipt.MessageSID).Str("status", receipt.Status).Msg("sms message sent")

	return Result{
		MessageSID: receipt.MessageSID,
		Status:     receipt.Status,
		To:         to,
		Type:       analytics.ChannelSMS,
		Timestamp:  s.now(),
	}, nil
}

// SendPaymentLink sends a templated payment request.
func (s *Service) SendPaymentLink(ctx context.Context, to string, link PaymentLink) (Result, error) {
	return s.SendWhatsApp(ctx, to, link.Render(), "")
}

// SendPolicyDetails sends a templated policy summary.
func (s *Service) SendPolicyDetails(ctx context.Context, to string, policy PolicyDetails) (Result, error) {
	return s.SendWhatsApp(ctx, to, policy.Render(), "")
}

// SendLoanSummary sends a templated loan summary.
func (s *Service) SendLoanSummary(ctx context.Context, to string, loan LoanSummary) (Result, error) {
	return s.SendWhatsApp(ctx, to, loan.Render(), "")
}

func (s *Service) advisoryConsent(ctx context.Context, userID string, t consent.Type) {
	if s.consent.Check(ctx, userID, t) {
		return
	}
	s.log.Warn().Str("consent_type", string(t)).Msg("sending without recorded consent")
	if err := s.consent.Record(ctx, userID, t, false, map[string]any{"reason": "no_prior_consent"}); err != nil {
		s.log.Error().Err(err).Msg("record consent denial")
	}
}

func (s *Service) record(ctx context.Context, to, body, sid, channel string) {
	if s.recorder == nil {
		return
	}
	_, _ = s.recorder.RecordMessage(ctx, analytics.MessageRecord{
		MessageSID: sid,
		ToNumber:   to,
		Content:    s.redactor.Mask(body),
		Role:       "assistant",
		Channel:    channel,
		Direction:  analytics.DirectionOutbound,
	})
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
