package handlers

import (
	"context"

	"jan-server/services/engage-api/internal/domain/inbound"
	"jan-server/services/engage-api/internal/domain/messaging"
	"jan-server/services/engage-api/internal/utils/twiml"
)

// WhatsAppHandler handles inbound webhooks and outbound messaging.
type WhatsAppHandler struct {
	assistant *inbound.Assistant
	messaging *messaging.Service
}

// NewWhatsAppHandler creates a new WhatsApp handler.
func NewWhatsAppHandler(assistant *inbound.Assistant, service *messaging.Service) *WhatsAppHandler {
	return &WhatsAppHandler{assistant: assistant, messaging: service}
}

// Reply answers an inbound message with a TwiML document.
func (h *WhatsAppHandler) Reply(ctx context.Context, msg inbound.Message) string {
	return twiml.MessageReply(h.assistant.Reply(ctx, msg))
}

// Send delivers a free-form message.
func (h *WhatsAppHandler) Send(ctx context.Context, to, body, mediaURL string) (messaging.Result, error) {
	return h.messaging.SendWhatsApp(ctx, to, body, mediaURL)
}

// SendPaymentLink delivers a payment request.
func (h *WhatsAppHandler) SendPaymentLink(ctx context.Context, to string, link messaging.PaymentLink) (messaging.Result, error) {
	return h.messaging.SendPaymentLink(ctx, to, link)
}

// SendPolicyDetails delivers a policy summary.
func (h *WhatsAppHandler) SendPolicyDetails(ctx context.Context, to string, policy messaging.PolicyDetails) (messaging.Result, error) {
	return h.messaging.SendPolicyDetails(ctx, to, policy)
}

// SendLoanSummary delivers a loan summary.
func (h *WhatsAppHandler) SendLoanSummary(ctx context.Context, to string, loan messaging.LoanSummary) (messaging.Result, error) {
	return h.messaging.SendLoanSummary(ctx, to, loan)
}

// SendSMS delivers a plain SMS.
func (h *WhatsAppHandler) SendSMS(ctx context.Context, to, body string) (messaging.Result, error) {
	return h.messaging.SendSMS(ctx, to, body)
}
