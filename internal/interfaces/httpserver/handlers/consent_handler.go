package handlers

import (
	"context"
	"strings"

	"jan-server/services/engage-api/internal/domain/consent"
)

// ConsentHandler handles operator consent management.
type ConsentHandler struct {
	ledger *consent.Ledger
}

// NewConsentHandler creates a new consent handler.
func NewConsentHandler(ledger *consent.Ledger) *ConsentHandler {
	return &ConsentHandler{ledger: ledger}
}

// SetWhatsApp records an operator-entered WhatsApp consent decision.
func (h *ConsentHandler) SetWhatsApp(ctx context.Context, phone string, granted bool, operator string) error {
	userID := strings.TrimPrefix(strings.TrimSpace(phone), "whatsapp:")
	metadata := map[string]any{"source": "api"}
	if operator != "" {
		metadata["operator"] = operator
	}
	return h.ledger.Record(ctx, userID, consent.TypeWhatsApp, granted, metadata)
}

// History lists every consent decision held for userID.
func (h *ConsentHandler) History(ctx context.Context, userID string) ([]consent.Record, error) {
	return h.ledger.History(ctx, strings.TrimSpace(userID))
}
