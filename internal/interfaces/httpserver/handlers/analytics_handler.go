package handlers

import (
	"context"

	"jan-server/services/engage-api/internal/domain/analytics"
	"jan-server/services/engage-api/internal/domain/redact"
)

// AnalyticsHandler handles dashboard reads and operator-supplied records.
type AnalyticsHandler struct {
	service  *analytics.Service
	redactor *redact.Redactor
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service *analytics.Service, redactor *redact.Redactor) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, redactor: redactor}
}

// Overview returns the dashboard summary.
func (h *AnalyticsHandler) Overview(ctx context.Context) (analytics.Overview, error) {
	return h.service.Overview(ctx)
}

// Calls lists call records.
func (h *AnalyticsHandler) Calls(ctx context.Context, filter analytics.Filter) ([]analytics.CallRecord, error) {
	return h.service.Calls(ctx, filter)
}

// Messages lists message records.
func (h *AnalyticsHandler) Messages(ctx context.Context, filter analytics.Filter) ([]analytics.MessageRecord, error) {
	return h.service.Messages(ctx, filter)
}

// Intents returns the intent distribution.
func (h *AnalyticsHandler) Intents(ctx context.Context) ([]analytics.IntentShare, error) {
	return h.service.Intents(ctx)
}

// RecordCall stores a call record.
func (h *AnalyticsHandler) RecordCall(ctx context.Context, record analytics.CallRecord) (analytics.CallRecord, error) {
	return h.service.RecordCall(ctx, record)
}

// RecordMessage stores a message record with its content redacted.
func (h *AnalyticsHandler) RecordMessage(ctx context.Context, record analytics.MessageRecord) (analytics.MessageRecord, error) {
	record.Content = h.redactor.Mask(record.Content)
	return h.service.RecordMessage(ctx, record)
}

// RecordIntent stores an intent record with its text redacted.
func (h *AnalyticsHandler) RecordIntent(ctx context.Context, record analytics.IntentRecord) (analytics.IntentRecord, error) {
	record.Text = h.redactor.Mask(record.Text)
	return h.service.RecordIntent(ctx, record)
}
