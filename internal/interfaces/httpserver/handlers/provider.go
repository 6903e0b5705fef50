package handlers

import "github.com/google/wire"

// Provider groups the HTTP handlers for route registration.
type Provider struct {
	WhatsApp  *WhatsAppHandler
	Consent   *ConsentHandler
	Voice     *VoiceHandler
	Analytics *AnalyticsHandler
}

// NewProvider creates the handler provider.
func NewProvider(whatsapp *WhatsAppHandler, consent *ConsentHandler, voice *VoiceHandler, analytics *AnalyticsHandler) *Provider {
	return &Provider{
		WhatsApp:  whatsapp,
		Consent:   consent,
		Voice:     voice,
		Analytics: analytics,
	}
}

// HandlerProvider is the wire set for handlers.
var HandlerProvider = wire.NewSet(
	NewWhatsAppHandler,
	NewConsentHandler,
	NewVoiceHandler,
	NewAnalyticsHandler,
	NewProvider,
)
