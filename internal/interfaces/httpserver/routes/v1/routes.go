package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/engage-api/internal/interfaces/httpserver/handlers"
)

// Routes holds the v1 route configuration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes creates a new v1 routes instance.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register registers all v1 routes on the engine.
// Provider webhooks stay public; authMiddleware, when set, guards everything else.
func (r *Routes) Register(engine *gin.Engine, authMiddleware gin.HandlerFunc) {
	v1 := engine.Group("/v1")
	RegisterWebhookRoutes(v1, r.handlers.WhatsApp, r.handlers.Voice)

	protected := v1.Group("")
	if authMiddleware != nil {
		protected.Use(authMiddleware)
	}
	RegisterWhatsAppRoutes(protected, r.handlers.WhatsApp)
	RegisterConsentRoutes(protected, r.handlers.Consent)
	RegisterVoiceRoutes(protected, r.handlers.Voice)
	RegisterAnalyticsRoutes(protected, r.handlers.Analytics)
}
