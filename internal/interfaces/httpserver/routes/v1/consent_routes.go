package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/engage-api/internal/infrastructure/auth"
	"jan-server/services/engage-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/engage-api/internal/interfaces/httpserver/requests"
	"jan-server/services/engage-api/internal/interfaces/httpserver/responses"
)

// RegisterConsentRoutes registers operator consent routes.
func RegisterConsentRoutes(router gin.IRoutes, handler *handlers.ConsentHandler) {
	router.POST("/whatsapp/opt-in", setConsent(handler, true))
	router.POST("/whatsapp/opt-out", setConsent(handler, false))
	router.GET("/consent/:user_id", consentHistory(handler))
}

// setConsent godoc
// @Summary      Record WhatsApp opt-in or opt-out
// @Description  Records an operator-entered consent decision. phone_number may be sent as JSON or as a query parameter.
// @Tags         Consent
// @Accept       json
// @Produce      json
// @Param        request body requests.ConsentRequest true "Customer"
// @Success      200 {object} responses.MessageResponse
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/whatsapp/opt-in [post]
// @Router       /v1/whatsapp/opt-out [post]
func setConsent(handler *handlers.ConsentHandler, granted bool) gin.HandlerFunc {
	message := "Opt-out recorded successfully"
	if granted {
		message = "Opt-in recorded successfully"
	}
	return func(c *gin.Context) {
		var req requests.ConsentRequest
		if c.ContentType() == "application/json" {
			if !bindJSON(c, &req) {
				return
			}
		} else if !bind(c, &req) {
			return
		}

		if err := handler.SetWhatsApp(c.Request.Context(), req.PhoneNumber, granted, auth.Subject(c)); err != nil {
			responses.HandleError(c, err, "failed to record consent")
			return
		}
		responses.Message(c, http.StatusOK, message)
	}
}

// consentHistory godoc
// @Summary      Consent history
// @Description  Lists every consent decision held for a customer.
// @Tags         Consent
// @Produce      json
// @Param        user_id path string true "Customer phone number"
// @Success      200 {object} responses.ListResponse{data=[]consent.Record}
// @Security     BearerAuth
// @Router       /v1/consent/{user_id} [get]
func consentHistory(handler *handlers.ConsentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := handler.History(c.Request.Context(), c.Param("user_id"))
		if err != nil {
			responses.HandleError(c, err, "failed to load consent history")
			return
		}
		responses.List(c, records)
	}
}
