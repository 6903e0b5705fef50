package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jan-server/services/engage-api/internal/domain/call"
	"jan-server/services/engage-api/internal/domain/inbound"
	"jan-server/services/engage-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/engage-api/internal/interfaces/httpserver/requests"
	"jan-server/services/engage-api/internal/interfaces/httpserver/responses"
	"jan-server/services/engage-api/internal/utils/platformerrors"
)

const xmlContentType = "application/xml"

// RegisterWebhookRoutes registers the provider-originated callbacks.
func RegisterWebhookRoutes(router gin.IRoutes, whatsapp *handlers.WhatsAppHandler, voice *handlers.VoiceHandler) {
	router.POST("/whatsapp/webhook", whatsappWebhook(whatsapp))
	router.POST("/voice/twiml/:call_id", playbackInstructions(voice))
	router.GET("/voice/twiml/:call_id", playbackInstructions(voice))
	router.GET("/voice/audio/:file", callAudio(voice))
	router.POST("/voice/status/:call_id", callStatus(voice))
}

// whatsappWebhook godoc
// @Summary      Inbound WhatsApp message
// @Description  Receives an inbound message from the messaging provider and answers with a TwiML reply.
// @Tags         WhatsApp
// @Accept       x-www-form-urlencoded
// @Produce      xml
// @Param        From formData string true "Sender address (whatsapp:+E164)"
// @Param        Body formData string false "Message text"
// @Param        MessageSid formData string false "Provider message id"
// @Param        ProfileName formData string false "Sender profile name"
// @Success      200 {string} string "TwiML document"
// @Failure      400 {object} responses.ErrorResponse
// @Router       /v1/whatsapp/webhook [post]
func whatsappWebhook(handler *handlers.WhatsAppHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form requests.InboundWhatsAppForm
		if err := c.ShouldBind(&form); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err))
			return
		}

		doc := handler.Reply(c.Request.Context(), inbound.Message{
			From:        form.From,
			Body:        form.Body,
			MessageID:   form.MessageSid,
			ProfileName: form.ProfileName,
		})
		c.Data(http.StatusOK, xmlContentType, []byte(doc))
	}
}

// playbackInstructions godoc
// @Summary      Call playback instructions
// @Description  Returns the TwiML the telephony provider executes when the callee answers. Unknown calls receive a spoken notice.
// @Tags         Voice
// @Produce      xml
// @Param        call_id path string true "Call ID"
// @Success      200 {string} string "TwiML document"
// @Router       /v1/voice/twiml/{call_id} [post]
func playbackInstructions(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc := handler.Instructions(c.Request.Context(), c.Param("call_id"))
		c.Data(http.StatusOK, xmlContentType, []byte(doc))
	}
}

// callAudio godoc
// @Summary      Call greeting audio
// @Description  Serves the synthesized greeting for a call as <call_id>.wav.
// @Tags         Voice
// @Produce      audio/wav
// @Param        file path string true "Audio resource, <call_id>.wav"
// @Success      200 {file} binary
// @Failure      404 {object} responses.ErrorResponse
// @Router       /v1/voice/audio/{file} [get]
func callAudio(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		file := c.Param("file")
		if !strings.HasSuffix(file, ".wav") {
			responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, "audio not found")
			return
		}

		audio, contentType, err := handler.Audio(c.Request.Context(), file)
		if err != nil {
			responses.HandleError(c, err, "audio not found")
			return
		}
		c.Data(http.StatusOK, contentType, audio)
	}
}

// callStatus godoc
// @Summary      Call status callback
// @Description  Receives call progress from the telephony provider and reconciles it into the call session.
// @Tags         Voice
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        call_id path string true "Call ID"
// @Param        CallSid formData string true "Provider call id"
// @Param        CallStatus formData string true "Provider call status"
// @Param        SequenceNumber formData int false "Provider callback sequence"
// @Param        From formData string false "Caller"
// @Param        To formData string false "Callee"
// @Param        CallDuration formData int false "Call duration in seconds"
// @Success      200 {object} map[string]any
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Router       /v1/voice/status/{call_id} [post]
func callStatus(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form requests.CallStatusForm
		if err := c.ShouldBind(&form); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err))
			return
		}

		result, err := handler.ApplyStatus(c.Request.Context(), call.StatusEvent{
			CallID:         c.Param("call_id"),
			ProviderCallID: form.CallSid,
			ProviderStatus: form.CallStatus,
			Sequence:       form.SequenceNumber,
			From:           form.From,
			To:             form.To,
			Duration:       form.CallDuration,
		})
		if err != nil {
			responses.HandleError(c, err, err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"effect":  result.Effect,
			"status":  result.To,
		})
	}
}
