package v1

import (
	"encoding/base64"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/engage-api/internal/domain/speech"
	"jan-server/services/engage-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/engage-api/internal/interfaces/httpserver/requests"
	"jan-server/services/engage-api/internal/interfaces/httpserver/responses"
	"jan-server/services/engage-api/internal/utils/platformerrors"
)

const maxUploadBytes = 25 << 20

// RegisterVoiceRoutes registers call management and speech routes.
func RegisterVoiceRoutes(router gin.IRoutes, handler *handlers.VoiceHandler) {
	router.POST("/voice/outbound", initiateCall(handler))
	router.GET("/voice/call/:call_id", getCall(handler))
	router.POST("/voice/call/:call_id/complete", completeCall(handler))
	router.POST("/voice/tts", textToSpeech(handler))
	router.POST("/voice/stt", speechToText(handler))
	router.POST("/voice/query", voiceQuery(handler))
	router.GET("/voice/voices", listVoices(handler))
}

// initiateCall godoc
// @Summary      Place an outbound call
// @Description  Synthesizes the greeting for the purpose and language, then places the call. Synthesis failures fall back to provider speech.
// @Tags         Voice
// @Accept       json
// @Produce      json
// @Param        request body requests.OutboundCallRequest true "Call request"
// @Success      200 {object} responses.CallResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/voice/outbound [post]
func initiateCall(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.OutboundCallRequest
		if !bindJSON(c, &req) {
			return
		}

		sess, err := handler.InitiateCall(c.Request.Context(), speech.OutboundCallRequest{
			PhoneNumber:  req.PhoneNumber,
			Purpose:      req.Purpose,
			Sector:       req.Sector,
			Language:     req.Language,
			Speaker:      req.Speaker,
			CustomerData: req.CustomerData,
			PublicURL:    req.PublicURL,
		})
		if err != nil {
			responses.HandleError(c, err, "failed to initiate call")
			return
		}

		c.JSON(http.StatusOK, responses.CallResponse{
			Success:        true,
			CallID:         sess.ID,
			ProviderCallID: sess.ProviderCallID,
			Status:         sess.Status.String(),
			Greeting:       sess.GreetingText,
			PhoneNumber:    sess.PhoneNumber,
			SynthesisOK:    sess.SynthesisOK,
		})
	}
}

// getCall godoc
// @Summary      Get call details
// @Tags         Voice
// @Produce      json
// @Param        call_id path string true "Call ID"
// @Success      200 {object} responses.DataResponse{data=call.Session}
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/voice/call/{call_id} [get]
func getCall(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := handler.Call(c.Request.Context(), c.Param("call_id"))
		if err != nil {
			responses.HandleError(c, err, "call not found")
			return
		}
		responses.OK(c, sess)
	}
}

// completeCall godoc
// @Summary      Complete a call
// @Description  Records the business outcome of a call. An outcome can be recorded once.
// @Tags         Voice
// @Accept       json
// @Produce      json
// @Param        call_id path string true "Call ID"
// @Param        request body requests.CompleteCallRequest true "Outcome"
// @Success      200 {object} responses.MessageResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/voice/call/{call_id}/complete [post]
func completeCall(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.CompleteCallRequest
		if !bind(c, &req) {
			return
		}
		if _, err := handler.Complete(c.Request.Context(), c.Param("call_id"), req.Outcome); err != nil {
			responses.HandleError(c, err, err.Error())
			return
		}
		responses.Message(c, http.StatusOK, "Call completed")
	}
}

// textToSpeech godoc
// @Summary      Text to speech
// @Tags         Voice
// @Accept       json
// @Produce      json
// @Param        request body requests.TextToSpeechRequest true "Text"
// @Success      200 {object} responses.SpeechResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/voice/tts [post]
func textToSpeech(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.TextToSpeechRequest
		if !bind(c, &req) {
			return
		}
		out, err := handler.Speak(c.Request.Context(), req.Text, req.Language, req.Speaker)
		if err != nil {
			responses.HandleError(c, err, "speech synthesis failed")
			return
		}
		c.JSON(http.StatusOK, responses.SpeechResponse{
			Success:  true,
			Audio:    base64.StdEncoding.EncodeToString(out.Audio),
			Language: out.Language,
			Speaker:  out.Speaker,
		})
	}
}

// speechToText godoc
// @Summary      Speech to text
// @Tags         Voice
// @Accept       multipart/form-data
// @Produce      json
// @Param        audio formData file true "Recorded audio"
// @Param        language formData string false "Expected language"
// @Success      200 {object} responses.TranscriptResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/voice/stt [post]
func speechToText(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

		var form requests.SpeechToTextForm
		if err := c.ShouldBind(&form); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err))
			return
		}
		file, err := form.Audio.Open()
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "unreadable audio upload")
			return
		}
		defer file.Close()
		audio, err := io.ReadAll(file)
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "unreadable audio upload")
			return
		}

		transcript, err := handler.Transcribe(c.Request.Context(), audio, form.Audio.Filename, form.Language)
		if err != nil {
			responses.HandleError(c, err, "speech recognition failed")
			return
		}
		c.JSON(http.StatusOK, responses.TranscriptResponse{
			Success:    true,
			Transcript: transcript.Text,
			Confidence: transcript.Confidence,
			Language:   transcript.Language,
		})
	}
}

// voiceQuery godoc
// @Summary      Answer a spoken question
// @Description  Generates a reply for the question text and synthesizes it. Audio is omitted when synthesis fails.
// @Tags         Voice
// @Accept       json
// @Produce      json
// @Param        request body requests.VoiceQueryRequest true "Question"
// @Success      200 {object} responses.VoiceQueryResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/voice/query [post]
func voiceQuery(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.VoiceQueryRequest
		if !bindJSON(c, &req) {
			return
		}
		answer, err := handler.Query(c.Request.Context(), req.Text, req.Sector, req.Language, req.SessionID)
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeExternal, "failed to answer query")
			return
		}
		resp := responses.VoiceQueryResponse{
			Success:      true,
			SessionID:    answer.SessionID,
			TextResponse: answer.Text,
			Language:     answer.Language,
		}
		if len(answer.Audio) > 0 {
			resp.AudioResponse = base64.StdEncoding.EncodeToString(answer.Audio)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// listVoices godoc
// @Summary      List voices
// @Tags         Voice
// @Produce      json
// @Param        language query string false "Language code"
// @Success      200 {object} responses.VoicesResponse
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/voice/voices [get]
func listVoices(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query requests.VoicesQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err))
			return
		}
		voices := handler.Voices(query.Language)
		if voices == nil {
			voices = []string{}
		}
		c.JSON(http.StatusOK, responses.VoicesResponse{Success: true, Voices: voices})
	}
}
