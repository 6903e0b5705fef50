package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/engage-api/internal/domain/messaging"
	"jan-server/services/engage-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/engage-api/internal/interfaces/httpserver/requests"
	"jan-server/services/engage-api/internal/interfaces/httpserver/responses"
	"jan-server/services/engage-api/internal/utils/platformerrors"
)

// RegisterWhatsAppRoutes registers outbound messaging routes.
func RegisterWhatsAppRoutes(router gin.IRoutes, handler *handlers.WhatsAppHandler) {
	router.POST("/whatsapp/send", sendWhatsApp(handler))
	router.POST("/whatsapp/send-payment-link", sendPaymentLink(handler))
	router.POST("/whatsapp/send-policy-details", sendPolicyDetails(handler))
	router.POST("/whatsapp/send-loan-summary", sendLoanSummary(handler))
	router.POST("/sms/send", sendSMS(handler))
}

// sendWhatsApp godoc
// @Summary      Send a WhatsApp message
// @Tags         WhatsApp
// @Accept       json
// @Produce      json
// @Param        request body requests.SendWhatsAppRequest true "Message"
// @Success      200 {object} responses.DataResponse{data=messaging.Result}
// @Failure      400 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/whatsapp/send [post]
func sendWhatsApp(handler *handlers.WhatsAppHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.SendWhatsAppRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := handler.Send(c.Request.Context(), req.ToNumber, req.Message, req.MediaURL)
		writeSent(c, result, err)
	}
}

// sendPaymentLink godoc
// @Summary      Send a payment link
// @Tags         WhatsApp
// @Accept       json
// @Produce      json
// @Param        request body requests.SendPaymentLinkRequest true "Payment request"
// @Success      200 {object} responses.DataResponse{data=messaging.Result}
// @Failure      400 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/whatsapp/send-payment-link [post]
func sendPaymentLink(handler *handlers.WhatsAppHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.SendPaymentLinkRequest
		if !bindJSON(c, &req) {
			return
		}
		if !req.Amount.IsPositive() {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "amount must be positive")
			return
		}
		result, err := handler.SendPaymentLink(c.Request.Context(), req.ToNumber, req.Link())
		writeSent(c, result, err)
	}
}

// sendPolicyDetails godoc
// @Summary      Send policy details
// @Tags         WhatsApp
// @Accept       json
// @Produce      json
// @Param        request body requests.SendPolicyDetailsRequest true "Policy summary"
// @Success      200 {object} responses.DataResponse{data=messaging.Result}
// @Failure      400 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/whatsapp/send-policy-details [post]
func sendPolicyDetails(handler *handlers.WhatsAppHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.SendPolicyDetailsRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := handler.SendPolicyDetails(c.Request.Context(), req.ToNumber, req.PolicyData)
		writeSent(c, result, err)
	}
}

// sendLoanSummary godoc
// @Summary      Send a loan summary
// @Tags         WhatsApp
// @Accept       json
// @Produce      json
// @Param        request body requests.SendLoanSummaryRequest true "Loan summary"
// @Success      200 {object} responses.DataResponse{data=messaging.Result}
// @Failure      400 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/whatsapp/send-loan-summary [post]
func sendLoanSummary(handler *handlers.WhatsAppHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.SendLoanSummaryRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := handler.SendLoanSummary(c.Request.Context(), req.ToNumber, req.LoanData)
		writeSent(c, result, err)
	}
}

// sendSMS godoc
// @Summary      Send an SMS
// @Tags         SMS
// @Accept       json
// @Produce      json
// @Param        request body requests.SendSMSRequest true "Message"
// @Success      200 {object} responses.DataResponse{data=messaging.Result}
// @Failure      400 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/sms/send [post]
func sendSMS(handler *handlers.WhatsAppHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.SendSMSRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := handler.SendSMS(c.Request.Context(), req.ToNumber, req.Message)
		writeSent(c, result, err)
	}
}

func writeSent(c *gin.Context, result messaging.Result, err error) {
	if err != nil {
		responses.HandleError(c, err, "failed to send message")
		return
	}
	c.JSON(http.StatusOK, responses.DataResponse{Success: true, Data: result})
}

// bindJSON binds and validates a JSON body, writing the 400 itself on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err))
		return false
	}
	return true
}

// bind picks the binding from the method and content type.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err))
		return false
	}
	return true
}
