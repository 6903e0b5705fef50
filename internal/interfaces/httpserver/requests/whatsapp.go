package requests

import (
	"github.com/shopspring/decimal"

	"jan-server/services/engage-api/internal/domain/messaging"
)

// InboundWhatsAppForm is the provider's inbound message webhook body.
type InboundWhatsAppForm struct {
	From        string `form:"From" binding:"required"`
	Body        string `form:"Body"`
	MessageSid  string `form:"MessageSid"`
	ProfileName string `form:"ProfileName"`
}

// ConsentRequest records an operator-entered consent decision.
type ConsentRequest struct {
	PhoneNumber string `json:"phone_number" form:"phone_number" binding:"required,phone"`
}

// SendWhatsAppRequest sends a free-form WhatsApp message.
type SendWhatsAppRequest struct {
	ToNumber string `json:"to_number" binding:"required,phone"`
	Message  string `json:"message" binding:"required,max=4096"`
	MediaURL string `json:"media_url,omitempty" binding:"omitempty,url"`
}

// SendPaymentLinkRequest sends a templated payment request.
type SendPaymentLinkRequest struct {
	ToNumber    string          `json:"to_number" binding:"required,phone"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number"`
	Description string          `json:"description" binding:"required"`
	PaymentURL  string          `json:"payment_url" binding:"required,url"`
}

// SendPolicyDetailsRequest sends a policy summary.
type SendPolicyDetailsRequest struct {
	ToNumber   string                  `json:"to_number" binding:"required,phone"`
	PolicyData messaging.PolicyDetails `json:"policy_data"`
}

// SendLoanSummaryRequest sends a loan summary.
type SendLoanSummaryRequest struct {
	ToNumber string                `json:"to_number" binding:"required,phone"`
	LoanData messaging.LoanSummary `json:"loan_data"`
}

// SendSMSRequest sends a plain SMS.
type SendSMSRequest struct {
	ToNumber string `json:"to_number" binding:"required,phone"`
	Message  string `json:"message" binding:"required,max=1600"`
}

// Link converts the request into the message template.
func (r SendPaymentLinkRequest) Link() messaging.PaymentLink {
	return messaging.PaymentLink{Amount: r.Amount, Description: r.Description, PaymentURL: r.PaymentURL}
}
