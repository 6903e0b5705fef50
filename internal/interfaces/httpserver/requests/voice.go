package requests

import "mime/multipart"

// OutboundCallRequest asks the service to call a customer.
type OutboundCallRequest struct {
	PhoneNumber  string         `json:"phone_number" binding:"required,phone"`
	Purpose      string         `json:"purpose" binding:"required,max=64"`
	Sector       string         `json:"sector,omitempty" binding:"omitempty,sector"`
	Language     string         `json:"language,omitempty" binding:"omitempty,language"`
	Speaker      string         `json:"speaker,omitempty"`
	CustomerData map[string]any `json:"customer_data,omitempty"`
	PublicURL    string         `json:"public_url,omitempty" binding:"omitempty,url"`
}

// CompleteCallRequest records the business outcome of a call.
type CompleteCallRequest struct {
	Outcome string `json:"outcome" form:"outcome" binding:"required,max=64"`
}

// CallStatusForm is the provider's call status callback body.
// Required fields are checked by the reconciler so malformed callbacks map to one error.
type CallStatusForm struct {
	CallSid        string `form:"CallSid"`
	CallStatus     string `form:"CallStatus"`
	SequenceNumber *int   `form:"SequenceNumber"`
	From           string `form:"From"`
	To             string `form:"To"`
	CallDuration   int    `form:"CallDuration"`
}

// TextToSpeechRequest synthesizes arbitrary text.
type TextToSpeechRequest struct {
	Text     string `json:"text" form:"text" binding:"required,max=2500"`
	Language string `json:"language,omitempty" form:"language" binding:"omitempty,language"`
	Speaker  string `json:"speaker,omitempty" form:"speaker"`
}

// SpeechToTextForm uploads recorded audio for transcription.
type SpeechToTextForm struct {
	Audio    *multipart.FileHeader `form:"audio" binding:"required" swaggerignore:"true"`
	Language string                `form:"language" binding:"omitempty,language"`
}

// VoiceQueryRequest asks for a spoken answer to a customer question.
type VoiceQueryRequest struct {
	Text      string `json:"text" binding:"required,max=2000"`
	Sector    string `json:"sector,omitempty" binding:"omitempty,sector"`
	Language  string `json:"language,omitempty" binding:"omitempty,language"`
	SessionID string `json:"session_id,omitempty"`
}

// VoicesQuery selects the language for the speaker catalog.
type VoicesQuery struct {
	Language string `form:"language" binding:"omitempty,language"`
}
