// Package responses contains HTTP response DTOs for the engage-api.
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// DataResponse wraps a single payload.
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ListResponse wraps a list payload with its length.
type ListResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Count   int  `json:"count"`
}

// MessageResponse acknowledges a write without a payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CallResponse is returned when an outbound call is placed.
type CallResponse struct {
	Success        bool   `json:"success"`
	CallID         string `json:"call_id"`
	ProviderCallID string `json:"twilio_sid"`
	Status         string `json:"status"`
	Greeting       string `json:"greeting"`
	PhoneNumber    string `json:"phone_number"`
	SynthesisOK    bool   `json:"synthesis_ok"`
}

// SpeechResponse carries base64 audio from text-to-speech.
type SpeechResponse struct {
	Success  bool   `json:"success"`
	Audio    string `json:"audio"`
	Language string `json:"language"`
	Speaker  string `json:"speaker"`
}

// TranscriptResponse carries a speech-to-text result.
type TranscriptResponse struct {
	Success    bool    `json:"success"`
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

// VoiceQueryResponse carries the answer to a spoken question.
type VoiceQueryResponse struct {
	Success       bool   `json:"success"`
	SessionID     string `json:"session_id"`
	TextResponse  string `json:"text_response"`
	AudioResponse string `json:"audio_response,omitempty"`
	Language      string `json:"language"`
}

// VoicesResponse lists synthesis speakers.
type VoicesResponse struct {
	Success bool     `json:"success"`
	Voices  []string `json:"voices"`
}

// OK writes data in the success envelope.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Success: true, Data: data})
}

// List writes a list in the success envelope.
func List[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, ListResponse{Success: true, Data: items, Count: len(items)})
}

// Message writes a success acknowledgement.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Success: true, Message: message})
}
