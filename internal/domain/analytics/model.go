package analytics

import "time"

// Channels and directions used on message records.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
	ChannelVoice    = "voice"

	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// CallRecord summarizes one call for reporting.
type CallRecord struct {
	ID           string    `json:"id"`
	CallID       string    `json:"call_id"`
	ProviderSID  string    `json:"call_sid,omitempty"`
	ToNumber     string    `json:"to_number"`
	FromNumber   string    `json:"from_number,omitempty"`
	Status       string    `json:"status"`
	Duration     int       `json:"duration"`
	Direction    string    `json:"direction"`
	Purpose      string    `json:"purpose,omitempty"`
	Outcome      string    `json:"outcome,omitempty"`
	RecordingURL string    `json:"recording_url,omitempty"`
	Transcript   string    `json:"transcript,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Sentiment    string    `json:"sentiment,omitempty"`
	Sector       string    `json:"sector"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MessageRecord is one redacted message exchanged on a text channel.
type MessageRecord struct {
	ID         string    `json:"id"`
	MessageSID string    `json:"message_sid,omitempty"`
	ToNumber   string    `json:"to_number,omitempty"`
	FromNumber string    `json:"from_number,omitempty"`
	Content    string    `json:"content"`
	Role       string    `json:"role"`
	Channel    string    `json:"channel"`
	Direction  string    `json:"direction"`
	Sector     string    `json:"sector"`
	Timestamp  time.Time `json:"timestamp"`
}

// IntentRecord is one classified customer intent.
type IntentRecord struct {
	ID            string    `json:"id"`
	Intent        string    `json:"intent"`
	Text          string    `json:"text,omitempty"`
	Confidence    float64   `json:"confidence"`
	RequiresHuman bool      `json:"requires_human"`
	Sector        string    `json:"sector"`
	UserID        string    `json:"user_id,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Filter narrows call and message listings.
type Filter struct {
	Sector    string     `json:"sector,omitempty"`
	Channel   string     `json:"channel,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Limit     int        `json:"limit,omitempty"`
}

// IntentCount is the number of records carrying an intent.
type IntentCount struct {
	Intent string `json:"intent"`
	Count  int64  `json:"count"`
}

// IntentShare is an intent count within one sector.
type IntentShare struct {
	Sector string `json:"sector"`
	Intent string `json:"intent"`
	Count  int64  `json:"count"`
}

// Overview is the dashboard summary.
type Overview struct {
	TotalCalls      int64         `json:"total_calls"`
	TotalMessages   int64         `json:"total_messages"`
	SuccessRate     float64       `json:"success_rate"`
	AvgCallDuration float64       `json:"avg_call_duration"`
	TopIntents      []IntentCount `json:"top_intents"`
}

// CallStats are the aggregates the overview needs from storage.
type CallStats struct {
	Total       int64
	Completed   int64
	AvgDuration float64
}
