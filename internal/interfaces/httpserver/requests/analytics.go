package requests

import (
	"fmt"
	"strings"
	"time"

	"jan-server/services/engage-api/internal/domain/analytics"
)

const maxListLimit = 1000

// AnalyticsFilter narrows call and message listings. It binds from a JSON body or the query string.
type AnalyticsFilter struct {
	StartDate string `json:"start_date,omitempty" form:"start_date"`
	EndDate   string `json:"end_date,omitempty" form:"end_date"`
	Sector    string `json:"sector,omitempty" form:"sector" binding:"omitempty,sector"`
	Channel   string `json:"channel,omitempty" form:"channel" binding:"omitempty,oneof=whatsapp sms voice"`
	Limit     int    `json:"limit,omitempty" form:"limit" binding:"omitempty,min=1,max=1000"`
}

// ToFilter parses the dates, which may be RFC 3339 timestamps or plain dates.
func (f AnalyticsFilter) ToFilter() (analytics.Filter, error) {
	out := analytics.Filter{
		Sector:  strings.ToLower(f.Sector),
		Channel: f.Channel,
		Limit:   f.Limit,
	}
	if out.Limit == 0 {
		out.Limit = maxListLimit
	}
	var err error
	if out.StartDate, err = parseDate(f.StartDate, false); err != nil {
		return analytics.Filter{}, fmt.Errorf("start_date: %w", err)
	}
	if out.EndDate, err = parseDate(f.EndDate, true); err != nil {
		return analytics.Filter{}, fmt.Errorf("end_date: %w", err)
	}
	if out.StartDate != nil && out.EndDate != nil && out.EndDate.Before(*out.StartDate) {
		return analytics.Filter{}, fmt.Errorf("end_date is before start_date")
	}
	return out, nil
}

// parseDate reads an RFC 3339 timestamp or a date. A bare end date covers the whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// RecordCallRequest stores a call record supplied by an operator tool.
type RecordCallRequest struct {
	CallID      string `json:"call_id" binding:"required"`
	ProviderSID string `json:"call_sid,omitempty"`
	ToNumber    string `json:"to_number" binding:"required"`
	FromNumber  string `json:"from_number,omitempty"`
	Status      string `json:"status" binding:"required"`
	Duration    int    `json:"duration" binding:"min=0"`
	Direction   string `json:"direction,omitempty" binding:"omitempty,oneof=inbound outbound"`
	Purpose     string `json:"purpose,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Sentiment   string `json:"sentiment,omitempty"`
	Sector      string `json:"sector,omitempty" binding:"omitempty,sector"`
	Language    string `json:"language,omitempty" binding:"omitempty,language"`
}

// Record converts the request to the analytics model.
func (r RecordCallRequest) Record() analytics.CallRecord {
	return analytics.CallRecord{
		CallID:      r.CallID,
		ProviderSID: r.ProviderSID,
		ToNumber:    r.ToNumber,
		FromNumber:  r.FromNumber,
		Status:      r.Status,
		Duration:    r.Duration,
		Direction:   r.Direction,
		Purpose:     r.Purpose,
		Outcome:     r.Outcome,
		Summary:     r.Summary,
		Sentiment:   r.Sentiment,
		Sector:      strings.ToLower(r.Sector),
		Language:    strings.ToLower(r.Language),
	}
}

// RecordMessageRequest stores a message record.
type RecordMessageRequest struct {
	MessageSID string     `json:"message_sid,omitempty"`
	ToNumber   string     `json:"to_number,omitempty"`
	FromNumber string     `json:"from_number,omitempty"`
	Content    string     `json:"content" binding:"required"`
	Role       string     `json:"role" binding:"required,oneof=user assistant system"`
	Channel    string     `json:"channel,omitempty" binding:"omitempty,oneof=whatsapp sms voice"`
	Direction  string     `json:"direction,omitempty" binding:"omitempty,oneof=inbound outbound"`
	Sector     string     `json:"sector,omitempty" binding:"omitempty,sector"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// Record converts the request to the analytics model. Content is not yet redacted.
func (r RecordMessageRequest) Record() analytics.MessageRecord {
	rec := analytics.MessageRecord{
		MessageSID: r.MessageSID,
		ToNumber:   r.ToNumber,
		FromNumber: r.FromNumber,
		Content:    r.Content,
		Role:       r.Role,
		Channel:    r.Channel,
		Direction:  r.Direction,
		Sector:     strings.ToLower(r.Sector),
	}
	if r.Timestamp != nil {
		rec.Timestamp = r.Timestamp.UTC()
	}
	return rec
}

// RecordIntentRequest stores a classified intent.
type RecordIntentRequest struct {
	Intent        string  `json:"intent" binding:"required"`
	Text          string  `json:"text,omitempty"`
	Confidence    float64 `json:"confidence" binding:"min=0,max=1"`
	RequiresHuman bool    `json:"requires_human"`
	Sector        string  `json:"sector,omitempty" binding:"omitempty,sector"`
	UserID        string  `json:"user_id,omitempty"`
}

// Record converts the request to the analytics model. Text is not yet redacted.
func (r RecordIntentRequest) Record() analytics.IntentRecord {
	return analytics.IntentRecord{
		Intent:        r.Intent,
		Text:          r.Text,
		Confidence:    r.Confidence,
		RequiresHuman: r.RequiresHuman,
		Sector:        strings.ToLower(r.Sector),
		UserID:        r.UserID,
	}
}
