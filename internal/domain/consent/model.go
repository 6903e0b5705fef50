package consent

import "time"

// Type names a consent channel.
type Type string

const (
	TypeWhatsApp      Type = "whatsapp"
	TypeOutboundCall  Type = "outbound_call"
	TypeSMS           Type = "sms"
	TypeCallRecording Type = "call_recording"
)

// Valid reports whether t is a known consent type.
func (t Type) Valid() bool {
	switch t {
	case TypeWhatsApp, TypeOutboundCall, TypeSMS, TypeCallRecording:
		return true
	}
	return false
}

// Record is the latest consent decision for one (user, type) pair.
type Record struct {
	UserID    string         `json:"user_id"`
	Type      Type           `json:"consent_type"`
	Granted   bool           `json:"granted"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Key returns the storage identity of the record.
func (r Record) Key() string {
	return Key(r.UserID, r.Type)
}

// Key builds the storage identity for a (user, type) pair.
func Key(userID string, t Type) string {
	return userID + ":" + string(t)
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	r.Metadata = cloneMetadata(r.Metadata)
	return r
}

func cloneMetadata(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
