package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantErr    bool
		wantPrefix string
	}{
		{
			name:       "generate call ID",
			prefix:     "call",
			length:     24,
			wantPrefix: "call_",
		},
		{
			name:       "generate short ID",
			prefix:     "test",
			length:     8,
			wantPrefix: "test_",
		},
		{
			name:    "zero length",
			prefix:  "test",
			length:  0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSecureID(tt.prefix, tt.length)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateSecureID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("GenerateSecureID() = %v, want prefix %v", got, tt.wantPrefix)
			}
			if !IsSecureID(got, tt.prefix, tt.length) {
				t.Errorf("IsSecureID(%q) = false, want true", got)
			}
		})
	}
}

func TestGenerateSecureID_Uniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := GenerateSecureID("call", 24)
		if err != nil {
			t.Fatalf("GenerateSecureID() error = %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsSecureID(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"call_abc123", true},
		{"call_ABC123", false},
		{"call_abc12", false},
		{"sess_abc123", false},
		{"call_abc-23", false},
	}
	for _, tt := range tests {
		if got := IsSecureID(tt.value, "call", 6); got != tt.want {
			t.Errorf("IsSecureID(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestNewEventID_Ordered(t *testing.T) {
	prev := NewEventID("evt")
	for i := 0; i < 100; i++ {
		next := NewEventID("evt")
		if next <= prev {
			t.Fatalf("event ids not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}
