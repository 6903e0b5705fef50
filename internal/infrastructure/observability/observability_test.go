package observability

import "testing"

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		raw          string
		wantEndpoint string
		wantInsecure bool
	}{
		{"http://otel:4318", "otel:4318", true},
		{"https://collector.example.com", "collector.example.com", false},
		{"otel:4318", "otel:4318", true},
	}
	for _, tt := range tests {
		endpoint, insecure := normalizeEndpoint(tt.raw)
		if endpoint != tt.wantEndpoint || insecure != tt.wantInsecure {
			t.Errorf("normalizeEndpoint(%q) = (%q, %v), want (%q, %v)", tt.raw, endpoint, insecure, tt.wantEndpoint, tt.wantInsecure)
		}
	}
}
