package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "engage-api", cfg.ServiceName)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, 100, cfg.FallbackAudioMinBytes)
	assert.Equal(t, []string{"phone", "email", "aadhaar", "pan", "account"}, cfg.PIIPatterns)
	assert.False(t, cfg.OutboundConsentEnforced)
	assert.True(t, cfg.IsSupportedLanguage("HI"))
	assert.False(t, cfg.IsSupportedLanguage("fr"))
}

func TestLoad_AuthRequiresIssuer(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUDIENCE", "engage")
	t.Setenv("JWKS_URL", "http://localhost/jwks")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ISSUER")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"memory defaults", func(c *Config) {}, false},
		{"unknown store backend", func(c *Config) { c.StoreBackend = "etcd" }, true},
		{"postgres without dsn", func(c *Config) { c.AnalyticsBackend = "postgres" }, true},
		{"audit persist needs postgres", func(c *Config) { c.AuditPersist = true }, true},
		{"negative fallback threshold", func(c *Config) { c.FallbackAudioMinBytes = -1 }, true},
		{"postgres with dsn", func(c *Config) {
			c.AnalyticsBackend = "postgres"
			c.DatabaseURL = "postgres://u:p@localhost:5432/engage"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				StoreBackend:            "memory",
				RedisURL:                "redis://localhost:6379/0",
				AnalyticsBackend:        "memory",
				ConversationMaxSessions: 10,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
