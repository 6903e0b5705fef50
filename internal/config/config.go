package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the engage-api service.
type Config struct {
	// Service settings
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"engage-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"ENGAGE_API_PORT" envDefault:"8000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	PublicURL       string        `env:"PUBLIC_URL" envDefault:"http://localhost:8000"`

	// OpenTelemetry
	EnableTracing bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`

	// Auth (admin and analytics routes only, provider webhooks stay public)
	AuthEnabled  bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer   string `env:"ISSUER"`
	AuthAudience string `env:"AUDIENCE"`
	AuthJWKSURL  string `env:"JWKS_URL"`

	// Groq (OpenAI-compatible chat completions)
	GroqAPIKey      string        `env:"GROQ_API_KEY"`
	GroqBaseURL     string        `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqModel       string        `env:"GROQ_MODEL" envDefault:"mixtral-8x7b-32768"`
	GroqTemperature float32       `env:"GROQ_TEMPERATURE" envDefault:"0.3"`
	GroqMaxTokens   int           `env:"GROQ_MAX_TOKENS" envDefault:"2048"`
	TextGenTimeout  time.Duration `env:"TEXTGEN_TIMEOUT" envDefault:"20s"`

	// Sarvam (speech synthesis and transcription)
	SarvamAPIKey     string        `env:"SARVAM_API_KEY"`
	SarvamAPIURL     string        `env:"SARVAM_API_URL" envDefault:"https://api.sarvam.ai"`
	SarvamTTSModel   string        `env:"SARVAM_TTS_MODEL" envDefault:"bulbul:v1"`
	SarvamSTTModel   string        `env:"SARVAM_STT_MODEL" envDefault:"saaras:v1"`
	SynthesisTimeout time.Duration `env:"SYNTHESIS_TIMEOUT" envDefault:"15s"`

	// Twilio (voice, WhatsApp, SMS)
	TwilioAccountSID     string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string        `env:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber    string        `env:"TWILIO_PHONE_NUMBER"`
	TwilioWhatsAppNumber string        `env:"TWILIO_WHATSAPP_NUMBER"`
	TwilioAPIURL         string        `env:"TWILIO_API_URL" envDefault:"https://api.twilio.com"`
	TelephonyTimeout     time.Duration `env:"TELEPHONY_TIMEOUT" envDefault:"10s"`

	// Compliance
	EnablePIIMasking        bool     `env:"ENABLE_PII_MASKING" envDefault:"true"`
	PIIPatterns             []string `env:"PII_PATTERNS" envSeparator:"," envDefault:"phone,email,aadhaar,pan,account"`
	OutboundConsentEnforced bool     `env:"OUTBOUND_CONSENT_ENFORCED" envDefault:"false"`
	FallbackAudioMinBytes   int      `env:"FALLBACK_AUDIO_MIN_BYTES" envDefault:"100"`
	SupportedLanguages      []string `env:"SUPPORTED_LANGUAGES" envSeparator:"," envDefault:"en,hi,ta,te,mr,bn"`
	SupportedSectors        []string `env:"SUPPORTED_SECTORS" envSeparator:"," envDefault:"banking,insurance,nbfc,mutual_funds"`
	DefaultSector           string   `env:"DEFAULT_SECTOR" envDefault:"banking"`

	// Session stores
	StoreBackend             string        `env:"STORE_BACKEND" envDefault:"memory"`
	RedisURL                 string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	ConversationMaxSessions  int           `env:"CONVERSATION_MAX_SESSIONS" envDefault:"10000"`
	ConversationMaxMessages  int           `env:"CONVERSATION_MAX_MESSAGES" envDefault:"50"`
	ConversationTTL          time.Duration `env:"CONVERSATION_TTL" envDefault:"24h"`
	CallSessionRetention     time.Duration `env:"CALL_SESSION_RETENTION" envDefault:"1h"`
	CallSessionStaleTTL      time.Duration `env:"CALL_SESSION_STALE_TTL" envDefault:"2h"`
	CallSessionSweepInterval time.Duration `env:"CALL_SESSION_SWEEP_INTERVAL" envDefault:"1m"`

	// Analytics and audit persistence
	AnalyticsBackend  string        `env:"ANALYTICS_BACKEND" envDefault:"memory"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	AuditBufferSize   int           `env:"AUDIT_BUFFER_SIZE" envDefault:"1024"`
	AuditPersist      bool          `env:"AUDIT_PERSIST" envDefault:"false"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	if c.AuthEnabled {
		if strings.TrimSpace(c.AuthIssuer) == "" {
			return fmt.Errorf("ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(c.AuthAudience) == "" {
			return fmt.Errorf("AUDIENCE is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(c.AuthJWKSURL) == "" {
			return fmt.Errorf("JWKS_URL is required when AUTH_ENABLED is true")
		}
	}

	switch c.StoreBackend {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.AnalyticsBackend {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when ANALYTICS_BACKEND is postgres")
		}
	default:
		return fmt.Errorf("unsupported ANALYTICS_BACKEND %q", c.AnalyticsBackend)
	}

	if c.AuditPersist && c.AnalyticsBackend != "postgres" {
		return fmt.Errorf("AUDIT_PERSIST requires ANALYTICS_BACKEND=postgres")
	}
	if c.FallbackAudioMinBytes < 0 {
		return fmt.Errorf("FALLBACK_AUDIO_MIN_BYTES must not be negative")
	}
	if c.ConversationMaxSessions <= 0 {
		return fmt.Errorf("CONVERSATION_MAX_SESSIONS must be positive")
	}
	return nil
}

// Addr returns the HTTP server address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsSupportedLanguage reports whether lang is in SUPPORTED_LANGUAGES.
func (c *Config) IsSupportedLanguage(lang string) bool {
	for _, l := range c.SupportedLanguages {
		if strings.EqualFold(strings.TrimSpace(l), lang) {
			return true
		}
	}
	return false
}
