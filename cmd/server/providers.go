package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/engage-api/internal/config"
	"jan-server/services/engage-api/internal/domain/analytics"
	"jan-server/services/engage-api/internal/domain/call"
	"jan-server/services/engage-api/internal/domain/consent"
	"jan-server/services/engage-api/internal/domain/conversation"
	"jan-server/services/engage-api/internal/domain/inbound"
	"jan-server/services/engage-api/internal/domain/messaging"
	"jan-server/services/engage-api/internal/domain/redact"
	"jan-server/services/engage-api/internal/domain/speech"
	"jan-server/services/engage-api/internal/infrastructure/auditlog"
	"jan-server/services/engage-api/internal/infrastructure/auth"
	"jan-server/services/engage-api/internal/infrastructure/database"
	"jan-server/services/engage-api/internal/infrastructure/groq"
	analyticsrepo "jan-server/services/engage-api/internal/infrastructure/repository/analytics"
	"jan-server/services/engage-api/internal/infrastructure/sarvam"
	"jan-server/services/engage-api/internal/infrastructure/store"
	"jan-server/services/engage-api/internal/infrastructure/twilio"
	"jan-server/services/engage-api/internal/interfaces/httpserver"
)

const (
	backendRedis    = "redis"
	backendPostgres = "postgres"
)

// Backends holds the optional shared connections. Either may be nil.
type Backends struct {
	Redis redis.UniversalClient
	DB    *gorm.DB
}

// Close releases the shared connections.
func (b *Backends) Close(log zerolog.Logger) {
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}
	if b.DB != nil {
		if err := database.Close(b.DB); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}

// ProvideBackends opens only the connections the configured backends need.
func ProvideBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backends, error) {
	backends := &Backends{}

	if strings.EqualFold(cfg.StoreBackend, backendRedis) {
		client, err := store.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		backends.Redis = client
	}

	if strings.EqualFold(cfg.AnalyticsBackend, backendPostgres) {
		db, err := database.Connect(ctx, database.Config{
			DSN:             cfg.DatabaseURL,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			LogLevel:        gormlogger.Warn,
		})
		if err != nil {
			backends.Close(log)
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			backends.Close(log)
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		backends.DB = db
	}

	return backends, nil
}

// ProvideProbes checks the shared connections on /readyz.
func ProvideProbes(backends *Backends) httpserver.Probes {
	probes := httpserver.Probes{}
	if backends.Redis != nil {
		probes["redis"] = func(ctx context.Context) error {
			return backends.Redis.Ping(ctx).Err()
		}
	}
	if backends.DB != nil {
		probes["database"] = func(ctx context.Context) error {
			sqlDB, err := backends.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	return probes
}

// ProvideRedactor builds the PII redactor from the configured pattern list.
func ProvideRedactor(cfg *config.Config) (*redact.Redactor, error) {
	kinds, err := redact.ParseKinds(cfg.PIIPatterns)
	if err != nil {
		return nil, err
	}
	return redact.New(cfg.EnablePIIMasking, kinds), nil
}

// ProvideAuditSink builds the async audit sink, persisting to the database when configured.
func ProvideAuditSink(cfg *config.Config, backends *Backends, log zerolog.Logger) *auditlog.AsyncSink {
	var writer auditlog.Writer
	if cfg.AuditPersist && backends.DB != nil {
		writer = auditlog.NewGormWriter(backends.DB)
	}
	return auditlog.NewAsyncSink(cfg.AuditBufferSize, writer, log)
}

// ProvideConsentLedger builds the consent ledger over the configured store.
func ProvideConsentLedger(backends *Backends, sink *auditlog.AsyncSink, log zerolog.Logger) *consent.Ledger {
	var consentStore consent.Store = store.NewMemoryConsentStore()
	if backends.Redis != nil {
		consentStore = store.NewRedisConsentStore(backends.Redis)
	}
	return consent.NewLedger(consentStore, sink, log)
}

// ConversationStore pairs the conversation store with its sweeper, which is nil for Redis.
type ConversationStore struct {
	Store   conversation.Store
	Sweeper store.ConversationSweeper
}

// ProvideConversationStore selects the conversation store backend.
func ProvideConversationStore(cfg *config.Config, backends *Backends, log zerolog.Logger) (ConversationStore, error) {
	if backends.Redis != nil {
		return ConversationStore{Store: store.NewRedisConversationStore(backends.Redis, cfg.ConversationTTL, log)}, nil
	}
	lru, err := store.NewLRUConversationStore(cfg.ConversationMaxSessions, cfg.ConversationTTL, log)
	if err != nil {
		return ConversationStore{}, err
	}
	return ConversationStore{Store: lru, Sweeper: lru}, nil
}

// ProvideConversationService builds the conversation service.
func ProvideConversationService(cfg *config.Config, conversations ConversationStore, log zerolog.Logger) *conversation.Service {
	return conversation.NewService(conversations.Store, cfg.ConversationMaxMessages, log)
}

// ProvideCallStore builds the in-process call session store.
func ProvideCallStore(log zerolog.Logger) call.Store {
	return store.NewMemoryCallStore(log)
}

// ProvideJanitor builds the session janitor.
func ProvideJanitor(cfg *config.Config, calls call.Store, conversations ConversationStore, log zerolog.Logger) *store.Janitor {
	return store.NewJanitor(calls, conversations.Sweeper, store.JanitorConfig{
		Retention: cfg.CallSessionRetention,
		StaleTTL:  cfg.CallSessionStaleTTL,
		Interval:  cfg.CallSessionSweepInterval,
	}, log)
}

// ProvideAnalyticsService builds the analytics service over the configured repository.
func ProvideAnalyticsService(backends *Backends, log zerolog.Logger) *analytics.Service {
	var repo analytics.Repository = analyticsrepo.NewInMemoryRepository()
	if backends.DB != nil {
		repo = analyticsrepo.NewPostgresRepository(backends.DB)
	}
	return analytics.NewService(repo, log)
}

// ProvideGroqClient builds the text generation client.
func ProvideGroqClient(cfg *config.Config, log zerolog.Logger) *groq.Client {
	return groq.NewClient(groq.Config{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		Model:       cfg.GroqModel,
		Temperature: cfg.GroqTemperature,
		MaxTokens:   cfg.GroqMaxTokens,
	}, log)
}

// ProvideSarvamClient builds the speech client.
func ProvideSarvamClient(cfg *config.Config, log zerolog.Logger) *sarvam.Client {
	return sarvam.NewClient(sarvam.Config{
		APIKey:   cfg.SarvamAPIKey,
		BaseURL:  cfg.SarvamAPIURL,
		TTSModel: cfg.SarvamTTSModel,
		STTModel: cfg.SarvamSTTModel,
		Timeout:  cfg.SynthesisTimeout,
	}, log)
}

// ProvideTwilioClient builds the telephony and messaging client.
func ProvideTwilioClient(cfg *config.Config, log zerolog.Logger) *twilio.Client {
	return twilio.NewClient(twilio.Config{
		AccountSID:     cfg.TwilioAccountSID,
		AuthToken:      cfg.TwilioAuthToken,
		PhoneNumber:    cfg.TwilioPhoneNumber,
		WhatsAppNumber: cfg.TwilioWhatsAppNumber,
		BaseURL:        cfg.TwilioAPIURL,
		Timeout:        cfg.TelephonyTimeout,
	}, log)
}

// ProvideCoordinator builds the speech pipeline coordinator.
func ProvideCoordinator(
	cfg *config.Config,
	calls call.Store,
	ledger *consent.Ledger,
	synth *sarvam.Client,
	telephony *twilio.Client,
	sink *auditlog.AsyncSink,
	log zerolog.Logger,
) *speech.Coordinator {
	return speech.NewCoordinator(calls, ledger, synth, telephony, nil, sink, speech.Config{
		PublicURL:             cfg.PublicURL,
		FallbackAudioMinBytes: cfg.FallbackAudioMinBytes,
		ConsentEnforced:       cfg.OutboundConsentEnforced,
		SynthesisTimeout:      cfg.SynthesisTimeout,
		TelephonyTimeout:      cfg.TelephonyTimeout,
		DefaultSector:         cfg.DefaultSector,
	}, log)
}

// ProvideReconciler builds the provider callback reconciler.
func ProvideReconciler(calls call.Store, sink *auditlog.AsyncSink, log zerolog.Logger) *call.Reconciler {
	return call.NewReconciler(calls, sink, log)
}

// ProvideAssistant builds the inbound router and assistant.
func ProvideAssistant(
	cfg *config.Config,
	ledger *consent.Ledger,
	conversations *conversation.Service,
	generator *groq.Client,
	analyticsService *analytics.Service,
	redactor *redact.Redactor,
	sink *auditlog.AsyncSink,
	log zerolog.Logger,
) *inbound.Assistant {
	router := inbound.NewRouter(ledger, conversations, redactor, sink, log)
	return inbound.NewAssistant(router, ledger, conversations, generator, analyticsService, redactor, inbound.AssistantConfig{
		DefaultSector: cfg.DefaultSector,
		Timeout:       cfg.TextGenTimeout,
	}, log)
}

// ProvideMessaging builds the outbound messaging service.
func ProvideMessaging(
	cfg *config.Config,
	sender *twilio.Client,
	ledger *consent.Ledger,
	analyticsService *analytics.Service,
	redactor *redact.Redactor,
	sink *auditlog.AsyncSink,
	log zerolog.Logger,
) *messaging.Service {
	return messaging.NewService(sender, ledger, analyticsService, redactor, sink, cfg.TelephonyTimeout, log)
}

// ProvideTextGenerator exposes the groq client as the handler's text generator.
func ProvideTextGenerator(client *groq.Client) inbound.TextGenerator {
	return client
}

// ProvideAuthValidator provides an auth validator.
func ProvideAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}
