// @title           Engage API
// @version         1.0
// @description     Multi-channel customer engagement for banking, insurance and investment services.
// @description     Handles WhatsApp conversations, outbound voice calls, consent and engagement analytics.

// @contact.name   Jan Team
// @contact.url    https://github.com/janhq/jan-server

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"jan-server/services/engage-api/internal/config"
	"jan-server/services/engage-api/internal/infrastructure/auditlog"
	"jan-server/services/engage-api/internal/infrastructure/auth"
	"jan-server/services/engage-api/internal/infrastructure/logger"
	"jan-server/services/engage-api/internal/infrastructure/observability"
	"jan-server/services/engage-api/internal/infrastructure/store"
	"jan-server/services/engage-api/internal/interfaces/httpserver"
	"jan-server/services/engage-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/engage-api/internal/interfaces/httpserver/routes"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	janitor    *store.Janitor
	auditSink  *auditlog.AsyncSink
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, janitor *store.Janitor, auditSink *auditlog.AsyncSink, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		janitor:    janitor,
		auditSink:  auditSink,
		log:        log,
	}
}

// Start runs the application until ctx is cancelled.
// The audit sink stops last so events emitted during shutdown are still delivered.
func (a *Application) Start(ctx context.Context) error {
	a.auditSink.Start(ctx)
	defer a.auditSink.Stop()

	a.janitor.Start(ctx)
	defer a.janitor.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})
	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup observability
	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	backends, err := ProvideBackends(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect backends")
	}
	defer backends.Close(log)

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth validator")
	}
	defer authValidator.Close()

	app, err := buildApplication(cfg, log, backends, authValidator)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Str("store_backend", cfg.StoreBackend).
		Str("analytics_backend", cfg.AnalyticsBackend).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// buildApplication assembles the object graph described by ProviderSet in wire.go.
func buildApplication(cfg *config.Config, log zerolog.Logger, backends *Backends, authValidator *auth.Validator) (*Application, error) {
	redactor, err := ProvideRedactor(cfg)
	if err != nil {
		return nil, err
	}
	auditSink := ProvideAuditSink(cfg, backends, log)
	ledger := ProvideConsentLedger(backends, auditSink, log)

	conversations, err := ProvideConversationStore(cfg, backends, log)
	if err != nil {
		return nil, err
	}
	conversationService := ProvideConversationService(cfg, conversations, log)

	calls := ProvideCallStore(log)
	janitor := ProvideJanitor(cfg, calls, conversations, log)
	analyticsService := ProvideAnalyticsService(backends, log)

	groqClient := ProvideGroqClient(cfg, log)
	sarvamClient := ProvideSarvamClient(cfg, log)
	twilioClient := ProvideTwilioClient(cfg, log)

	coordinator := ProvideCoordinator(cfg, calls, ledger, sarvamClient, twilioClient, auditSink, log)
	reconciler := ProvideReconciler(calls, auditSink, log)
	assistant := ProvideAssistant(cfg, ledger, conversationService, groqClient, analyticsService, redactor, auditSink, log)
	messagingService := ProvideMessaging(cfg, twilioClient, ledger, analyticsService, redactor, auditSink, log)

	handlerProvider := handlers.NewProvider(
		handlers.NewWhatsAppHandler(assistant, messagingService),
		handlers.NewConsentHandler(ledger),
		handlers.NewVoiceHandler(coordinator, reconciler, analyticsService, ProvideTextGenerator(groqClient), redactor, log),
		handlers.NewAnalyticsHandler(analyticsService, redactor),
	)
	routeProvider := routes.NewProvider(handlerProvider, authValidator)

	httpServer, err := httpserver.New(cfg, log, routeProvider, ProvideProbes(backends))
	if err != nil {
		return nil, err
	}
	return NewApplication(httpServer, janitor, auditSink, log), nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
