//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/config"
	"jan-server/services/engage-api/internal/interfaces"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvideBackends,
	ProvideProbes,
	ProvideRedactor,
	ProvideAuditSink,
	ProvideConsentLedger,
	ProvideConversationStore,
	ProvideConversationService,
	ProvideCallStore,
	ProvideJanitor,
	ProvideAnalyticsService,
	ProvideGroqClient,
	ProvideSarvamClient,
	ProvideTwilioClient,
	ProvideAuthValidator,

	// Domain providers
	ProvideCoordinator,
	ProvideReconciler,
	ProvideAssistant,
	ProvideMessaging,
	ProvideTextGenerator,

	// Interface providers
	interfaces.InterfacesProvider,

	// Application
	NewApplication,
)

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
