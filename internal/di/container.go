// Package di provides dependency injection configuration for the LinkCard server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/auth"
	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/di/providers"
	"github.com/linkcardapp/linkcard-server/internal/logger"
	"github.com/linkcardapp/linkcard-server/internal/media/audio"
	"github.com/linkcardapp/linkcard-server/internal/media/uploads"
	"github.com/linkcardapp/linkcard-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideProfileStore)

	// Storage layer
	do.Provide(injector, providers.ProvideUploadStorage)
	do.Provide(injector, providers.ProvideUploadProcessor)
	do.Provide(injector, providers.ProvideUploadFetcher)
	do.Provide(injector, providers.ProvideAudioProber)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Templates
	do.Provide(injector, providers.ProvideTemplateRegistry)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideCardService)
	do.Provide(injector, providers.ProvideAnalyticsService)
	do.Provide(injector, providers.ProvideUploadService)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideDomainService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ProfileStoreHandle](injector)
	_ = do.MustInvoke[*uploads.Storage](injector)
	_ = do.MustInvoke[*uploads.Processor](injector)
	_ = do.MustInvoke[*uploads.Fetcher](injector)
	_ = do.MustInvoke[*audio.Prober](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*providers.TemplateRegistryHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*providers.CardServiceHandle](injector)
	_ = do.MustInvoke[*providers.AnalyticsServiceHandle](injector)
	_ = do.MustInvoke[*service.UploadService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)
	_ = do.MustInvoke[*service.DomainService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Reindex the public directory if the index was lost
	providers.TriggerDirectoryRebuildIfNeeded(injector)

	return nil
}
