package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/auth"
	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/logger"
	"github.com/linkcardapp/linkcard-server/internal/media/audio"
	"github.com/linkcardapp/linkcard-server/internal/media/uploads"
	"github.com/linkcardapp/linkcard-server/internal/service"
)

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// CardServiceHandle wraps the card service with Shutdownable so pending
// debounced draft writes are flushed on exit.
type CardServiceHandle struct {
	*service.CardService
}

// Shutdown implements do.Shutdownable.
func (h *CardServiceHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideCardService provides the card document service.
func ProvideCardService(i do.Injector) (*CardServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	profileHandle := do.MustInvoke[*ProfileStoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	registryHandle := do.MustInvoke[*TemplateRegistryHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	cardService := service.NewCardService(
		storeHandle.Store,
		profileHandle.Store,
		searchHandle.Index,
		registryHandle.Registry,
		sseHandle.Manager,
		cfg.Server.PublicURL,
		cfg.Card.DraftDebounce,
		log.Logger,
	)

	return &CardServiceHandle{CardService: cardService}, nil
}

// AnalyticsServiceHandle wraps the analytics service with Shutdownable so
// buffered events are flushed on exit.
type AnalyticsServiceHandle struct {
	*service.AnalyticsService
}

// Shutdown implements do.Shutdownable.
func (h *AnalyticsServiceHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideAnalyticsService provides the analytics ingestion service,
// started in the background.
func ProvideAnalyticsService(i do.Injector) (*AnalyticsServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	profileHandle := do.MustInvoke[*ProfileStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	analyticsService := service.NewAnalyticsService(
		profileHandle.Store,
		cfg.Analytics.BufferSize,
		log.Logger,
	)
	analyticsService.Start()

	return &AnalyticsServiceHandle{AnalyticsService: analyticsService}, nil
}

// ProvideUploadService provides the media upload service.
func ProvideUploadService(i do.Injector) (*service.UploadService, error) {
	processor := do.MustInvoke[*uploads.Processor](i)
	storage := do.MustInvoke[*uploads.Storage](i)
	prober := do.MustInvoke[*audio.Prober](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUploadService(processor, storage, prober, log.Logger), nil
}

// ProvideImportService provides the HTML import service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	cardHandle := do.MustInvoke[*CardServiceHandle](i)
	fetcher := do.MustInvoke[*uploads.Fetcher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(cardHandle.CardService, fetcher, log.Logger), nil
}

// ProvideDomainService provides the custom-domain linking service.
func ProvideDomainService(i do.Injector) (*service.DomainService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	cardHandle := do.MustInvoke[*CardServiceHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDomainService(
		cardHandle.CardService,
		cfg.Domain.ProviderURL,
		cfg.Domain.ProviderToken,
		cfg.Domain.ProjectID,
		log.Logger,
	), nil
}

// TriggerDirectoryRebuildIfNeeded reindexes published profiles when the
// directory index is empty, covering index loss or first boot after an
// upgrade that introduced search.
func TriggerDirectoryRebuildIfNeeded(i do.Injector) {
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	cardHandle := do.MustInvoke[*CardServiceHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	count, err := searchHandle.Index.DocumentCount()
	if err != nil || count > 0 {
		return
	}

	go func() {
		if err := cardHandle.RebuildDirectory(context.Background()); err != nil {
			log.Error("Directory rebuild failed", "error", err)
		}
	}()
}
