package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/api"
	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/logger"
	"github.com/linkcardapp/linkcard-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server, started in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	profileHandle := do.MustInvoke[*ProfileStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	registryHandle := do.MustInvoke[*TemplateRegistryHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	authService := do.MustInvoke[*service.AuthService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	cardHandle := do.MustInvoke[*CardServiceHandle](i)
	analyticsHandle := do.MustInvoke[*AnalyticsServiceHandle](i)
	uploadService := do.MustInvoke[*service.UploadService](i)
	importService := do.MustInvoke[*service.ImportService](i)
	domainService := do.MustInvoke[*service.DomainService](i)

	services := &api.Services{
		Auth:      authService,
		Session:   sessionService,
		Card:      cardHandle.CardService,
		Analytics: analyticsHandle.AnalyticsService,
		Upload:    uploadService,
		Import:    importService,
		Domain:    domainService,
		Search:    searchHandle.Index,
		Templates: registryHandle.Registry,
	}

	handler := api.NewServer(
		cfg,
		storeHandle.Store,
		profileHandle.Store,
		services,
		sseHandle.Manager,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
