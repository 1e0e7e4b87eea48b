package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/logger"
	"github.com/linkcardapp/linkcard-server/internal/sse"
	"github.com/linkcardapp/linkcard-server/internal/templates"
)

// TemplateRegistryHandle wraps the template registry and its file watcher.
type TemplateRegistryHandle struct {
	Registry *templates.Registry
	cancel   context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *TemplateRegistryHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideTemplateRegistry provides the card template registry. When a
// templates directory is configured its files are watched for changes,
// and connected editors are notified over SSE on reload.
func ProvideTemplateRegistry(i do.Injector) (*TemplateRegistryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	registry, err := templates.NewRegistry(cfg.Templates.Dir, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load template registry: %w", err)
	}

	registry.OnReload = func(count int) {
		sseHandle.Manager.Emit(sse.NewTemplatesReloadedEvent(count))
	}

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Templates.Dir != "" {
		go func() {
			if err := registry.Watch(ctx); err != nil && ctx.Err() == nil {
				log.Error("Template watcher stopped", "error", err)
			}
		}()
	}

	log.Info("Template registry loaded",
		"templates", registry.Count(),
		"dir", cfg.Templates.Dir,
	)

	return &TemplateRegistryHandle{Registry: registry, cancel: cancel}, nil
}
