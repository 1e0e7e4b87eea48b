package providers

import (
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/logger"
	"github.com/linkcardapp/linkcard-server/internal/search"
)

// SearchIndexHandle wraps the Bleve directory index with Shutdownable.
type SearchIndexHandle struct {
	Index *search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Index.Close()
}

// ProvideSearchIndex provides the Bleve index backing the public directory.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(cfg.Data.BasePath, "search"),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open directory index: %w", err)
	}

	return &SearchIndexHandle{Index: index}, nil
}
