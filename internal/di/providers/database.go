package providers

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/logger"
	"github.com/linkcardapp/linkcard-server/internal/sse"
	"github.com/linkcardapp/linkcard-server/internal/store"
	"github.com/linkcardapp/linkcard-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with lifecycle management.
type SSEManagerHandle struct {
	Manager *sse.Manager
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the SSE event manager, started in the background.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &SSEManagerHandle{Manager: manager, cancel: cancel}, nil
}

// StoreHandle wraps the BadgerDB draft store with Shutdownable.
type StoreHandle struct {
	Store *store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Store.Close()
}

// ProvideStore provides the BadgerDB store for drafts, users, and sessions.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "drafts.db")
	st, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open draft store: %w", err)
	}

	log.Info("Draft store opened", "path", dbPath)

	return &StoreHandle{Store: st}, nil
}

// ProfileStoreHandle wraps the SQLite profile database with Shutdownable.
type ProfileStoreHandle struct {
	Store *sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *ProfileStoreHandle) Shutdown() error {
	return h.Store.Close()
}

// ProvideProfileStore provides the SQLite database for published profiles
// and analytics events.
func ProvideProfileStore(i do.Injector) (*ProfileStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "profiles.db")
	st, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}

	log.Info("Profile database opened", "path", dbPath)

	return &ProfileStoreHandle{Store: st}, nil
}
