// Package main provides the entry point for the LinkCard server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/di"
	"github.com/linkcardapp/linkcard-server/internal/di/providers"
	"github.com/linkcardapp/linkcard-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// Stores and the search index use wrapper handles, close them explicitly
	// in case container shutdown missed them
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		log.Info("Closing draft store...")
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close draft store", "error", err)
		}
	}

	if profileHandle, err := do.Invoke[*providers.ProfileStoreHandle](injector); err == nil {
		log.Info("Closing profile database...")
		if err := profileHandle.Shutdown(); err != nil {
			log.Error("Failed to close profile database", "error", err)
		}
	}

	if searchHandle, err := do.Invoke[*providers.SearchIndexHandle](injector); err == nil {
		log.Info("Closing directory index...")
		if err := searchHandle.Shutdown(); err != nil {
			log.Error("Failed to close directory index", "error", err)
		}
	}

	log.Info("Goodbye")
}
