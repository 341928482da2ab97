// Package main provides the entry point for the High Coherence review server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/Fachastorm/high-coherence/internal/di"
	"github.com/Fachastorm/high-coherence/internal/di/providers"
	"github.com/Fachastorm/high-coherence/internal/logger"
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

	// The storage handle is a wrapper type, close it explicitly
	if storage, err := do.Invoke[*providers.StorageHandle](injector); err == nil {
		if err := storage.Shutdown(); err != nil {
			log.Error("Failed to close store", "error", err)
		}
	}

	log.Info("Server stopped")
}
