// Package di provides dependency injection configuration for the review server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/Fachastorm/high-coherence/internal/config"
	"github.com/Fachastorm/high-coherence/internal/di/providers"
	"github.com/Fachastorm/high-coherence/internal/logger"
	"github.com/Fachastorm/high-coherence/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStorage)

	// Delivery
	do.Provide(injector, providers.ProvideNotifier)

	// Business services
	do.Provide(injector, providers.ProvideReviewService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StorageHandle](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
