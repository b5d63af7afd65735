// Package di provides dependency injection configuration for the BookVault server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookvault/bookvault-server/internal/auth"
	"github.com/bookvault/bookvault-server/internal/config"
	"github.com/bookvault/bookvault-server/internal/di/providers"
	"github.com/bookvault/bookvault-server/internal/logger"
	"github.com/bookvault/bookvault-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideVerifier)

	// Business services
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideUpvoteLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Errors from providers (bad config,
// unreachable database) are returned instead of panicking.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*auth.Verifier](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*providers.UpvoteLimiterHandle](injector)

	// Server
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
