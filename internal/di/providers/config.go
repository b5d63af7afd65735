// Package providers contains dependency injection providers for the BookVault server.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/bookvault/bookvault-server/internal/config"
	"github.com/bookvault/bookvault-server/internal/logger"
)

// ProvideConfig provides the application configuration from the process
// arguments, environment and .env file.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load(os.Args[1:])
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting BookVault Server",
		"version", Version,
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"store", cfg.Store.Driver,
	)

	return log, nil
}
