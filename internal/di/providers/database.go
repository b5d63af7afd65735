package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bookvault/bookvault-server/internal/config"
	"github.com/bookvault/bookvault-server/internal/logger"
	"github.com/bookvault/bookvault-server/internal/store"
	"github.com/bookvault/bookvault-server/internal/store/mongodb"
	"github.com/bookvault/bookvault-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := OpenStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}
	return &StoreHandle{Store: st}, nil
}

// OpenStore opens the backend selected by cfg.Store.Driver. It is shared
// with the seed command.
func OpenStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		st, err := mongodb.Open(ctx, mongodb.Config{
			URI:               cfg.Mongo.URI,
			Database:          cfg.Mongo.Database,
			BooksCollection:   cfg.Mongo.BooksCollection,
			ReviewsCollection: cfg.Mongo.ReviewsCollection,
			ConnectTimeout:    cfg.Mongo.ConnectTimeout,
		}, log.Logger)
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o750); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		st, err := sqlite.Open(cfg.Store.SQLitePath, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "driver", cfg.Store.Driver, "path", cfg.Store.SQLitePath)
		return st, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
