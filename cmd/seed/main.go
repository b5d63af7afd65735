// Package main provides a tool to load YAML fixtures into a BookVault store.
//
// Usage:
//
//	go run ./cmd/seed --store sqlite --sqlite-path ./bookvault.db
//	go run ./cmd/seed --store mongo --mongo-uri mongodb://localhost:27017 --reset
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookvault/bookvault-server/internal/config"
	"github.com/bookvault/bookvault-server/internal/di/providers"
	"github.com/bookvault/bookvault-server/internal/logger"
	"github.com/bookvault/bookvault-server/internal/seed"
)

var (
	storeDriver   string
	sqlitePath    string
	mongoURI      string
	mongoDatabase string
	fixturesPath  string
	logLevel      string
	reset         bool
	timeout       time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fixtures into a BookVault store",
	Long: `Load books and reviews from a YAML fixture file into the configured store.

Connection settings fall back to the same environment variables the server
reads (STORE_DRIVER, SQLITE_PATH, MONGO_URI, MONGO_DATABASE), including a .env
file in the working directory.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	_ = godotenv.Load()

	flags := rootCmd.Flags()
	flags.StringVar(&storeDriver, "store", envOr("STORE_DRIVER", config.DriverSQLite), "store driver: mongo or sqlite")
	flags.StringVar(&sqlitePath, "sqlite-path", envOr("SQLITE_PATH", "bookvault.db"), "sqlite database file")
	flags.StringVar(&mongoURI, "mongo-uri", os.Getenv("MONGO_URI"), "MongoDB connection string")
	flags.StringVar(&mongoDatabase, "mongo-database", envOr("MONGO_DATABASE", "BookDB"), "MongoDB database name")
	flags.StringVarP(&fixturesPath, "fixtures", "f", "fixtures/books.yaml", "fixture file")
	flags.StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level")
	flags.BoolVar(&reset, "reset", false, "delete all books and reviews first")
	flags.DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	log := logger.New(logger.Config{Level: logger.ParseLevel(logLevel)})

	fx, err := seed.LoadFile(fixturesPath)
	if err != nil {
		return err
	}

	cfg := &config.Config{
		Store: config.StoreConfig{Driver: storeDriver, SQLitePath: sqlitePath},
		Mongo: config.MongoConfig{
			URI:               mongoURI,
			Database:          mongoDatabase,
			BooksCollection:   envOr("MONGO_BOOKS_COLLECTION", "BooksInfo"),
			ReviewsCollection: envOr("MONGO_REVIEWS_COLLECTION", "reviews"),
			ConnectTimeout:    10 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	st, err := providers.OpenStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	sum, err := seed.Apply(ctx, st, fx, seed.Options{Reset: reset}, log.Logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d books and %d reviews from %s\n", sum.Books, sum.Reviews, fixturesPath)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
