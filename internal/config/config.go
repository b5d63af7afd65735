// Package config provides application configuration management with support for
// command-line flags, environment variables, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// DefaultFirebaseCertsURL is where Google publishes the x509 certificates that
// sign Firebase ID tokens.
const DefaultFirebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Firebase  FirebaseConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        // default: 3000
	ReadTimeout    time.Duration // default: 15s
	WriteTimeout   time.Duration // default: 15s
	IdleTimeout    time.Duration // default: 60s
	AllowedOrigins []string      // CORS origins, default: *
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver     string // mongo or sqlite
	SQLitePath string // only for the sqlite driver
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI               string
	Database          string
	BooksCollection   string
	ReviewsCollection string
	ConnectTimeout    time.Duration
}

// FirebaseConfig holds identity provider settings for ID token verification.
type FirebaseConfig struct {
	ProjectID string
	CertsURL  string
}

// RateLimitConfig bounds anonymous mutation traffic per client IP.
type RateLimitConfig struct {
	UpvotesPerMinute int
	UpvoteBurst      int
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bookvault", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	port := fs.String("port", "", "Server port (default: 3000)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	driver := fs.String("store", "", "Store driver: mongo or sqlite (default: mongo)")
	sqlitePath := fs.String("sqlite-path", "", "Path to the sqlite database file")
	mongoURI := fs.String("mongo-uri", "", "MongoDB connection string")
	projectID := fs.String("firebase-project", "", "Firebase project id used to verify ID tokens")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env is fine; existing env vars are never overridden.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*port, "SERVER_PORT", getConfigValue("", "PORT", "3000")),
			AllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getConfigValue(*driver, "STORE_DRIVER", DriverMongo)),
			SQLitePath: getConfigValue(*sqlitePath, "SQLITE_PATH", ""),
		},
		Mongo: MongoConfig{
			URI:               getConfigValue(*mongoURI, "MONGO_URI", ""),
			Database:          getConfigValue("", "MONGO_DATABASE", "BookDB"),
			BooksCollection:   getConfigValue("", "MONGO_BOOKS_COLLECTION", "BooksInfo"),
			ReviewsCollection: getConfigValue("", "MONGO_REVIEWS_COLLECTION", "reviews"),
		},
		Firebase: FirebaseConfig{
			ProjectID: getConfigValue(*projectID, "FIREBASE_PROJECT_ID", ""),
			CertsURL:  getConfigValue("", "FIREBASE_CERTS_URL", DefaultFirebaseCertsURL),
		},
		RateLimit: RateLimitConfig{
			UpvotesPerMinute: getIntConfigValue("", "UPVOTE_RATE_PER_MINUTE", 30),
			UpvoteBurst:      getIntConfigValue("", "UPVOTE_BURST", 10),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dest      *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"", "MONGO_CONNECT_TIMEOUT", "10s", &cfg.Mongo.ConnectTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dest = parsed
	}

	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = buildMongoURI(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("MONGO_HOST"))
	}

	if err := cfg.expandSQLitePath(); err != nil {
		return nil, fmt.Errorf("invalid sqlite path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGO_URI (or DB_USER, DB_PASSWORD and MONGO_HOST) is required for the mongo store")
		}
		if c.Mongo.Database == "" {
			return errors.New("MONGO_DATABASE cannot be empty")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("sqlite path cannot be empty after expansion")
		}
	default:
		return fmt.Errorf("invalid store driver: %q (must be mongo or sqlite)", c.Store.Driver)
	}

	if c.Firebase.ProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}

	if c.RateLimit.UpvotesPerMinute <= 0 || c.RateLimit.UpvoteBurst <= 0 {
		return errors.New("upvote rate limit and burst must be positive")
	}

	return nil
}

// buildMongoURI assembles an Atlas SRV connection string from discrete
// credentials. Returns "" when any part is missing.
func buildMongoURI(user, password, host string) string {
	if user == "" || password == "" || host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, password),
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority&appName=bookvault",
	}
	return u.String()
}

// expandSQLitePath defaults the sqlite file to ~/.bookvault/bookvault.db and
// makes it absolute.
func (c *Config) expandSQLitePath() error {
	if c.Store.Driver != DriverSQLite {
		return nil
	}

	path := c.Store.SQLitePath
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.Store.SQLitePath = filepath.Join(homeDir, ".bookvault", "bookvault.db")
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	c.Store.SQLitePath = filepath.Clean(abs)
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue
	}
	return n
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
