// Package api provides the HTTP API server and handlers for BookVault.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookvault/bookvault-server/internal/auth"
	"github.com/bookvault/bookvault-server/internal/logger"
	"github.com/bookvault/bookvault-server/internal/ratelimit"
	"github.com/bookvault/bookvault-server/internal/store"
)

// Options holds transport settings that come from configuration.
type Options struct {
	Version        string
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         store.Store
	services      *Services
	verifier      *auth.Verifier
	upvoteLimiter *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	services *Services,
	verifier *auth.Verifier,
	upvoteLimiter *ratelimit.KeyedRateLimiter,
	opts Options,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:         st,
		services:      services,
		verifier:      verifier,
		upvoteLimiter: upvoteLimiter,
		router:        chi.NewRouter(),
		logger:        logger,
	}

	s.setupMiddleware(opts.AllowedOrigins)

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	humaConfig := huma.DefaultConfig("BookVault API", version)
	humaConfig.Info.Description = "Book tracking: shelves, upvotes and reviews."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Firebase ID token",
		},
	}

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(logger)
	s.api.UseMiddleware(s.authenticate)

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the chi middleware stack.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.Middleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))
}

// bearerSecurity marks an operation as requiring a Firebase ID token.
var bearerSecurity = []map[string][]string{{"bearer": {}}}

// optionalBearerSecurity documents that a token is accepted but not required.
var optionalBearerSecurity = []map[string][]string{{"bearer": {}}, {}}
