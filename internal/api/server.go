// Package api provides the HTTP API server and handlers for the book catalog.
package api

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/bookcatalog/internal/metrics"
	"github.com/listenupapp/bookcatalog/internal/ratelimit"
	"github.com/listenupapp/bookcatalog/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins   []string
	MaxUploadSize int64
	// RateLimiter limits /api/v1 requests per client IP. Nil disables limiting.
	RateLimiter *ratelimit.KeyedRateLimiter
	// TrustedProxies are the peers whose X-Forwarded-For and X-Real-IP
	// headers name the client.
	TrustedProxies []netip.Prefix
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	router   *chi.Mux
	api      huma.API
	opts     Options
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}

	s := &Server{
		store:    st,
		services: services,
		router:   chi.NewRouter(),
		opts:     opts,
		logger:   logger,
	}

	// chi requires every middleware before the first route.
	s.setupMiddleware()

	s.api = humachi.New(s.router, newHumaConfig())
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation and tests.
func (s *Server) API() huma.API {
	return s.api
}

func newHumaConfig() huma.Config {
	config := huma.DefaultConfig("Book Catalog API", "1.0.0")
	config.Info.Description = "Catalog of books and authors with per-user view history and recommendations."
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	return config
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(metricsMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID", "X-Total-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(middleware.Compress(5))
	if s.opts.RateLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.opts.RateLimiter, apiPrefix, s.opts.TrustedProxies, s.logger))
	}
	s.router.Use(authMiddleware(s.services.Auth))
}

// setupRoutes registers every operation. Form and multipart endpoints are
// plain chi handlers; everything else goes through huma.
func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", metrics.Handler())

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerTransferRoutes()
	s.registerRecommendationRoutes()
}
