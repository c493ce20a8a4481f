// Package web provides the JSON HTTP API for the country registry.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/countrymap/internal/config"
	"github.com/JonMunkholm/countrymap/internal/core"
	webmw "github.com/JonMunkholm/countrymap/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CountryService is the registry surface the handlers call.
// *core.Service implements it.
type CountryService interface {
	MergeCountries(ctx context.Context, entries []core.CountryEntry) (*core.MergeResult, error)
	MatchCountryNames(ctx context.Context, req core.MatchRequest) (*core.MatchResult, error)
	Stats(ctx context.Context) (core.Stats, error)
	WriteLimiterStatus() core.WriteLimiterStatus
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the registry API.
type Server struct {
	service CountryService
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
}

// NewServer creates a Server with its middleware chain and routes.
func NewServer(service CountryService, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	if s.cfg.Server.MaxBodyBytes > 0 {
		s.router.Use(middleware.RequestSize(s.cfg.Server.MaxBodyBytes))
	}

	s.router.Use(securityHeaders)

	if origins := s.cfg.Security.CORSOrigins; len(origins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	if s.cfg.Rate.Enabled && s.cfg.Rate.RequestsPerMinute > 0 {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/countries", s.handleMergeCountries)
		r.Post("/match_country", s.handleMatchCountry)
		r.Get("/stats", s.handleStats)
	})
}

// Start begins listening for HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
