// Package rest wires the HTTP surface: embed issuance and revocation for
// administrative callers, the token-bound proxy and viewer pages for embeds.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appembed "embedgraph-backend/application/embed"
	"embedgraph-backend/interfaces/http/rest/handlers"
	"embedgraph-backend/interfaces/http/rest/middleware"
	"embedgraph-backend/pkg/auth"
)

// Options carries the router's cross-cutting configuration.
type Options struct {
	AllowedOrigins  []string
	ProxyRatePerMin int
	JWTValidator    *auth.JWTValidator
	HealthChecks    handlers.HealthChecks
}

// Router creates and configures the HTTP router
type Router struct {
	service *appembed.Service
	logger  *zap.Logger
	opts    Options
}

// NewRouter creates a new router instance
func NewRouter(service *appembed.Service, logger *zap.Logger, opts Options) *Router {
	return &Router{
		service: service,
		logger:  logger,
		opts:    opts,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration. Embeds live on arbitrary origins, so the proxy
	// and viewer stay open; only the admin routes carry credentials.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	healthHandler := handlers.NewHealthHandler(rt.opts.HealthChecks, rt.logger)
	router.Get("/health", healthHandler.Health)

	// Administrative routes
	router.Route("/api/embed", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.opts.JWTValidator, rt.logger))

		embedHandler := handlers.NewEmbedHandler(rt.service, rt.logger)
		r.Post("/", embedHandler.CreateEmbed)
		r.Delete("/{token}", embedHandler.RevokeEmbed)
	})

	// Token-bound proxy, called by embed pages without credentials
	router.Route("/api/proxy", func(r chi.Router) {
		limiter := auth.NewIPRateLimiter(rt.opts.ProxyRatePerMin)
		r.Use(middleware.RateLimitByIP(limiter, rt.opts.ProxyRatePerMin))

		proxyHandler := handlers.NewProxyHandler(rt.service, rt.logger)
		r.Post("/query", proxyHandler.Query)
	})

	// Standalone viewer page
	viewHandler := handlers.NewViewHandler(rt.service, rt.logger)
	router.Get("/view/{token}", viewHandler.View)

	return router
}
