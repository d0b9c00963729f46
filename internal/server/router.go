package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/storefront/storefront/internal/cache"
	"github.com/storefront/storefront/internal/config"
	"github.com/storefront/storefront/internal/handler"
	"github.com/storefront/storefront/internal/metrics"
	"github.com/storefront/storefront/internal/middleware"
	"github.com/storefront/storefront/internal/service"
	"github.com/storefront/storefront/internal/storage"
)

// Deps holds everything the router wires together.
// Cache may be nil, in which case rate limiting is off and /readyz reports
// redis as not configured.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *storage.Store
	Cache    *cache.Cache
	Auth     *service.AuthService
	Products *service.ProductService
	Metrics  metrics.Snapshotter
}

// Route is one entry of the API route table.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	// Protected routes require a valid bearer token.
	Protected bool
	// RateLimited routes are subject to the per-IP limiter.
	RateLimited bool
}

// Routes returns the API route table. Product mutations are public unless
// PROTECT_PRODUCT_MUTATIONS is set.
func Routes(d Deps) []Route {
	authHandler := handler.NewAuthHandler(d.Auth, d.Products, d.Logger)
	productHandler := handler.NewProductHandler(d.Products, d.Logger)
	protectMutations := d.Config.ProtectProductMutations

	return []Route{
		{Method: http.MethodPost, Pattern: "/register", Handler: authHandler.Register, RateLimited: true},
		{Method: http.MethodPost, Pattern: "/login", Handler: authHandler.Login, RateLimited: true},
		{Method: http.MethodGet, Pattern: "/dashboard", Handler: authHandler.Dashboard, Protected: true},
		{Method: http.MethodPost, Pattern: "/product", Handler: productHandler.Create, Protected: true},
		{Method: http.MethodGet, Pattern: "/product", Handler: productHandler.List},
		{Method: http.MethodGet, Pattern: "/product/{id}", Handler: productHandler.Get},
		{Method: http.MethodPatch, Pattern: "/product", Handler: productHandler.Update, Protected: protectMutations},
		{Method: http.MethodDelete, Pattern: "/product/{id}", Handler: productHandler.Delete, Protected: protectMutations},
	}
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(d Deps) *chi.Mux {
	cfg := d.Config
	logger := d.Logger

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}

	h := handler.New()

	// Health and metrics endpoints (no auth required)
	var storeChecker handler.StorageChecker
	if d.Store != nil {
		storeChecker = d.Store
	}
	var cacheChecker handler.HealthChecker
	if d.Cache != nil {
		cacheChecker = d.Cache
	}
	healthHandler := handler.NewHealthHandler(storeChecker, cacheChecker)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", handler.NewMetricsHandler(d.Metrics).Metrics)

	requireToken := middleware.Auth(middleware.AuthConfig{
		Logger:   logger,
		Verifier: d.Auth,
	})

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Enabled: cfg.RateLimitAuthEnabled,
		RPS:     cfg.RateLimitAuthRPS,
		Burst:   cfg.RateLimitAuthBurst,
	}
	if d.Cache != nil {
		rateLimitCfg.Limiter = d.Cache
	}
	limitByIP := middleware.RateLimitIP(rateLimitCfg)

	for _, route := range Routes(d) {
		var chain []func(http.Handler) http.Handler
		if route.RateLimited {
			chain = append(chain, limitByIP)
		}
		if route.Protected {
			chain = append(chain, requireToken)
		}
		r.With(chain...).Method(route.Method, route.Pattern, route.Handler)
	}

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
