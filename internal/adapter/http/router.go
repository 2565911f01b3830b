package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/smartwealth/internal/adapter/http/handler"
	"github.com/iho/smartwealth/internal/adapter/http/middleware"
	"github.com/iho/smartwealth/internal/infrastructure/metrics"
	"github.com/iho/smartwealth/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	TransactionHandler    *handler.TransactionHandler
	StockHandler          *handler.StockHandler
	DashboardHandler      *handler.DashboardHandler
	ReconciliationHandler *handler.ReconciliationHandler
	StreamHandler         *handler.StreamHandler
	AuthHandler           *handler.AuthHandler
	HealthHandler         *handler.HealthHandler

	// Authenticator resolves the caller of every /api/v1 route except
	// register and login: middleware.AuthMiddleware or middleware.StaticUser.
	Authenticator func(http.Handler) http.Handler
	// PasswordAuth exposes register and login.
	PasswordAuth bool

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	// RateLimiter throttles register and login.
	RateLimiter *middleware.RateLimiter

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.PasswordAuth {
			r.Group(func(r chi.Router) {
				if cfg.RateLimiter != nil {
					r.Use(cfg.RateLimiter.Limit)
				}
				r.Post("/auth/register", cfg.AuthHandler.Register)
				r.Post("/auth/login", cfg.AuthHandler.Login)
			})
		}

		r.Group(func(r chi.Router) {
			if cfg.Authenticator != nil {
				r.Use(cfg.Authenticator)
			}

			// Idempotency middleware for mutating requests; runs after
			// authentication so keys are scoped per user.
			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
				r.Use(idempotencyMiddleware.Wrap)
			}

			r.Get("/auth/me", cfg.AuthHandler.GetCurrentUser)

			// Accounts
			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.Create)
				r.Get("/", cfg.AccountHandler.List)
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Put("/{id}", cfg.AccountHandler.Replace)
				r.Delete("/{id}", cfg.AccountHandler.Delete)
			})

			// Income and expense
			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", cfg.TransactionHandler.Create)
				r.Get("/", cfg.TransactionHandler.List)
				r.Get("/{id}", cfg.TransactionHandler.Get)
				r.Delete("/{id}", cfg.TransactionHandler.Delete)
			})

			// Stock positions
			r.Route("/stocks", func(r chi.Router) {
				r.Post("/", cfg.StockHandler.Create)
				r.Get("/", cfg.StockHandler.List)
				r.Post("/refresh", cfg.StockHandler.Refresh)
				r.Get("/{id}", cfg.StockHandler.Get)
				r.Put("/{id}", cfg.StockHandler.Replace)
				r.Delete("/{id}", cfg.StockHandler.Delete)
				r.Put("/{id}/price", cfg.StockHandler.UpdatePrice)
			})

			// Derived views
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/summary", cfg.DashboardHandler.Summary)
				r.Get("/report", cfg.DashboardHandler.Report)
				r.Post("/advice", cfg.DashboardHandler.Advice)
			})
			r.Get("/categories", cfg.DashboardHandler.Categories)

			r.Get("/reconciliation", cfg.ReconciliationHandler.Report)
			r.Get("/reconciliation/{id}", cfg.ReconciliationHandler.Account)

			if cfg.StreamHandler != nil {
				r.Get("/stream", cfg.StreamHandler.Stream)
			}
		})
	})

	return r
}
