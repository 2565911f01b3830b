package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/smartwealth/internal/adapter/http"
	"github.com/iho/smartwealth/internal/adapter/gemini"
	"github.com/iho/smartwealth/internal/adapter/http/handler"
	"github.com/iho/smartwealth/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/smartwealth/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/smartwealth/internal/adapter/repository/redis"
	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/auth"
	"github.com/iho/smartwealth/internal/infrastructure/config"
	"github.com/iho/smartwealth/internal/infrastructure/eventpublisher"
	"github.com/iho/smartwealth/internal/infrastructure/logger"
	"github.com/iho/smartwealth/internal/infrastructure/metrics"
	"github.com/iho/smartwealth/internal/infrastructure/postgres"
	"github.com/iho/smartwealth/internal/infrastructure/redis"
	"github.com/iho/smartwealth/internal/infrastructure/scheduler"
	"github.com/iho/smartwealth/internal/usecase"
)

// Per-IP limiters idle for longer than limiterMaxIdle are dropped.
const (
	limiterMaxIdle         = 10 * time.Minute
	limiterCleanupSchedule = "@every 5m"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Schema
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, appLogger); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Initialize repositories
	var outboxRepo usecase.OutboxRepository = postgresRepo.NewNullOutboxRepository()
	if cfg.StreamEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}
	store := usecase.Store{
		TxManager:    postgresRepo.NewTxManager(pool),
		Accounts:     postgresRepo.NewAccountRepository(pool),
		Transactions: postgresRepo.NewTransactionRepository(pool),
		Stocks:       postgresRepo.NewStockRepository(pool),
		Users:        postgresRepo.NewUserRepository(pool),
		Outbox:       outboxRepo,
		IDGen:        postgresRepo.NewULIDGenerator(),
		Retrier:      postgresRepo.NewRetrier(appLogger),
	}
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	recordCache := usecase.NewRecordCache(redisRepo.NewCache(redisClient), cfg.CacheTTL, m, appLogger)

	// Gemini
	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	}, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gemini client")
	}
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, advice and price refresh use offline fallbacks")
	}

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(store, recordCache, m)
	transactionUC := usecase.NewTransactionUseCase(store, recordCache, m)
	stockUC := usecase.NewStockUseCase(store, recordCache, geminiClient, m, appLogger)
	dashboardUC := usecase.NewDashboardUseCase(store, recordCache, geminiClient, m, cfg.TrendMonths)
	reconciliationUC := usecase.NewReconciliationUseCase(store)
	seedUC := usecase.NewSeedUseCase(store, recordCache, cfg.SeedDemoData, m, appLogger)
	userUC := usecase.NewUserUseCase(store.Users, store.IDGen, m)

	// Authentication
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	authenticator, err := newAuthenticator(ctx, cfg, jwtManager, userUC, seedUC, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare authentication")
	}
	rateLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, m)

	// Change stream
	var (
		streamHandler *handler.StreamHandler
		purger        OutboxPurger
	)
	if cfg.StreamEnabled {
		feed := redisRepo.NewChangeFeed(redisClient, appLogger)
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  eventpublisher.NewFeedPublisher(feed),
			Logger:     appLogger,
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
		})
		go func() {
			if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()

		streamHandler = handler.NewStreamHandler(feed, handler.StreamSources{
			Accounts:     accountUC,
			Transactions: transactionUC,
			Stocks:       stockUC,
			Dashboard:    dashboardUC,
		}, m, appLogger, handler.DefaultStreamHeartbeat)
		purger = publisher
	}

	// Background jobs
	jobs := scheduler.New(appLogger, cfg.JobTimeout)
	for _, job := range backgroundJobs(cfg, stockUC, purger, rateLimiter) {
		if err := jobs.Add(job.name, job.spec, job.run); err != nil {
			log.Fatal().Err(err).Str("job", job.name).Msg("failed to schedule job")
		}
	}
	jobs.Start()
	defer jobs.Stop()

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		TransactionHandler:    handler.NewTransactionHandler(transactionUC),
		StockHandler:          handler.NewStockHandler(stockUC),
		DashboardHandler:      handler.NewDashboardHandler(dashboardUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		StreamHandler:         streamHandler,
		AuthHandler:           handler.NewAuthHandler(userUC, seedUC, jwtManager, appLogger),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		Authenticator:         authenticator,
		PasswordAuth:          cfg.AuthEnabled,
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           rateLimiter,
		Metrics:               m,
		MetricsHandler:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Logger:                appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Bool("auth_enabled", cfg.AuthEnabled).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// UserEnsurer creates a user with a fixed ID on first use.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, id, email, name string) (*domain.User, error)
}

// newAuthenticator returns the middleware resolving the caller of protected
// routes. Without password auth the configured static user is created and
// seeded up front and every request acts as that user.
func newAuthenticator(
	ctx context.Context,
	cfg *config.Config,
	jwtManager *auth.JWTManager,
	users UserEnsurer,
	seeder handler.Seeder,
	m *metrics.Metrics,
) (func(http.Handler) http.Handler, error) {
	if cfg.AuthEnabled {
		return middleware.AuthMiddleware(jwtManager, m), nil
	}

	user, err := users.EnsureUser(ctx, cfg.StaticUserID, cfg.StaticUserEmail, cfg.StaticUserName)
	if err != nil {
		return nil, fmt.Errorf("ensure static user: %w", err)
	}
	if seeded, err := seeder.SeedIfNeeded(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("demo seeding failed")
	} else if seeded {
		log.Info().Str("user_id", user.ID).Msg("demo ledger written")
	}

	return middleware.StaticUser(user), nil
}

// PriceRefresher refreshes the quotes of every stock holder.
type PriceRefresher interface {
	RefreshAllPrices(ctx context.Context) error
}

// OutboxPurger drops delivered change events.
type OutboxPurger interface {
	Purge(ctx context.Context, retention time.Duration) error
}

type namedJob struct {
	name string
	spec string
	run  scheduler.Job
}

// backgroundJobs lists the periodic jobs. A nil purger leaves the outbox
// purge out; an empty spec disables a job.
func backgroundJobs(cfg *config.Config, prices PriceRefresher, purger OutboxPurger, limiter *middleware.RateLimiter) []namedJob {
	jobs := []namedJob{
		{
			name: "price_refresh",
			spec: cfg.PriceRefreshSchedule,
			run:  prices.RefreshAllPrices,
		},
		{
			name: "rate_limiter_cleanup",
			spec: limiterCleanupSchedule,
			run: func(context.Context) error {
				if n := limiter.CleanupLimiters(limiterMaxIdle); n > 0 {
					log.Debug().Int("removed", n).Msg("idle rate limiters removed")
				}
				return nil
			},
		},
	}

	if purger != nil {
		jobs = append(jobs, namedJob{
			name: "outbox_purge",
			spec: cfg.OutboxPurgeSchedule,
			run: func(ctx context.Context) error {
				return purger.Purge(ctx, cfg.OutboxRetention)
			},
		})
	}

	return jobs
}
