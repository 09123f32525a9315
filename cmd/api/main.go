package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/backend"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	sessionPurgeInterval  = 10 * time.Minute
	checkoutSweepInterval = time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Str("backend", cfg.Backend.BaseURL).
		Str("contract", cfg.Backend.Contract).
		Str("session_store", cfg.Session.Store).
		Msg("starting storefront gateway")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.RequestTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize backend client: %w", err)
	}

	store, closeStore, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions := session.NewManager(store, cfg.Session.TTL, logger)
	registry := checkout.NewRegistry()
	sessions.OnEnd(registry.Drop)
	go sweepCheckouts(ctx, registry, logger)

	var (
		m        *metrics.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		m = metrics.New(reg)
		gatherer = reg
	}

	promos, err := coupon.NewCatalog(ctx, cfg.Promo.FilePaths, newPromoLoader(ctx, cfg, logger), logger)
	if err != nil {
		return fmt.Errorf("failed to load promo codes: %w", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("order events enabled")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Initialize services
	guard := service.NewSessionGuard(sessions, m, logger)
	authService := service.NewAuthService(client, sessions, logger)
	catalogService := service.NewCatalogService(client, guard, logger)
	cartService := service.NewCartService(client, guard, cfg.Backend.Contract, m, logger)
	checkoutService := service.NewCheckoutService(
		cartService, client, promos, registry, publisher, guard, m, cfg.Backend.CheckoutTimeout, logger,
	)
	adminService := service.NewAdminService(client, guard, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		Catalog:  handler.NewCatalogHandler(catalogService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Admin:    handler.NewAdminHandler(adminService, logger),
	}, router.Options{
		Sessions: sessions,
		Metrics:  m,
		Gatherer: gatherer,
	}, logger)

	// Create HTTP server. WriteTimeout leaves room for a checkout submission.
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.CheckoutTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newSessionStore opens the configured session store. The returned func
// releases its connections.
func newSessionStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.Store, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStorePostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.Migrate(pool, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		repo := repository.NewSessionRepository(pool, logger)
		go purgeExpiredSessions(ctx, repo, logger)
		return repo, pool.Close, nil

	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis session store connected")
		return repository.NewSessionCache(client, logger), func() { _ = client.Close() }, nil

	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}

// purgeExpiredSessions deletes expired rows until ctx is cancelled.
func purgeExpiredSessions(ctx context.Context, repo *repository.SessionRepository, logger zerolog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := repo.PurgeExpired(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to purge expired sessions")
			}
		}
	}
}

// sweepCheckouts removes the wizards of expired sessions until ctx is
// cancelled. Stores expire sessions without notifying the manager.
func sweepCheckouts(ctx context.Context, registry *checkout.Registry, logger zerolog.Logger) {
	ticker := time.NewTicker(checkoutSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := registry.Sweep(now); n > 0 {
				logger.Debug().Int("removed", n).Msg("swept checkouts of expired sessions")
			}
		}
	}
}

// newPromoLoader reads promo files from disk, trying S3 first when enabled.
func newPromoLoader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) coupon.Loader {
	fileLoader := coupon.NewFileLoader(logger)
	if !cfg.S3.Enabled {
		logger.Info().Msg("using local file system for promo files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}
	return coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, logger)
}
