package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-engine/internal/catalog"
	"checkout-engine/internal/config"
	"checkout-engine/internal/database"
	"checkout-engine/internal/fulfillment"
	"checkout-engine/internal/handler"
	"checkout-engine/internal/metrics"
	"checkout-engine/internal/middleware"
	"checkout-engine/internal/payment"
	"checkout-engine/internal/pricing"
	"checkout-engine/internal/repository"
	"checkout-engine/internal/router"
	"checkout-engine/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterMaxIdle       = 30 * time.Minute
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
	logger.Info().Msg("starting checkout engine API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Quantity rules come from S3 with a local fallback, or the built-in table
	rules := pricing.LoadOrDefault(ctx, newRuleLoader(ctx, cfg, logger), cfg.Pricing.RulesPath, logger)
	logger.Info().Int("quantity_rules", rules.Len()).Msg("pricing rules ready")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize services
	checkoutService := service.NewCheckoutService(
		catalog.NewLoader(catalogRepo, cfg.Checkout.CourseFetchConcurrency, logger),
		pricing.NewResolver(rules, logger),
		fulfillment.NewResolver(),
		customerRepo,
		orderRepo,
		payment.NewHTTPGateway(cfg.Payment, logger),
		cfg.Checkout,
		m,
		logger,
	)
	orderService := service.NewOrderService(orderRepo, logger)

	// Per-IP rate limiting for checkout
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, m, logger)
	go sweepLimiters(ctx, limiter, logger)

	// Initialize router
	mux := router.New(router.Dependencies{
		Checkout:    handler.NewCheckoutHandler(checkoutService, logger),
		Orders:      handler.NewOrderHandler(orderService, checkoutService, logger),
		RateLimiter: limiter,
		Metrics:     m,
		Gatherer:    registry,
		APIKey:      cfg.Auth.APIKey,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.Payment.Timeout,
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

// newRuleLoader builds the quantity rule loader: S3 first when enabled, local file otherwise.
func newRuleLoader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) pricing.RuleLoader {
	fileLoader := pricing.NewFileLoader(logger)
	if !cfg.S3.Enabled {
		logger.Info().Msg("using local file system for pricing rules (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := pricing.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}

	return pricing.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
}

func sweepLimiters(ctx context.Context, limiter *middleware.RateLimiter, logger zerolog.Logger) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(limiterMaxIdle); n > 0 {
				logger.Debug().Int("removed", n).Msg("swept idle rate limiters")
			}
		}
	}
}
