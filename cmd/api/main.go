package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopcore/internal/config"
	"shopcore/internal/database"
	"shopcore/internal/dedup"
	"shopcore/internal/events"
	"shopcore/internal/gateway"
	"shopcore/internal/handler"
	"shopcore/internal/metrics"
	"shopcore/internal/notification"
	"shopcore/internal/repository"
	"shopcore/internal/router"
	"shopcore/internal/service"
	"shopcore/internal/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
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
	logger.Info().Msg("starting shopcore API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	txr := repository.NewTransactor(pool, logger)
	customerRepo := repository.NewCustomerRepository(logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	webhookEventRepo := repository.NewWebhookEventRepository(logger)

	emitter, err := newEmitter(ctx, cfg, m, logger)
	if err != nil {
		return err
	}
	defer emitter.Close()

	publisher := newPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	dedupStore := dedup.NewNopStore()
	if cfg.Redis.Addr != "" {
		rdb := dedup.NewClient(cfg.Redis.Addr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, webhook dedup falls back to the database")
		}
		dedupStore = dedup.NewRedisStore(rdb, "webhook")
	}

	gw := gateway.NewStripeGateway(gateway.StripeConfig{
		SecretKey:     cfg.Payment.SecretKey,
		WebhookSecret: cfg.Payment.WebhookSecret,
		Timeout:       cfg.Payment.Timeout,
	}, logger)

	// Initialize services
	validator := validation.New()
	ledger := service.NewPaymentLedger(paymentRepo, orderRepo, logger)
	cartService := service.NewCartService(txr, cartRepo, productRepo, validator, logger)
	checkoutService := service.NewCheckoutService(
		txr,
		service.NewIdentityResolver(customerRepo, validator, logger),
		service.NewMaterializer(cartRepo, productRepo),
		orderRepo,
		ledger,
		emitter,
		publisher,
		validator,
		m,
		logger,
	)
	paymentService := service.NewPaymentService(
		txr,
		orderRepo,
		paymentRepo,
		ledger,
		gw,
		service.IntentOptions{Currency: cfg.Payment.Currency, MinAmountMinor: cfg.Payment.MinAmountMinor},
		m,
		logger,
	)
	webhookService := service.NewWebhookService(
		txr,
		gw,
		paymentRepo,
		orderRepo,
		customerRepo,
		webhookEventRepo,
		dedupStore,
		emitter,
		publisher,
		m,
		logger,
	)
	orderService := service.NewOrderService(orderRepo, paymentRepo, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Payment:  handler.NewPaymentHandler(paymentService, webhookService, validator, logger),
	}, cfg.Auth.APIKey, m, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.Payment.Timeout,
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

// newEmitter loads the notification templates (S3 with local fallback when
// enabled) and starts the emitter on the SMTP or log transport.
func newEmitter(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*notification.Emitter, error) {
	fileLoader := notification.NewFileLoader(cfg.Notification.TemplatesDir, logger)

	var s3Loader notification.Loader
	if cfg.S3.Enabled {
		l, err := notification.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	} else {
		logger.Info().Msg("using local file system for notification templates (S3 disabled)")
	}

	templates, err := notification.LoadTemplates(ctx, notification.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, logger), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification templates: %w", err)
	}

	var transport notification.Transport
	if cfg.Notification.SMTPHost != "" {
		transport = notification.NewSMTPTransport(notification.SMTPConfig{
			Host:     cfg.Notification.SMTPHost,
			Port:     cfg.Notification.SMTPPort,
			Username: cfg.Notification.SMTPUsername,
			Password: cfg.Notification.SMTPPassword,
			From:     cfg.Notification.From,
			Timeout:  10 * time.Second,
		}, logger)
	} else {
		logger.Info().Msg("SMTP not configured, notifications are logged only")
		transport = notification.NewLogTransport(logger)
	}

	opts := notification.DefaultEmitterOptions()
	opts.Workers = cfg.Notification.Workers
	opts.QueueSize = cfg.Notification.QueueSize

	return notification.NewEmitter(transport, templates, m, opts, logger), nil
}

// newPublisher returns the Kafka publisher, or a no-op one when no brokers
// are configured.
func newPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info().Msg("kafka not configured, domain events are not published")
		return events.NewNopPublisher()
	}
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, 256, logger)
}
