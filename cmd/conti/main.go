package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conti/internal/amqp"
	"conti/internal/auth"
	"conti/internal/cache"
	"conti/internal/cardvault"
	"conti/internal/cli"
	"conti/internal/currency"
	"conti/internal/export"
	gsheet "conti/internal/export/google"
	apphttp "conti/internal/http"
	"conti/internal/log"
	"conti/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	logger.Info("Starting conti server")

	cfg := cli.LoadAndValidateConfig(logger)

	store, cleanup := cli.OpenBackend(logger, cfg)
	defer cleanup()

	// Publishing events is optional; the API keeps working without a
	// broker, it just stops feeding the workers.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - events will not be published")
	}
	var events services.EventPublisher
	if amqpClient != nil {
		events = amqpClient
	}

	// Google Sheets export is optional. A configured-but-broken setup
	// is a hard error; unconfigured just disables the sheets format.
	sheetsClient, err := gsheet.FromAppConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	var appender export.StatementAppender
	if sheetsClient != nil {
		appender = sheetsClient
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	vault, err := cardvault.New(cfg.CardVaultPath, logger.Logger)
	if err != nil {
		logger.Error("Failed to open card vault", "error", err, "path", cfg.CardVaultPath)
		os.Exit(1)
	}

	converter := currency.New(cfg.CurrencyAPIURL, logger.Logger)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	rewards := services.NewRewardService(store, store)
	dashboard := services.NewDashboardService(store, store, store, store, rewards, cfg.DashboardCacheTTL)

	caches := cache.NewManager()
	caches.Register(dashboard)
	caches.Register(converter)
	caches.StartCleanup(5 * time.Minute)
	defer caches.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:      services.NewAuthService(store, tokens),
		Tokens:    tokens,
		Dashboard: dashboard,
		Bills:     services.NewBillService(store, store, rewards, converter, events),
		Rewards:   rewards,
		Alerts:    services.NewAlertCoordinator(store, nil),
		Cards:     services.NewCardService(vault),
		Exports:   services.NewExportService(store, appender),

		Accounts:     store,
		Transactions: store,
		Budgets:      store,

		Logger:             logger.WithComponent(log.ComponentHTTP),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Listening", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
