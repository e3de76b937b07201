package main

import (
	"os"
	"time"

	"conti/internal/amqp"
	"conti/internal/cli"
	"conti/internal/config"
	"conti/internal/log"
	"conti/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store, cleanup := cli.OpenBackend(logger, cfg)
	defer cleanup()

	// Publishing is optional: without a broker reminders still land in
	// the alerts table, they just never reach the notifier.
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
		logger.Info("AMQP disabled - reminders will not be published")
	}
	var events services.EventPublisher
	if amqpClient != nil {
		events = amqpClient
	}

	rules, err := config.LoadAlertRules(cfg.AlertRulesPath)
	if err != nil {
		logger.Error("Failed to load alert rules", "error", err, "path", cfg.AlertRulesPath)
		os.Exit(1)
	}

	alertSvc := services.NewAlertService(store, store, store, store, rules, events)
	processor := services.NewReminderProcessor(store, store, alertSvc, events)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	sweep := func(now time.Time) {
		stats, err := processor.Sweep(ctx, now)
		if err != nil {
			logger.Error("Reminder sweep failed", "error", err)
			return
		}
		logger.Info("Reminder sweep complete",
			"reminders", stats.Reminders,
			"overdue", stats.Overdue,
			"advanced", stats.Advanced,
			"generated", stats.Generated,
			"cleaned_up", stats.CleanedUp,
			"next_check", now.Add(cfg.ReminderInterval).Format("15:04:05"))
	}

	logger.Info("Reminder processor configured",
		"interval", cfg.ReminderInterval,
		"backend", cfg.DataBackend)

	// Run initial sweep on startup
	sweep(time.Now())

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sweep(now)
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Reminder-worker stopped gracefully")
}
