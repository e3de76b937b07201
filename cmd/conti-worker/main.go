package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"conti/internal/amqp"
	"conti/internal/cli"
	"conti/internal/log"
	"conti/internal/notify"
	"conti/internal/worker"
)

const dialAttempts = 10

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting conti-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Unlike the API server the worker is useless without a broker, so
	// it keeps dialing and gives up only after the attempt budget.
	client, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, dialAttempts)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.DeclareQueue(cfg.AMQPAlertsQueue, amqp.RouteAlertCreated); err != nil {
		logger.Error("Failed to declare alerts queue", "error", err, "queue", cfg.AMQPAlertsQueue)
		os.Exit(1)
	}
	if err := client.DeclareQueue(cfg.AMQPRemindersQueue, amqp.RouteBillReminder, amqp.RouteBillPaid); err != nil {
		logger.Error("Failed to declare reminders queue", "error", err, "queue", cfg.AMQPRemindersQueue)
		os.Exit(1)
	}

	telegram, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		logger.Error("Failed to connect Telegram notifier", "error", err)
		os.Exit(1)
	}
	var notifier worker.Notifier
	if telegram != nil {
		notifier = telegram
	} else {
		logger.Info("Telegram disabled - critical alerts stay in the log")
	}

	events := worker.NewEventWorker(logger, notifier)

	g, gctx := errgroup.WithContext(ctx)
	handle := events.Handler(gctx)
	for _, queue := range []string{cfg.AMQPAlertsQueue, cfg.AMQPRemindersQueue} {
		g.Go(func() error {
			return client.Consume(gctx, queue, handle)
		})
	}

	// Handle shutdown signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Consuming events",
		"alerts_queue", cfg.AMQPAlertsQueue,
		"reminders_queue", cfg.AMQPRemindersQueue)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
