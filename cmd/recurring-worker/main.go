package main

import (
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"hustleledger/internal/cli"
	"hustleledger/internal/log"
	"hustleledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, os.Stdout)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	app, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer app.Close()

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"backend", cfg.DataBackend,
		"timezone", cfg.Location().String(),
		"amqp_enabled", cfg.AMQPEnabled())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.NewRecurringWorker(app.Processor, cfg.RecurringInterval, logger).Run(gctx)
	})
	g.Go(func() error {
		// Keeps the preference cache from holding expired entries.
		app.Caches.Run(gctx, time.Minute)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Recurring worker failed", log.FieldError, err)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker shutdown complete")
}
