package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendwatch/internal/amqp"
	"spendwatch/internal/cli"
	"spendwatch/internal/log"
	"spendwatch/internal/worker"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger := cli.SetupLogger(cfg, log.ComponentWorker, os.Stdout)
	logger.Info("Starting alert-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	alerts := worker.NewAlertWorker(worker.MultiNotifier{
		worker.LogNotifier{Logger: logger.Logger},
		&worker.WriterNotifier{W: os.Stdout},
	})

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, client.Close)

	go func() {
		logger.Info("Consuming budget alerts", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		err := client.ConsumeWithReconnect(ctx, alerts.HandleBudgetAlert)
		switch {
		case errors.Is(err, context.Canceled):
		case err != nil:
			logger.Error("Alert consumption stopped", log.FieldError, err)
			os.Exit(1)
		default:
			logger.Warn("Alert consumption ended, waiting for shutdown signal")
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
