package main

import (
	"context"
	"os"
	"time"

	"rentledger/internal/adapters"
	"rentledger/internal/amqp"
	"rentledger/internal/cli"
	"rentledger/internal/log"
	"rentledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentReminder)
	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	policy, err := services.GetReminderPolicy(cfg.ReminderPolicy, cfg.ReminderGraceDays)
	if err != nil {
		logger.Error("Invalid reminder policy", log.FieldError, err)
		os.Exit(1)
	}

	be := cli.OpenBackend(context.Background(), logger, cfg)

	var (
		publisher      services.ReminderPublisher
		reminderClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		reminderClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.ReminderQueue)
		if err != nil {
			logger.Error("Failed to initialize reminder queue client", log.FieldError, err)
			_ = be.Cleanup()
			os.Exit(1)
		}
		publisher = adapters.NewReminderPublisher(reminderClient)
	} else {
		logger.Info("AMQP disabled, reminders will only be logged")
		publisher = adapters.NewLogReminderPublisher(logger)
	}

	processor := services.NewReminderProcessor(be.Store, publisher, policy, cfg.ReminderInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Error("Failed to stop reminder processor", log.FieldError, err)
		}
		if reminderClient != nil {
			_ = reminderClient.Close()
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start reminder processor", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Reminder processor running",
		"policy", cfg.ReminderPolicy,
		"grace_days", cfg.ReminderGraceDays,
		"interval", cfg.ReminderInterval)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Reminder worker stopped")
}
