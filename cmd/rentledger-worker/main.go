package main

import (
	"context"
	"os"
	"time"

	"rentledger/internal/cli"
	"rentledger/internal/log"
	"rentledger/internal/sheets"
	gsheet "rentledger/internal/sheets/google"
	"rentledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting rentledger-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the payment worker")
		os.Exit(1)
	}

	be := cli.OpenBackend(context.Background(), logger, cfg)
	if be.AMQP == nil {
		logger.Error("Payment event broker unavailable")
		_ = be.Cleanup()
		os.Exit(1)
	}

	var exporter sheets.PaymentExporter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetBase:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			_ = be.Cleanup()
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	w := worker.NewPaymentWorker(be.Store, exporter)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	// repair rows missed while the worker was down
	year := time.Now().Year()
	if n, err := w.ReconcileYear(ctx, year); err != nil {
		logger.Error("Startup reconciliation incomplete", log.FieldError, err, "year", year, "exported", n)
	} else if n > 0 {
		logger.Info("Startup reconciliation finished", "year", year, "exported", n)
	}

	if err := w.Run(ctx, be.AMQP); err != nil {
		logger.Error("Event consumption failed", log.FieldError, err)
		_ = be.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
