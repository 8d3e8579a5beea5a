package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"rentledger/internal/adapters"
	"rentledger/internal/cli"
	apphttp "rentledger/internal/http"
	"rentledger/internal/log"
	"rentledger/internal/services"
	"rentledger/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	verifier, err := session.NewVerifier(cfg.AuthJWTSecret, cfg.AdminUserIDs)
	if err != nil {
		logger.Error("Failed to initialize session verifier", log.FieldError, err)
		os.Exit(1)
	}

	be := cli.OpenBackend(context.Background(), logger, cfg)

	var notifier services.PaymentNotifier
	if be.AMQP != nil {
		notifier = adapters.NewPaymentNotifier(be.AMQP)
	} else {
		logger.Info("AMQP disabled, payment events will not be published")
	}

	ledger := services.NewLedgerService(be.Store, cfg.CacheTTL)
	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:             ledger,
		Payments:           services.NewPaymentService(be.Store, notifier, ledger),
		Property:           services.NewPropertyService(be.Store, ledger),
		Verifier:           verifier,
		Ready:              be.Ready,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting rentledger server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
