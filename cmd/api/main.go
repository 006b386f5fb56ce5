package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/admin"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/alert"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/api"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/app"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/config"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Rollcall API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("storage", cfg.StorageDriver),
		slog.String("provider", cfg.ProviderType),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// Background workers stop with ctx
	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	wg.Add(3)
	go func() {
		defer wg.Done()
		a.Hub.Run(workerCtx)
	}()
	go func() {
		defer wg.Done()
		alert.NewWorker(a.Alerts, a.Notifier, logger, cfg.AlertInterval, cfg.AlertNotifyCooldown).Start(workerCtx)
	}()
	go func() {
		defer wg.Done()
		webhook.NewWorker(a.Webhooks, logger, 0).Run(workerCtx)
	}()

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Employees:   a.Employees,
		Faces:       a.Faces,
		Attendance:  a.Attendance,
		Performance: a.Performance,
		Stats:       a.Performance,
		Alerts:      a.Alerts,
		Hub:         a.Hub,
		Tokens:      admin.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		Audit:       a.Audit,
		Metrics:     a.Metrics,
		Gatherer:    a.Registry,
		Ping:        a.Ping,
		RateLimit:   cfg.RateLimitPerMinute,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	cancelWorkers()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn("workers did not stop in time")
	}

	logger.Info("server stopped")
	return nil
}
