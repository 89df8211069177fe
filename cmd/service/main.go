// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github-stars-snapshot/internal/api"
	"github-stars-snapshot/internal/config"
	"github-stars-snapshot/internal/database"
	"github-stars-snapshot/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration and initialize structured logger
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	if err := cfg.ValidateService(); err != nil {
		return err
	}
	logger.Info("Configuration loaded successfully")

	// 2. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 3. Initialize database connection
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	logger.Info("Database connection established")

	// 4. Serve the status API
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(database.New(dbpool), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 5. Wait for shutdown signal
	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received. Exiting.")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
