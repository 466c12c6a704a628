package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobtrack/internal/cache"
	"jobtrack/internal/cli"
	apphttp "jobtrack/internal/http"
	applog "jobtrack/internal/log"
	"jobtrack/internal/receipts"
	"jobtrack/internal/report"
)

func main() {
	logger := cli.SetupLogger(slog.LevelInfo)
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg)
	defer repo.Close()
	logger.WithComponent(applog.ComponentStorage).Info("Database ready", "db_path", cfg.DBPath)

	store, err := receipts.NewStore(cfg.ReceiptDir)
	if err != nil {
		logger.Error("Failed to open receipt store", applog.FieldError, err, "dir", cfg.ReceiptDir)
		os.Exit(1)
	}

	engine := report.NewEngine(repo)

	srv := apphttp.NewServer(":"+cfg.Port, repo, engine, store, cfg.Categories)

	// Configure server timeouts and limits
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	caches := cache.NewManager()
	caches.Register(srv.SummaryCache())
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

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
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting jobtrack server", "port", cfg.Port, "cascade_delete", cfg.CascadeDelete)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
