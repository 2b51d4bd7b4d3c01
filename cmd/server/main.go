package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/otc/internal/config"
	"github.com/JonMunkholm/otc/internal/core"
	"github.com/JonMunkholm/otc/internal/database"
	"github.com/JonMunkholm/otc/internal/logging"
	"github.com/JonMunkholm/otc/internal/web"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closer := logging.Setup(cfg.Logging)
	defer closer.Close()

	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_batch_size", cfg.Import.BatchSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"analytics_refresh_interval", cfg.Analytics.RefreshInterval,
	)

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		logger.Info("connected to database", "host", u.Hostname(), "name", strings.TrimPrefix(u.Path, "/"))
	}

	service := core.NewService(pool, core.Options{
		MaxFileSize:    cfg.Import.MaxFileSize,
		BatchSize:      cfg.Import.BatchSize,
		BatchPause:     cfg.Import.BatchPause,
		MaxConcurrent:  cfg.Import.MaxConcurrent,
		MaxWait:        cfg.Import.MaxWaitTime,
		ImportTimeout:  cfg.Import.Timeout,
		RefreshTimeout: cfg.Analytics.RefreshTimeout,
	})

	server := web.NewServer(service, cfg, pool.Ping)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartViewRefreshScheduler(jobCtx, cfg.Analytics.RefreshInterval)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.ImportLimiterStatus(); status.Active > 0 {
			logger.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				logger.Warn("imports did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	logger.Info("server stopped")
}
