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

	"github.com/JonMunkholm/countrymap/internal/config"
	"github.com/JonMunkholm/countrymap/internal/core"
	"github.com/JonMunkholm/countrymap/internal/database"
	"github.com/JonMunkholm/countrymap/internal/logging"
	"github.com/JonMunkholm/countrymap/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"env", cfg.App.Env,
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"merge_max_concurrent", cfg.Merge.MaxConcurrent,
		"cache_ttl", cfg.Cache.TTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	// Development starts from empty tables on every boot.
	if cfg.App.IsDevelopment() {
		slog.Warn("development mode: recreating registry tables")
		err = database.Recreate(ctx, pool)
	} else {
		err = database.Migrate(ctx, pool)
	}
	if err != nil {
		slog.Error("failed to prepare schema", "error", err)
		os.Exit(1)
	}

	service, err := core.NewService(pool, cfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartCacheJanitor(jobCtx)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Handlers cut off by the request timeout may leave merges running.
		if status := service.WriteLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for merges to complete", "active", status.Active)
			if err := service.WaitForMerges(shutdownCtx); err != nil {
				slog.Warn("merges did not complete in time", "error", err)
			}
		}
	}()

	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		pool.Close()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
