// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/pals/internal/api"
	"github.com/taibuivan/pals/internal/audit"
	"github.com/taibuivan/pals/internal/pals"
	"github.com/taibuivan/pals/internal/platform/constants"
	"github.com/taibuivan/pals/internal/platform/middleware"
	"github.com/taibuivan/pals/internal/platform/migration"
	pgstore "github.com/taibuivan/pals/internal/platform/postgres"
	"github.com/taibuivan/pals/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/pals/internal/platform/redis"
	"github.com/taibuivan/pals/internal/platform/routes"
	"github.com/taibuivan/pals/internal/users/session"
)

// serveCmd starts the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Pals HTTP API server",
	Long: `Start the Pals HTTP API server.

Startup Sequence:

 1. Initialize structured logger and load configuration.
 2. Connect to PostgreSQL (pgxpool).
 3. Connect to Redis when REDIS_URL is set.
 4. Run database migrations when AUTO_MIGRATE is true.
 5. Wire the request gate and HTTP handlers.
 6. Start the audit sweeper and the HTTP server with graceful shutdown.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	// ── 1. Logger & Configuration ─────────────────────────────────────────
	cfg, log := loadConfig()
	log.Info("[Pals] service_initializing")

	// Root context for background workers, cancelled on shutdown.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Use a 30s deadline so misconfiguration is caught quickly rather than
	// hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	// ── 2. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	health := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
	}

	// ── 3. Redis & Rate Limiting ──────────────────────────────────────────
	var limiter ratelimit.Limiter
	if cfg.HasRedis() {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}()

		limiter = ratelimit.NewRedis(rdb, cfg.RateLimitRPS, constants.RateLimitWindow)
		health.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	} else {
		local := ratelimit.NewLocal(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go local.Cleanup(appCtx, constants.RateLimitCleanupInterval)
		limiter = local
		log.Warn("redis_not_configured", slog.String("rate_limit", "in_process"))
	}

	// ── 4. Migrations ─────────────────────────────────────────────────────
	if cfg.AutoMigrate {
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")
	}

	// ── 5. Gate & Domain Wiring ───────────────────────────────────────────
	auditLog := audit.NewPostgresLog(pool)
	resolver := session.NewResolver(session.NewPostgresStore(pool))
	gate := middleware.Gate(routes.NewClassifier(), resolver, auditLog, cfg.Gate())

	palHandler := pals.NewHandler(pals.NewService(pals.NewPostgresRepository(pool), log))
	liveness, readiness := api.NewHealthHandlers(health, log)

	server := api.NewServer(cfg, log, limiter, gate, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Home:      api.Home,
		Pals:      palHandler,
	})

	// ── 6. Background Workers ─────────────────────────────────────────────
	if cfg.AuditSweepInterval > 0 {
		sweeper := audit.NewSweeper(auditLog, cfg.AuditSweepAge, log)
		go sweeper.Run(appCtx, cfg.AuditSweepInterval)
	}

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}
	appCancel()

	log.Info("server_stopped_cleanly")
}
