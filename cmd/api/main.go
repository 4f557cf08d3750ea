package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"filetransfer/docs"
	"filetransfer/internal/config"
	"filetransfer/internal/database"
	"filetransfer/internal/database/migration"
	handlers "filetransfer/internal/http/handler"
	"filetransfer/internal/http/middleware"
	"filetransfer/internal/lifecycle"
	"filetransfer/internal/logging"
	"filetransfer/internal/otel"
	"filetransfer/internal/repository"
	"filetransfer/internal/repository/postgres"
	"filetransfer/internal/service"
	"filetransfer/internal/storage"
)

// @title File Transfer API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger := logging.New(os.Stdout, logging.Location(cfg.LogTimezone))
	slog.SetDefault(logger)

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		fatal(logger, "tracing_init_failed", err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		fatal(logger, "storage_init_failed", err)
	}
	if err := store.Ensure(ctx); err != nil {
		fatal(logger, "storage_init_failed", err)
	}

	// The journal is optional; without DB_HOST transfers are not recorded.
	var (
		db      *sql.DB
		journal repository.TransferEventRepository
	)
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			fatal(logger, "db_connect_failed", err)
		}
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			fatal(logger, "db_migration_failed", err)
		}
		journal = postgres.NewTransferEventPostgres(db)
	}

	svc := service.NewTransferService(store, journal, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(logger, "metrics_init_failed", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.MaxUploadBytes,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(metrics.Handler())

	// Swagger UI with dynamic host and scheme
	docs.SwaggerInfo.Host = cfg.AppHost
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	checks := map[string]handlers.HealthCheckFunc{"storage": store.Ping}
	if db != nil {
		checks["database"] = db.PingContext
	}
	handlers.RegisterRoutes(app, handlers.Options{
		Service:   svc,
		Logger:    logger,
		PublicDir: cfg.PublicDir,
		Checks:    checks,
		Gatherer:  reg,
		Journal:   journal != nil,
	})

	lc := lifecycle.New(logger, time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	lc.OnShutdown("http", app.ShutdownWithContext)
	lc.OnShutdown("purge", func(ctx context.Context) error {
		n, err := svc.Purge(ctx)
		logger.Info("uploads_cleaned", "deleted", n, "backend", cfg.Storage.Backend)
		return err
	})
	if db != nil {
		lc.OnShutdown("database", func(context.Context) error { return db.Close() })
	}
	lc.OnShutdown("tracing", lifecycle.Hook(shutdownTracing))

	addr := ":" + cfg.Port
	err = lc.Serve(ctx, func() error {
		logger.Info("server_started", "addr", addr, "storage_backend", cfg.Storage.Backend, "journal", journal != nil)
		return app.Listen(addr)
	}, os.Interrupt, syscall.SIGTERM)
	if err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err.Error())
	os.Exit(1)
}
