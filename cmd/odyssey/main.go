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

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-restlets/cmd/odyssey/cli"
	"github.com/odyssey-erp/odyssey-restlets/internal/app"
	"github.com/odyssey-erp/odyssey-restlets/internal/donors"
	"github.com/odyssey-erp/odyssey-restlets/internal/fulfillment"
	"github.com/odyssey-erp/odyssey-restlets/internal/inquiry"
	"github.com/odyssey-erp/odyssey-restlets/internal/observability"
	"github.com/odyssey-erp/odyssey-restlets/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-restlets/internal/platform/db"
	"github.com/odyssey-erp/odyssey-restlets/internal/sales"
	"github.com/odyssey-erp/odyssey-restlets/internal/shared"
	"github.com/odyssey-erp/odyssey-restlets/jobs"
)

const serviceName = "odyssey-restlets"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
		runErr := jobsCLI.Run(ctx, os.Args[2:], os.Stdout)
		if err := jobsCLI.Close(); err != nil {
			logger.Warn("jobs cli close", slog.Any("error", err))
		}
		if runErr != nil {
			logger.Error("jobs cli", slog.Any("error", runErr))
			os.Exit(1)
		}
		return
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{
		MaxConns:        cfg.PGMaxConns,
		MaxConnLifetime: cfg.PGMaxConnLifetime,
	})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("redis unavailable, sales cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	tracing, err := observability.NewTracing(ctx, observability.TracingOptions{
		Enabled:      cfg.TracingEnabled,
		ServiceName:  serviceName,
		Environment:  cfg.AppEnv,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		logger.Error("init tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	fulfillmentDeps := &fulfillment.Dependencies{
		Store:   fulfillment.NewPostgresStore(dbpool),
		Logger:  logger,
		Metrics: fulfillment.NewMetrics(metrics.Registerer()),
		Audit:   auditLogger,
		Tracer:  tracing.Tracer("github.com/odyssey-erp/odyssey-restlets/internal/fulfillment"),

		Idempotency: shared.NewIdempotencyStore(dbpool),
	}

	salesService := sales.NewService(
		sales.NewRepository(dbpool),
		sales.NewRedisCache(redisClient, cfg.SalesCacheTTL),
		logger,
	)
	salesHandler := sales.NewHandler(logger, salesService)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	inquiryService := inquiry.NewService(inquiry.NewRepository(dbpool), jobClient, cfg.AdminEmail, logger)
	inquiryHandler := inquiry.NewHandler(logger, inquiryService)

	donorsHandler := donors.NewHandler(logger, donors.NewService(donors.NewRepository(dbpool)))

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		Fulfillment:    fulfillmentDeps,
		SalesHandler:   salesHandler,
		InquiryHandler: inquiryHandler,
		DonorsHandler:  donorsHandler,
		JobHandler:     jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
