package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/munakata1001/mitumorisyo/internal/config"
	"github.com/munakata1001/mitumorisyo/internal/db"
	"github.com/munakata1001/mitumorisyo/internal/estimate"
	"github.com/munakata1001/mitumorisyo/internal/logger"
	"github.com/munakata1001/mitumorisyo/internal/metrics"
	"github.com/munakata1001/mitumorisyo/internal/migrations"
	"github.com/munakata1001/mitumorisyo/internal/seed"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// Best-effort: production injects real environment variables.
	_ = config.LoadDotEnv(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "mitumorisyo"}).Error(context.Background(), "load config", err)
		return err
	}

	format := cfg.LogFormat
	if cfg.IsDev() && format == "" {
		format = "console"
	}
	log := logger.New(logger.Options{
		ServiceName: "mitumorisyo",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      format,
	})
	ctx := context.Background()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error(ctx, "open database", err)
		return err
	}
	defer database.Close()

	if cfg.AutoMigrate {
		if err := migrations.Up(ctx, database); err != nil {
			log.Error(ctx, "run database migrations", err)
			return err
		}
		stats, err := seed.Run(database)
		if err != nil {
			log.Error(ctx, "seed materials", err)
			return err
		}
		log.Info(log.WithField(ctx, "inserts", stats.Inserts), "material seed complete")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewEstimateMetrics(registry)

	store := estimate.NewStore(database)
	srv := &server{
		estimates:      estimate.NewService(estimate.Deps{Estimates: store, Templates: store, Materials: store, Logger: log, Metrics: m}),
		log:            log,
		metrics:        m,
		gatherer:       registry,
		health:         database,
		pdfFontPath:    cfg.PDFFontPath,
		maxUploadFiles: cfg.MaxUploadFiles,
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.WithField(ctx, "addr", httpServer.Addr), "listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "server stopped", err)
			return err
		}
		return nil
	case sig := <-stop:
		log.Info(log.WithField(ctx, "signal", sig.String()), "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "graceful shutdown", err)
		return err
	}
	return nil
}
