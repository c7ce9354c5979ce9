package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"grocery_feed/internal/api"
	"grocery_feed/internal/app"
	"grocery_feed/internal/catalog"
	"grocery_feed/internal/config"
	"grocery_feed/internal/logger"
	"grocery_feed/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := logger.New("info", os.Stdout)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log = logger.New(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	sources, err := app.Sources(cfg, log)
	if err != nil {
		return err
	}

	deps, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	refresher := deps.Refresher(sources, m, log).WithSideEffectTimeout(cfg.Refresh.SideEffectTimeout)
	cache := catalog.NewCache(refresher, cfg.Cache.TTL).WithObserver(m)
	query := catalog.NewQuery(cache, nil)

	gin.SetMode(gin.ReleaseMode)
	srv := api.NewServer(query, api.Options{
		PerPage:    cfg.HTTP.PerPage,
		DocsDir:    cfg.HTTP.DocsDir,
		Gatherer:   reg,
		CapturedAt: cache.CapturedAt,
	}, log)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server listening",
			"addr", cfg.HTTP.Addr,
			"sources", cfg.Sources.Order,
			"cache_ttl", cfg.Cache.TTL,
			"history", cfg.Database.Enabled,
			"publisher", cfg.RabbitMQ.Enabled,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
