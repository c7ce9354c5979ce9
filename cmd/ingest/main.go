package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocery_feed/internal/app"
	"grocery_feed/internal/config"
	"grocery_feed/internal/domain"
	"grocery_feed/internal/logger"
	"grocery_feed/internal/report"
	"grocery_feed/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	limit := flag.Int("limit", 20, "number of products to print, 0 for all")
	watch := flag.Duration("watch", 0, "refresh repeatedly on this interval instead of once")
	history := flag.Int("history", 0, "print this many recent runs from the database after refreshing")
	flag.Parse()

	log := logger.NewText("info", os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log = logger.NewText(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *limit, *watch, *history); err != nil {
		log.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, limit int, watch time.Duration, history int) error {
	sources, err := app.Sources(cfg, log)
	if err != nil {
		return err
	}

	deps, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	refresher := deps.Refresher(sources, nil, log).WithSideEffectTimeout(cfg.Refresh.SideEffectTimeout)

	show := func(stats *domain.RefreshStats, products []domain.Product) {
		if err := report.Stats(os.Stdout, stats); err != nil {
			log.Error("write stats", "error", err)
		}
		fmt.Fprintln(os.Stdout)
		if err := report.Products(os.Stdout, products, limit); err != nil {
			log.Error("write products", "error", err)
		}
	}

	if watch > 0 {
		err := scheduler.NewScheduler(refresher, watch, log).OnRefresh(show).Start(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	show(refresher.Refresh(ctx))

	if history > 0 && deps.Runs != nil {
		runs, err := deps.Runs.Recent(ctx, history)
		if err != nil {
			return fmt.Errorf("load run history: %w", err)
		}
		fmt.Fprintln(os.Stdout)
		if err := report.Runs(os.Stdout, runs); err != nil {
			return err
		}

		states, err := deps.States.List(ctx)
		if err != nil {
			return fmt.Errorf("load source state: %w", err)
		}
		fmt.Fprintln(os.Stdout)
		return report.SourceStates(os.Stdout, states)
	}
	return nil
}
