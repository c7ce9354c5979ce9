package scheduler

import (
	"context"
	"log/slog"
	"time"

	"grocery_feed/internal/domain"
)

// Refresher runs one ingestion pass.
type Refresher interface {
	Refresh(ctx context.Context) (*domain.RefreshStats, []domain.Product)
}

// Scheduler repeats refreshes on a fixed interval. It drives the ingest
// tool's watch mode; the server refreshes lazily through the cache.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger
	onRefresh func(*domain.RefreshStats, []domain.Product)
}

func NewScheduler(refresher Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

// OnRefresh registers a callback invoked after every pass.
func (s *Scheduler) OnRefresh(fn func(*domain.RefreshStats, []domain.Product)) *Scheduler {
	s.onRefresh = fn
	return s
}

// Start runs a pass immediately and then once per interval until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.run(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	stats, products := s.refresher.Refresh(ctx)
	if stats.Errors > 0 {
		s.logger.Warn("refresh finished with errors", "run_id", stats.RunID, "errors", stats.Errors)
	}
	if s.onRefresh != nil {
		s.onRefresh(stats, products)
	}
}
