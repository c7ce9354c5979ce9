package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"grocery_feed/internal/domain"
	"grocery_feed/internal/merge"
)

// DefaultSideEffectTimeout bounds publishing and history writes separately.
const DefaultSideEffectTimeout = 5 * time.Second

// Refresher runs the ingestion pipeline: all sources are fetched
// concurrently and merged in the order they were given. History and
// publishing are optional; pass nil to disable them.
type Refresher struct {
	sources   []Source
	runs      RunStore
	states    SourceStateStore
	txManager TransactionManager
	publisher Publisher
	metrics   Metrics
	logger    *slog.Logger

	sideEffectTimeout time.Duration

	mu       sync.Mutex
	previous map[string]float64
}

func NewRefresher(
	sources []Source,
	runs RunStore,
	states SourceStateStore,
	txManager TransactionManager,
	publisher Publisher,
	metrics Metrics,
	logger *slog.Logger,
) *Refresher {
	return &Refresher{
		sources:   sources,
		runs:      runs,
		states:    states,
		txManager: txManager,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,

		sideEffectTimeout: DefaultSideEffectTimeout,
	}
}

// WithSideEffectTimeout overrides DefaultSideEffectTimeout. Non-positive
// values are ignored.
func (r *Refresher) WithSideEffectTimeout(d time.Duration) *Refresher {
	if d > 0 {
		r.sideEffectTimeout = d
	}
	return r
}

// Load implements catalog.Loader.
func (r *Refresher) Load(ctx context.Context) []domain.Product {
	_, products := r.Refresh(ctx)
	return products
}

// Refresh fetches and merges every source. It never fails: broken sources
// contribute nothing and side-effect errors are only counted and logged.
func (r *Refresher) Refresh(ctx context.Context) (*domain.RefreshStats, []domain.Product) {
	startTime := time.Now()
	stats := &domain.RefreshStats{
		RunID:     uuid.NewString(),
		StartedAt: startTime,
	}
	logger := r.logger.With("run_id", stats.RunID)
	logger.Info("starting refresh", "sources", len(r.sources))

	results := r.fetchAll(ctx)

	for _, res := range results {
		src := domain.SourceStats{
			SourceID:    res.Source,
			Fetched:     len(res.Products),
			Diagnostics: len(res.Diagnostics),
			Duration:    res.Duration,
		}
		if res.Err != nil {
			src.Err = res.Err.Error()
			stats.Errors++
			logger.Warn("source returned no data", "source", res.Source, "error", res.Err)
		}
		stats.Sources = append(stats.Sources, src)

		if r.metrics != nil {
			r.metrics.ObserveSource(res)
		}
	}

	products, mergeStats := merge.MergeWithStats(results...)
	stats.Merged = mergeStats.Unique
	stats.Replaced = mergeStats.Replaced

	changes := r.swapPrevious(products)
	if r.publisher != nil && len(changes) > 0 {
		r.publishChanges(ctx, changes, stats, logger)
	}

	stats.Duration = time.Since(startTime)

	historyCtx, cancel := context.WithTimeout(ctx, r.sideEffectTimeout)
	err := r.recordHistory(historyCtx, stats)
	cancel()
	if err != nil {
		stats.Errors++
		logger.Error("record refresh history failed", "error", err)
	}

	if r.metrics != nil {
		r.metrics.ObserveRefresh(stats)
	}

	logger.Info("refresh completed",
		"merged", stats.Merged,
		"replaced", stats.Replaced,
		"price_changes", len(changes),
		"published", stats.PriceEvents,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, products
}

// publishChanges shares one deadline across all changes. Once it expires
// the remaining changes are counted as errors without being attempted.
func (r *Refresher) publishChanges(ctx context.Context, changes []domain.PriceChange, stats *domain.RefreshStats, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, r.sideEffectTimeout)
	defer cancel()

	for i, change := range changes {
		if ctx.Err() != nil {
			skipped := len(changes) - i
			stats.Errors += skipped
			logger.Error("publish deadline exceeded", "skipped", skipped, "error", ctx.Err())
			return
		}
		if err := r.publisher.Publish(ctx, change); err != nil {
			stats.Errors++
			logger.Error("publish price change failed", "product_id", change.Product.ID, "error", err)
			continue
		}
		stats.PriceEvents++
	}
}

// fetchAll returns one result per source, in source order regardless of
// completion order.
func (r *Refresher) fetchAll(ctx context.Context) []domain.FetchResult {
	results := make([]domain.FetchResult, len(r.sources))

	var g errgroup.Group
	for i, src := range r.sources {
		g.Go(func() error {
			res := src.Fetch(ctx)
			if res.Source == "" {
				res.Source = src.ID()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// swapPrevious remembers the effective prices of this refresh and returns
// the products whose price differs from the previous refresh. Products new
// to the catalog are not reported.
func (r *Refresher) swapPrevious(products []domain.Product) []domain.PriceChange {
	current := make(map[string]float64, len(products))
	for _, p := range products {
		current[p.ID] = p.EffectivePrice()
	}

	r.mu.Lock()
	previous := r.previous
	r.previous = current
	r.mu.Unlock()

	if previous == nil {
		return nil
	}

	var changes []domain.PriceChange
	for _, p := range products {
		before, ok := previous[p.ID]
		now := current[p.ID]
		if !ok || before == now || math.IsNaN(before) || math.IsNaN(now) {
			continue
		}
		changes = append(changes, domain.PriceChange{
			Product:  p,
			Previous: before,
			Current:  now,
		})
	}
	return changes
}

func (r *Refresher) recordHistory(ctx context.Context, stats *domain.RefreshStats) error {
	if r.runs == nil || r.states == nil || r.txManager == nil {
		return nil
	}

	run := &domain.RefreshRun{
		ID:         stats.RunID,
		StartedAt:  stats.StartedAt,
		DurationMs: stats.Duration.Milliseconds(),
		Merged:     stats.Merged,
		Replaced:   stats.Replaced,
		Errors:     stats.Errors,
	}

	return r.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := r.runs.Insert(txCtx, run); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, src := range stats.Sources {
			state, err := r.states.Get(txCtx, string(src.SourceID))
			if err != nil {
				return fmt.Errorf("get source state %s: %w", src.SourceID, err)
			}

			state.SourceID = string(src.SourceID)
			state.LastRefreshedAt = stats.StartedAt
			state.LastCount = int64(src.Fetched)
			state.LastError = src.Err
			state.TotalRefreshes++

			if err := r.states.Update(txCtx, state); err != nil {
				return fmt.Errorf("update source state %s: %w", src.SourceID, err)
			}
		}
		return nil
	})
}
