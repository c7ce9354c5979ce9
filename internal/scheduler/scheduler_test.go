package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery_feed/internal/domain"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(context.Context) (*domain.RefreshStats, []domain.Product) {
	n := r.calls.Add(1)
	return &domain.RefreshStats{RunID: "run", Merged: int(n)}, []domain.Product{{ID: "1"}}
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	refresher := &countingRefresher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen atomic.Int32
	sched := NewScheduler(refresher, 20*time.Millisecond, logger).
		OnRefresh(func(stats *domain.RefreshStats, products []domain.Product) {
			seen.Add(1)
			assert.Len(t, products, 1)
		})

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	err := sched.Start(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))

	calls := refresher.calls.Load()
	assert.GreaterOrEqual(t, calls, int32(3))
	assert.Equal(t, calls, seen.Load())
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	refresher := &countingRefresher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewScheduler(refresher, time.Hour, logger).Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), refresher.calls.Load())
}
