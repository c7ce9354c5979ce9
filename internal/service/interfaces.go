package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"grocery_feed/internal/domain"
)

type Source interface {
	ID() domain.SourceID
	Name() string
	Fetch(ctx context.Context) domain.FetchResult
}

type RunStore interface {
	Insert(ctx context.Context, run *domain.RefreshRun) error
}

type SourceStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SourceState, error)
	Update(ctx context.Context, state *domain.SourceState) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, change domain.PriceChange) error
	Close() error
}

type Metrics interface {
	ObserveSource(res domain.FetchResult)
	ObserveRefresh(stats *domain.RefreshStats)
}
