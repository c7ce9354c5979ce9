package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"grocery_feed/internal/domain"
)

type RunStore struct {
	db *sqlx.DB
}

func NewRunStore(db *sqlx.DB) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) Insert(ctx context.Context, run *domain.RefreshRun) error {
	query := `
		INSERT INTO refresh_runs (id, started_at, duration_ms, merged, replaced, errors)
		VALUES (:id, :started_at, :duration_ms, :merged, :replaced, :errors)`

	_, err := sqlx.NamedExecContext(ctx, GetExecutor(ctx, s.db), query, run)
	return err
}

// Recent returns up to limit runs, newest first.
func (s *RunStore) Recent(ctx context.Context, limit int) ([]domain.RefreshRun, error) {
	query := `
		SELECT id, started_at, duration_ms, merged, replaced, errors
		FROM refresh_runs
		ORDER BY started_at DESC
		LIMIT $1`

	var runs []domain.RefreshRun
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}
