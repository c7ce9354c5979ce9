package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"grocery_feed/internal/domain"
)

type SourceStateStore struct {
	db *sqlx.DB
}

func NewSourceStateStore(db *sqlx.DB) *SourceStateStore {
	return &SourceStateStore{db: db}
}

func (s *SourceStateStore) Get(ctx context.Context, sourceID string) (*domain.SourceState, error) {
	var state domain.SourceState
	query := `
		SELECT source_id, last_refreshed_at, last_count, last_error, total_refreshes
		FROM source_state
		WHERE source_id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &state, query, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		// Return empty state for sources never refreshed
		return &domain.SourceState{SourceID: sourceID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *SourceStateStore) Update(ctx context.Context, state *domain.SourceState) error {
	query := `
		INSERT INTO source_state (source_id, last_refreshed_at, last_count, last_error, total_refreshes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_id) DO UPDATE SET
			last_refreshed_at = EXCLUDED.last_refreshed_at,
			last_count = EXCLUDED.last_count,
			last_error = EXCLUDED.last_error,
			total_refreshes = EXCLUDED.total_refreshes`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		state.SourceID,
		state.LastRefreshedAt,
		state.LastCount,
		state.LastError,
		state.TotalRefreshes,
	)
	return err
}

// List returns the state of every source that has been refreshed at least once.
func (s *SourceStateStore) List(ctx context.Context) ([]domain.SourceState, error) {
	query := `
		SELECT source_id, last_refreshed_at, last_count, last_error, total_refreshes
		FROM source_state
		ORDER BY source_id`

	var states []domain.SourceState
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &states, query); err != nil {
		return nil, err
	}
	return states, nil
}
