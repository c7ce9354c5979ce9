package domain

import "time"

// RefreshStats holds statistics about one catalog refresh.
type RefreshStats struct {
	RunID       string
	StartedAt   time.Time
	Sources     []SourceStats
	Merged      int
	Replaced    int
	PriceEvents int
	Errors      int
	Duration    time.Duration
}

type SourceStats struct {
	SourceID    SourceID
	Fetched     int
	Diagnostics int
	Err         string
	Duration    time.Duration
}

// RefreshRun is the persisted summary of a refresh.
type RefreshRun struct {
	ID         string    `db:"id"`
	StartedAt  time.Time `db:"started_at"`
	DurationMs int64     `db:"duration_ms"`
	Merged     int       `db:"merged"`
	Replaced   int       `db:"replaced"`
	Errors     int       `db:"errors"`
}

// SourceState tracks the latest refresh outcome of a single source.
type SourceState struct {
	SourceID        string    `db:"source_id"`
	LastRefreshedAt time.Time `db:"last_refreshed_at"`
	LastCount       int64     `db:"last_count"`
	LastError       string    `db:"last_error"`
	TotalRefreshes  int64     `db:"total_refreshes"`
}

// PriceChange describes a product whose winning effective price moved
// between two consecutive refreshes.
type PriceChange struct {
	Product  Product
	Previous float64
	Current  float64
}

func (c PriceChange) IsDrop() bool {
	return c.Current < c.Previous
}
