package revision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/econ-etl/internal/model"
)

// DB is the subset of pgxpool.Pool the tracker needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tracker persists per-series fetch state in the series_state table.
type Tracker struct {
	db     DB
	logger *slog.Logger
}

// NewTracker creates a tracker over the given database handle.
func NewTracker(db DB, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{db: db, logger: logger}
}

// HasChanged reports whether newHash differs from the stored hash for the
// series. A series with no prior state always counts as changed.
func (t *Tracker) HasChanged(ctx context.Context, seriesKey, newHash string) (bool, error) {
	var stored string
	err := t.db.QueryRow(ctx,
		`SELECT content_hash FROM series_state WHERE series_key = $1`,
		seriesKey,
	).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read state for %s: %w", seriesKey, err)
	}
	return stored != newHash, nil
}

// SinceDate returns the last observed date for the series, or nil when no
// state exists. It drives the incremental fetch window.
func (t *Tracker) SinceDate(ctx context.Context, seriesKey string) (*time.Time, error) {
	var last *time.Time
	err := t.db.QueryRow(ctx,
		`SELECT last_observed_date FROM series_state WHERE series_key = $1`,
		seriesKey,
	).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read since date for %s: %w", seriesKey, err)
	}
	return last, nil
}

// Record replaces the series state in a single statement, so no reader
// ever observes a partially updated record.
func (t *Tracker) Record(ctx context.Context, state model.SeriesState) error {
	_, err := t.db.Exec(ctx, `
		INSERT INTO series_state (series_key, content_hash, last_observed_date, last_fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (series_key) DO UPDATE SET
			content_hash = EXCLUDED.content_hash,
			last_observed_date = EXCLUDED.last_observed_date,
			last_fetched_at = EXCLUDED.last_fetched_at`,
		state.SeriesKey, state.ContentHash, state.LastObservedDate, state.LastFetchedAt,
	)
	if err != nil {
		return fmt.Errorf("record state for %s: %w", state.SeriesKey, err)
	}
	return nil
}

// Reset deletes the state record for a series, forcing the next run to
// fetch full history. State is never deleted by normal operation.
func (t *Tracker) Reset(ctx context.Context, seriesKey string) error {
	tag, err := t.db.Exec(ctx,
		`DELETE FROM series_state WHERE series_key = $1`,
		seriesKey,
	)
	if err != nil {
		return fmt.Errorf("reset state for %s: %w", seriesKey, err)
	}
	if tag.RowsAffected() > 0 {
		t.logger.Info("reset series state", "series", seriesKey)
	}
	return nil
}
