package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/econ-etl/internal/model"
)

// Error represents a failed write during reconciliation. The transaction
// it occurred in is rolled back before the error propagates.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Stats reports the outcome of one reconciliation pass.
type Stats struct {
	Inserted  int
	Updated   int
	Unchanged int
}

// Store reconciles normalized rows into the destination database.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store over an established pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Pool exposes the underlying pool for collaborators that share the
// database (the revision tracker).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies the connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Apply upserts the staged rows in a single transaction and reports exact
// counts. On any write failure the whole transaction rolls back, so the
// reported counts always match committed state.
func (s *Store) Apply(ctx context.Context, facts []model.FactRow, dims []model.DimensionRow) (Stats, error) {
	var stats Stats

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return stats, &Error{Op: "begin", Err: err}
	}
	defer tx.Rollback(ctx)

	for _, dim := range dims {
		if err := upsertDimension(ctx, tx, dim); err != nil {
			return Stats{}, err
		}
	}

	for _, row := range facts {
		outcome, err := reconcileFact(ctx, tx, row)
		if err != nil {
			return Stats{}, err
		}
		switch outcome {
		case factInserted:
			stats.Inserted++
		case factUpdated:
			stats.Updated++
		case factUnchanged:
			stats.Unchanged++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Stats{}, &Error{Op: "commit", Err: err}
	}

	s.logger.Info("reconciliation committed",
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged,
	)
	return stats, nil
}

type factOutcome int

const (
	factInserted factOutcome = iota
	factUpdated
	factUnchanged
)

func reconcileFact(ctx context.Context, tx pgx.Tx, row model.FactRow) (factOutcome, error) {
	var existing *float64
	err := tx.QueryRow(ctx,
		`SELECT value FROM fact_economic_observations WHERE series_key = $1 AND date = $2`,
		row.SeriesKey, row.Date,
	).Scan(&existing)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// A concurrent run can insert the same natural key between our
		// read and write; ON CONFLICT turns that race into an update
		// rather than a constraint failure. xmax is zero only for a row
		// this statement created, so a conflict taken over a concurrent
		// insert counts as an update.
		var inserted bool
		err := tx.QueryRow(ctx, `
			INSERT INTO fact_economic_observations (series_key, date, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (series_key, date) DO UPDATE SET value = EXCLUDED.value
			RETURNING (xmax = 0)`,
			row.SeriesKey, row.Date, row.Value,
		).Scan(&inserted)
		if err != nil {
			return 0, &Error{Op: fmt.Sprintf("insert %s@%s", row.SeriesKey, row.Date.Format("2006-01-02")), Err: err}
		}
		if inserted {
			return factInserted, nil
		}
		return factUpdated, nil

	case err != nil:
		return 0, &Error{Op: fmt.Sprintf("read %s@%s", row.SeriesKey, row.Date.Format("2006-01-02")), Err: err}

	case valueEqual(existing, row.Value):
		return factUnchanged, nil

	default:
		_, err := tx.Exec(ctx,
			`UPDATE fact_economic_observations SET value = $3 WHERE series_key = $1 AND date = $2`,
			row.SeriesKey, row.Date, row.Value,
		)
		if err != nil {
			return 0, &Error{Op: fmt.Sprintf("update %s@%s", row.SeriesKey, row.Date.Format("2006-01-02")), Err: err}
		}
		return factUpdated, nil
	}
}

func upsertDimension(ctx context.Context, tx pgx.Tx, dim model.DimensionRow) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO dim_series (series_key, description, source, unit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (series_key) DO UPDATE SET
			description = EXCLUDED.description,
			source = EXCLUDED.source,
			unit = EXCLUDED.unit`,
		dim.SeriesKey, dim.Description, dim.Source, dim.Unit,
	)
	if err != nil {
		return &Error{Op: fmt.Sprintf("upsert dimension %s", dim.SeriesKey), Err: err}
	}
	return nil
}

// valueEqual compares two nullable values: both nil, or both within a
// small epsilon. A nil on one side only is a change.
func valueEqual(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return math.Abs(*a-*b) < 1e-9
}
