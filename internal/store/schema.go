package store

import "context"

// schemaStatements create the destination tables. The composite primary
// key on the fact table is the natural-key uniqueness guarantee; the
// application never relies on its own bookkeeping for it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS fact_economic_observations (
		series_key TEXT NOT NULL,
		date DATE NOT NULL,
		value DOUBLE PRECISION,
		PRIMARY KEY (series_key, date)
	)`,
	`CREATE TABLE IF NOT EXISTS dim_series (
		series_key TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		source TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS series_state (
		series_key TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		last_observed_date DATE,
		last_fetched_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the fact, dimension, and fetch-state tables if
// they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return &Error{Op: "ensure schema", Err: err}
		}
	}
	return nil
}
