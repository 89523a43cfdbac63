package pipeline

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/econ-etl/internal/store"
)

// SeriesFailure records one series that did not complete.
type SeriesFailure struct {
	SeriesKey string
	Err       error
}

// Report aggregates the outcome of one run.
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time

	Stats   store.Stats
	Skipped []string
	Failed  []SeriesFailure
}

// OK reports whether every series completed (skipped counts as complete).
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// LogSummary emits the final per-run summary.
func (r *Report) LogSummary(logger *slog.Logger) {
	logger.Info("run complete",
		"run_id", r.RunID,
		"duration", r.FinishedAt.Sub(r.StartedAt),
		"inserted", r.Stats.Inserted,
		"updated", r.Stats.Updated,
		"unchanged", r.Stats.Unchanged,
		"skipped_series", len(r.Skipped),
		"failed_series", len(r.Failed),
	)
	for _, f := range r.Failed {
		logger.Error("series failed", "run_id", r.RunID, "series", f.SeriesKey, "error", f.Err)
	}
}
