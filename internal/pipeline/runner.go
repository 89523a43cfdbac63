package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/econ-etl/internal/model"
	"github.com/rickgao/econ-etl/internal/normalize"
	"github.com/rickgao/econ-etl/internal/revision"
	"github.com/rickgao/econ-etl/internal/store"
)

// Provider fetches raw batches for one source's descriptors.
type Provider interface {
	Source() model.Source
	Fetch(ctx context.Context, descs []model.SeriesDescriptor, since map[string]time.Time) (map[string]model.RawBatch, map[string]error)
}

// Tracker persists and compares per-series fetch state.
type Tracker interface {
	HasChanged(ctx context.Context, seriesKey, newHash string) (bool, error)
	SinceDate(ctx context.Context, seriesKey string) (*time.Time, error)
	Record(ctx context.Context, state model.SeriesState) error
}

// Reconciler upserts normalized rows into the destination store.
type Reconciler interface {
	Apply(ctx context.Context, facts []model.FactRow, dims []model.DimensionRow) (store.Stats, error)
}

// SnapshotStore persists one immutable raw payload per changed series.
type SnapshotStore interface {
	Write(desc model.SeriesDescriptor, day time.Time, raw []byte) (string, error)
}

// Config holds runner settings.
type Config struct {
	Descriptors []model.SeriesDescriptor

	// Now is the time source; defaults to time.Now.
	Now func() time.Time
}

// Runner executes one end-to-end run over the configured series.
type Runner struct {
	descs     []model.SeriesDescriptor
	providers []Provider
	tracker   Tracker
	snapshots SnapshotStore
	store     Reconciler
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Runner.
func New(cfg Config, providers []Provider, tracker Tracker, snapshots SnapshotStore, rec Reconciler, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		descs:     cfg.Descriptors,
		providers: providers,
		tracker:   tracker,
		snapshots: snapshots,
		store:     rec,
		logger:    logger,
		now:       now,
	}
}

// stagedSeries is one changed series ready for reconciliation.
type stagedSeries struct {
	desc  model.SeriesDescriptor
	batch normalize.ParsedBatch
	state model.SeriesState
}

// Run executes one run: fetch and revision-check every configured series,
// normalize the changed ones, then reconcile the full staged batch once.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		RunID:     uuid.New(),
		StartedAt: r.now(),
	}
	logger := r.logger.With("run_id", report.RunID)
	logger.Info("starting run", "series", len(r.descs))

	var staged []stagedSeries
	for _, provider := range r.providers {
		staged = append(staged, r.runProvider(ctx, provider, logger, report)...)
	}

	r.reconcile(ctx, staged, logger, report)

	report.FinishedAt = r.now()
	return report
}

// runProvider fetches and revision-checks one provider's series, returning
// the changed ones staged for reconciliation.
func (r *Runner) runProvider(ctx context.Context, provider Provider, logger *slog.Logger, report *Report) []stagedSeries {
	var descs []model.SeriesDescriptor
	for _, desc := range r.descs {
		if desc.Source == provider.Source() {
			descs = append(descs, desc)
		}
	}
	if len(descs) == 0 {
		return nil
	}

	// Resolve incremental windows. A series whose state cannot be read is
	// failed up front and excluded from the fetch.
	since := make(map[string]time.Time, len(descs))
	fetchable := make([]model.SeriesDescriptor, 0, len(descs))
	for _, desc := range descs {
		last, err := r.tracker.SinceDate(ctx, desc.SeriesKey)
		if err != nil {
			report.Failed = append(report.Failed, SeriesFailure{SeriesKey: desc.SeriesKey, Err: err})
			continue
		}
		if last != nil {
			since[desc.SeriesKey] = *last
		}
		fetchable = append(fetchable, desc)
	}
	if len(fetchable) == 0 {
		return nil
	}

	batches, failures := provider.Fetch(ctx, fetchable, since)

	var staged []stagedSeries
	for _, desc := range fetchable {
		if err := failures[desc.SeriesKey]; err != nil {
			logger.Error("fetch failed", "series", desc.SeriesKey, "source", desc.Source, "error", err)
			report.Failed = append(report.Failed, SeriesFailure{SeriesKey: desc.SeriesKey, Err: err})
			continue
		}

		var prior *time.Time
		if cutoff, ok := since[desc.SeriesKey]; ok {
			prior = &cutoff
		}
		s, err := r.stageSeries(ctx, desc, batches[desc.SeriesKey], prior, logger)
		if err != nil {
			report.Failed = append(report.Failed, SeriesFailure{SeriesKey: desc.SeriesKey, Err: err})
			continue
		}
		if s == nil {
			report.Skipped = append(report.Skipped, desc.SeriesKey)
			continue
		}
		staged = append(staged, *s)
	}
	return staged
}

// stageSeries hashes one fetched batch, skips it when content is
// unchanged, and otherwise snapshots and normalizes it. A nil result with
// nil error means the series was skipped. prior is the window start the
// batch was fetched against, nil on a full-history fetch.
func (r *Runner) stageSeries(ctx context.Context, desc model.SeriesDescriptor, batch model.RawBatch, prior *time.Time, logger *slog.Logger) (*stagedSeries, error) {
	// Hash within the fetch window. The stored hash was computed against
	// this same window when state was last recorded, so unchanged upstream
	// content compares equal even though the window narrows between runs.
	hash := revision.HashWindow(batch.Observations, prior)

	changed, err := r.tracker.HasChanged(ctx, desc.SeriesKey, hash)
	if err != nil {
		return nil, err
	}
	if !changed {
		logger.Info("content unchanged, skipping", "series", desc.SeriesKey, "source", desc.Source)
		return nil, nil
	}

	if _, err := r.snapshots.Write(desc, batch.FetchedAt, batch.Raw); err != nil {
		return nil, err
	}

	obs, warnings := normalize.Parse(batch)
	for _, w := range warnings {
		logger.Warn("dropping malformed observation", "series", w.SeriesKey, "date", w.Date, "error", w)
	}

	logger.Info("series staged",
		"series", desc.SeriesKey,
		"source", desc.Source,
		"observations", len(obs),
		"dropped", len(warnings),
	)

	// The observed date never moves backwards: a batch that parses to
	// nothing, or to dates older than the prior state, keeps the prior
	// date so the next window does not silently widen to full history.
	last := lastObserved(obs)
	if prior != nil && (last == nil || prior.After(*last)) {
		last = prior
	}

	return &stagedSeries{
		desc: desc,
		batch: normalize.ParsedBatch{
			SeriesKey:    desc.SeriesKey,
			FetchedAt:    batch.FetchedAt,
			Observations: obs,
		},
		state: model.SeriesState{
			SeriesKey: desc.SeriesKey,
			// Recorded against the window the next fetch will use, so an
			// unchanged refetch hashes back to this value.
			ContentHash:      revision.HashWindow(batch.Observations, last),
			LastObservedDate: last,
			LastFetchedAt:    batch.FetchedAt,
		},
	}, nil
}

// reconcile applies the full staged batch in one transactional pass, then
// records fetch state for the staged series. State is recorded only after
// the commit so a failed apply is refetched next run.
func (r *Runner) reconcile(ctx context.Context, staged []stagedSeries, logger *slog.Logger, report *Report) {
	if len(staged) == 0 {
		logger.Info("nothing staged, skipping reconciliation")
		return
	}

	batches := make([]normalize.ParsedBatch, 0, len(staged))
	descs := make([]model.SeriesDescriptor, 0, len(staged))
	for _, s := range staged {
		batches = append(batches, s.batch)
		descs = append(descs, s.desc)
	}

	stats, err := r.store.Apply(ctx, normalize.Combine(batches), normalize.BuildDimensions(descs))
	if err != nil {
		logger.Error("reconciliation failed", "error", err)
		for _, s := range staged {
			report.Failed = append(report.Failed, SeriesFailure{SeriesKey: s.desc.SeriesKey, Err: err})
		}
		return
	}
	report.Stats = stats

	for _, s := range staged {
		if err := r.tracker.Record(ctx, s.state); err != nil {
			logger.Error("recording fetch state failed", "series", s.desc.SeriesKey, "error", err)
			report.Failed = append(report.Failed, SeriesFailure{SeriesKey: s.desc.SeriesKey, Err: err})
		}
	}
}

// lastObserved returns the newest observation date, or nil for an empty
// batch. Parse returns observations oldest-first.
func lastObserved(obs []model.Observation) *time.Time {
	if len(obs) == 0 {
		return nil
	}
	last := obs[len(obs)-1].Date
	return &last
}
