package normalize

import (
	"sort"
	"time"

	"github.com/rickgao/econ-etl/internal/model"
)

// ParsedBatch pairs a series key with its parsed observations and the
// time the underlying payload was fetched.
type ParsedBatch struct {
	SeriesKey    string
	FetchedAt    time.Time
	Observations []model.Observation
}

// Combine flattens parsed batches into long-format fact rows, one per
// (series, date). When the same (series, date) appears more than once in
// a run, the most-recently-fetched value wins. Output is ordered by
// series key, then date.
func Combine(batches []ParsedBatch) []model.FactRow {
	type staged struct {
		row       model.FactRow
		fetchedAt time.Time
	}
	latest := make(map[string]map[time.Time]staged)

	for _, batch := range batches {
		dates, ok := latest[batch.SeriesKey]
		if !ok {
			dates = make(map[time.Time]staged, len(batch.Observations))
			latest[batch.SeriesKey] = dates
		}
		for _, obs := range batch.Observations {
			prev, exists := dates[obs.Date]
			if exists && prev.fetchedAt.After(batch.FetchedAt) {
				continue
			}
			dates[obs.Date] = staged{
				row: model.FactRow{
					SeriesKey: batch.SeriesKey,
					Date:      obs.Date,
					Value:     obs.Value,
				},
				fetchedAt: batch.FetchedAt,
			}
		}
	}

	var rows []model.FactRow
	for _, dates := range latest {
		for _, s := range dates {
			rows = append(rows, s.row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SeriesKey != rows[j].SeriesKey {
			return rows[i].SeriesKey < rows[j].SeriesKey
		}
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}

// BuildDimensions produces one dimension row per configured descriptor,
// preserving catalog order. Dimension rows depend only on configuration,
// not on fetch success.
func BuildDimensions(descs []model.SeriesDescriptor) []model.DimensionRow {
	rows := make([]model.DimensionRow, 0, len(descs))
	for _, desc := range descs {
		rows = append(rows, model.DimensionRow{
			SeriesKey:   desc.SeriesKey,
			Description: desc.Description,
			Source:      desc.Source,
			Unit:        desc.Unit,
		})
	}
	return rows
}
