package model

import (
	"encoding/json"
	"time"
)

// Source identifies a statistics provider.
type Source string

const (
	SourceFRED Source = "FRED"
	SourceBLS  Source = "BLS"
)

// -----------------------------------------------------------------------------
// Catalog Types
// -----------------------------------------------------------------------------

// SeriesDescriptor identifies one configured economic series.
type SeriesDescriptor struct {
	Source           Source // Provider that publishes the series
	ProviderSeriesID string // Provider-side identifier (e.g., "CUUR0000SA0")
	SeriesKey        string // Stable internal key (e.g., "CPI_URBAN")
	Description      string // Human-readable description
	Unit             string // Unit of measure (e.g., "percent", "index")
}

// -----------------------------------------------------------------------------
// Raw Types
// -----------------------------------------------------------------------------

// RawObservation is one (date, token) pair exactly as the provider reported it.
// Dates are normalized to ISO form (YYYY-MM-DD) at the fetch boundary; tokens
// are left untouched.
type RawObservation struct {
	Date  string `json:"date"`
	Token string `json:"value"`
}

// RawBatch is the provider-independent result of fetching one series.
// Raw holds the canonical per-series payload: the ordered observation
// sequence re-marshaled deterministically, with volatile provider metadata
// (request echoes, realtime windows) stripped. Content hashing and raw
// snapshots both operate on Raw.
type RawBatch struct {
	SeriesKey    string
	Source       Source
	FetchedAt    time.Time
	Raw          []byte
	Observations []RawObservation
}

// CanonicalRaw marshals an ordered observation sequence into the
// deterministic per-series payload used for hashing and raw snapshots.
func CanonicalRaw(obs []RawObservation) []byte {
	data, _ := json.Marshal(obs)
	return data
}

// -----------------------------------------------------------------------------
// Normalized Types
// -----------------------------------------------------------------------------

// Observation is one parsed data point. Value is nil when the provider
// reported a missing-value sentinel.
type Observation struct {
	Date  time.Time
	Value *float64
}

// FactRow is one row of the fact table. Natural key: (SeriesKey, Date).
type FactRow struct {
	SeriesKey string
	Date      time.Time
	Value     *float64
}

// DimensionRow is one row of the series dimension table, keyed by SeriesKey.
type DimensionRow struct {
	SeriesKey   string
	Description string
	Source      Source
	Unit        string
}

// -----------------------------------------------------------------------------
// Fetch State
// -----------------------------------------------------------------------------

// SeriesState is the persisted per-series fetch state. One record per series,
// replaced atomically after each run where content changed.
type SeriesState struct {
	SeriesKey        string
	ContentHash      string
	LastObservedDate *time.Time
	LastFetchedAt    time.Time
}
