package normalize

import (
	"testing"
	"time"

	"github.com/rickgao/econ-etl/internal/model"
)

func rawBatch(obs ...model.RawObservation) model.RawBatch {
	return model.RawBatch{
		SeriesKey:    "UNRATE",
		Source:       model.SourceFRED,
		FetchedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Observations: obs,
	}
}

func TestParseNumericValues(t *testing.T) {
	batch := rawBatch(
		model.RawObservation{Date: "2024-01-01", Token: "3.7"},
		model.RawObservation{Date: "2024-02-01", Token: "3.8"},
	)

	obs, warnings := Parse(batch)

	if len(warnings) != 0 {
		t.Fatalf("len(warnings) = %d, want 0", len(warnings))
	}
	if len(obs) != 2 {
		t.Fatalf("len(obs) = %d, want 2", len(obs))
	}
	if obs[0].Value == nil || *obs[0].Value != 3.7 {
		t.Errorf("obs[0].Value = %v, want 3.7", obs[0].Value)
	}
	wantDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !obs[0].Date.Equal(wantDate) {
		t.Errorf("obs[0].Date = %v, want %v", obs[0].Date, wantDate)
	}
}

func TestParseMissingSentinels(t *testing.T) {
	// FRED uses ".", BLS uses "-", both occasionally emit blanks.
	tests := []struct {
		name  string
		token string
	}{
		{name: "fred dot", token: "."},
		{name: "bls dash", token: "-"},
		{name: "blank", token: ""},
		{name: "whitespace", token: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := rawBatch(model.RawObservation{Date: "2024-01-01", Token: tt.token})

			obs, warnings := Parse(batch)

			if len(warnings) != 0 {
				t.Fatalf("len(warnings) = %d, want 0", len(warnings))
			}
			if len(obs) != 1 {
				t.Fatalf("len(obs) = %d, want 1 (sentinel keeps the point)", len(obs))
			}
			if obs[0].Value != nil {
				t.Errorf("obs[0].Value = %v, want nil", *obs[0].Value)
			}
		})
	}
}

func TestParseNonNumericTokenDropsOnlyThatPoint(t *testing.T) {
	batch := rawBatch(
		model.RawObservation{Date: "2024-01-01", Token: "3.7"},
		model.RawObservation{Date: "2024-02-01", Token: "garbage"},
		model.RawObservation{Date: "2024-03-01", Token: "3.9"},
	)

	obs, warnings := Parse(batch)

	if len(obs) != 2 {
		t.Fatalf("len(obs) = %d, want 2 (bad point dropped, rest kept)", len(obs))
	}
	if len(warnings) != 1 {
		t.Fatalf("len(warnings) = %d, want 1", len(warnings))
	}
	w := warnings[0]
	if w.SeriesKey != "UNRATE" || w.Date != "2024-02-01" || w.Token != "garbage" {
		t.Errorf("warning = %+v, want series UNRATE at 2024-02-01 with token garbage", w)
	}
	// Never coerced to zero
	for _, o := range obs {
		if o.Value != nil && *o.Value == 0 {
			t.Errorf("found zero value at %v; bad tokens must be dropped, not zeroed", o.Date)
		}
	}
}

func TestParseInvalidDateDropsPoint(t *testing.T) {
	batch := rawBatch(
		model.RawObservation{Date: "not-a-date", Token: "3.7"},
		model.RawObservation{Date: "2024-01-01", Token: "3.8"},
	)

	obs, warnings := Parse(batch)

	if len(obs) != 1 {
		t.Fatalf("len(obs) = %d, want 1", len(obs))
	}
	if len(warnings) != 1 {
		t.Fatalf("len(warnings) = %d, want 1", len(warnings))
	}
	if warnings[0].Reason != "invalid date" {
		t.Errorf("warnings[0].Reason = %q, want %q", warnings[0].Reason, "invalid date")
	}
}

func TestParseSortsOldestFirst(t *testing.T) {
	batch := rawBatch(
		model.RawObservation{Date: "2024-03-01", Token: "4.0"},
		model.RawObservation{Date: "2024-01-01", Token: "3.7"},
		model.RawObservation{Date: "2024-02-01", Token: "3.8"},
	)

	obs, _ := Parse(batch)

	for i := 1; i < len(obs); i++ {
		if obs[i].Date.Before(obs[i-1].Date) {
			t.Fatalf("obs not sorted oldest-first: %v before %v", obs[i].Date, obs[i-1].Date)
		}
	}
}
