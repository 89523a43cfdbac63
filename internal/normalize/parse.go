package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/econ-etl/internal/model"
)

// missingTokens are the provider sentinels for "no value". FRED uses ".",
// BLS uses "-", and both occasionally emit blank strings. All collapse to
// a nil value before any fact row is built.
var missingTokens = map[string]struct{}{
	".": {},
	"-": {},
	"":  {},
}

// ParseError reports one observation that could not be parsed.
type ParseError struct {
	SeriesKey string
	Date      string
	Token     string
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s at %s: %s (token %q)", e.SeriesKey, e.Date, e.Reason, e.Token)
}

// Parse converts a raw batch into typed observations, oldest-first.
// Malformed points are dropped and returned as warnings; they never abort
// the batch and are never coerced to zero.
func Parse(batch model.RawBatch) ([]model.Observation, []*ParseError) {
	obs := make([]model.Observation, 0, len(batch.Observations))
	var warnings []*ParseError

	for _, raw := range batch.Observations {
		date, err := time.Parse("2006-01-02", raw.Date)
		if err != nil {
			warnings = append(warnings, &ParseError{
				SeriesKey: batch.SeriesKey,
				Date:      raw.Date,
				Token:     raw.Token,
				Reason:    "invalid date",
			})
			continue
		}

		token := strings.TrimSpace(raw.Token)
		if _, missing := missingTokens[token]; missing {
			obs = append(obs, model.Observation{Date: date})
			continue
		}

		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			warnings = append(warnings, &ParseError{
				SeriesKey: batch.SeriesKey,
				Date:      raw.Date,
				Token:     raw.Token,
				Reason:    "non-numeric value",
			})
			continue
		}

		obs = append(obs, model.Observation{Date: date, Value: &value})
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs, warnings
}
