package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/econ-etl/internal/model"
)

// BLSClient fetches series from the BLS public timeseries API. BLS answers
// every requested series in a single POST, so one call covers the whole
// descriptor set.
type BLSClient struct {
	*client
	baseURL   string
	apiKey    string
	startYear int
}

// NewBLS creates a BLS API client. startYear bounds full-history requests
// when no prior fetch state exists.
func NewBLS(baseURL, apiKey string, startYear int, opts ...Option) *BLSClient {
	return &BLSClient{
		client:    newClient(opts...),
		baseURL:   baseURL,
		apiKey:    apiKey,
		startYear: startYear,
	}
}

// Source returns the provider identity.
func (c *BLSClient) Source() model.Source {
	return model.SourceBLS
}

type blsRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type blsDataEntry struct {
	Year   string `json:"year"`
	Period string `json:"period"`
	Value  string `json:"value"`
}

type blsResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string         `json:"seriesID"`
			Data     []blsDataEntry `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// Fetch retrieves one RawBatch per descriptor via a single batched call.
// A whole-call failure is attributed to every requested series; a series
// missing from an otherwise successful response fails only that series.
func (c *BLSClient) Fetch(ctx context.Context, descs []model.SeriesDescriptor, since map[string]time.Time) (map[string]model.RawBatch, map[string]error) {
	batches := make(map[string]model.RawBatch, len(descs))
	failures := make(map[string]error)
	if len(descs) == 0 {
		return batches, failures
	}

	ids := make([]string, 0, len(descs))
	for _, desc := range descs {
		ids = append(ids, desc.ProviderSeriesID)
	}

	resp, err := c.fetchBatch(ctx, ids, c.requestStartYear(descs, since))
	if err != nil {
		for _, desc := range descs {
			failures[desc.SeriesKey] = err
		}
		return batches, failures
	}

	bySeriesID := make(map[string][]model.RawObservation, len(resp.Results.Series))
	for _, series := range resp.Results.Series {
		bySeriesID[series.SeriesID] = c.seriesObservations(series.SeriesID, series.Data)
	}

	fetchedAt := c.now()
	for _, desc := range descs {
		obs, ok := bySeriesID[desc.ProviderSeriesID]
		if !ok {
			failures[desc.SeriesKey] = &ProviderError{
				Kind: KindValidation,
				Op:   "bls.timeseries",
				Err:  fmt.Errorf("series %s missing from response", desc.ProviderSeriesID),
			}
			continue
		}

		if s, ok := since[desc.SeriesKey]; ok {
			obs = filterSince(obs, s)
		}

		batches[desc.SeriesKey] = model.RawBatch{
			SeriesKey:    desc.SeriesKey,
			Source:       model.SourceBLS,
			FetchedAt:    fetchedAt,
			Raw:          model.CanonicalRaw(obs),
			Observations: obs,
		}
	}

	return batches, failures
}

func (c *BLSClient) fetchBatch(ctx context.Context, ids []string, startYear int) (*blsResponse, error) {
	payload := blsRequest{
		SeriesID:        ids,
		StartYear:       strconv.Itoa(startYear),
		EndYear:         strconv.Itoa(c.now().Year()),
		RegistrationKey: c.apiKey,
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{Kind: KindValidation, Op: "bls.timeseries", Err: err}
	}

	fullURL := c.baseURL + "/timeseries/data/"

	body, err := c.doWithRetry(ctx, "bls.timeseries", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp blsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProviderError{Kind: KindValidation, Op: "bls.timeseries", Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if resp.Status != "REQUEST_SUCCEEDED" {
		return nil, &ProviderError{
			Kind: KindValidation,
			Op:   "bls.timeseries",
			Err:  fmt.Errorf("request failed: %s (%s)", resp.Status, strings.Join(resp.Message, "; ")),
		}
	}

	return &resp, nil
}

// requestStartYear picks the earliest year needed across the descriptor
// set. Incremental fetches shrink the window only when every series has
// prior state; any series without state forces a full-history request.
func (c *BLSClient) requestStartYear(descs []model.SeriesDescriptor, since map[string]time.Time) int {
	minYear := 0
	for _, desc := range descs {
		s, ok := since[desc.SeriesKey]
		if !ok {
			return c.startYear
		}
		if minYear == 0 || s.Year() < minYear {
			minYear = s.Year()
		}
	}
	if minYear == 0 {
		return c.startYear
	}
	return minYear
}

// seriesObservations converts BLS (year, period) entries into dated raw
// observations, oldest-first. Non-monthly periods (annual averages such
// as M13) carry no calendar date and are skipped.
func (c *BLSClient) seriesObservations(seriesID string, data []blsDataEntry) []model.RawObservation {
	obs := make([]model.RawObservation, 0, len(data))
	for _, entry := range data {
		date, ok := blsDate(entry.Year, entry.Period)
		if !ok {
			c.logger.Debug("skipping non-monthly period",
				"series_id", seriesID,
				"year", entry.Year,
				"period", entry.Period,
			)
			continue
		}
		obs = append(obs, model.RawObservation{Date: date, Token: entry.Value})
	}

	// BLS returns most-recent-first; canonical order is oldest-first.
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date < obs[j].Date })
	return obs
}

// blsDate builds an ISO date from a BLS year and monthly period ("M01"
// through "M12" map to the first day of the month).
func blsDate(year, period string) (string, bool) {
	if len(period) != 3 || period[0] != 'M' {
		return "", false
	}
	month, err := strconv.Atoi(period[1:])
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-01", y, month), true
}

func filterSince(obs []model.RawObservation, since time.Time) []model.RawObservation {
	cutoff := since.Format(isoDate)
	filtered := make([]model.RawObservation, 0, len(obs))
	for _, o := range obs {
		if o.Date >= cutoff {
			filtered = append(filtered, o)
		}
	}
	return filtered
}
