package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rickgao/econ-etl/internal/model"
)

const isoDate = "2006-01-02"

// FREDClient fetches series from the FRED observations API. FRED answers
// one series per request, so a multi-series fetch is a sequence of calls.
type FREDClient struct {
	*client
	baseURL string
	apiKey  string
}

// NewFRED creates a FRED API client.
func NewFRED(baseURL, apiKey string, opts ...Option) *FREDClient {
	return &FREDClient{
		client:  newClient(opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Source returns the provider identity.
func (c *FREDClient) Source() model.Source {
	return model.SourceFRED
}

// fredResponse is the subset of the FRED observations payload we consume.
// Per-observation realtime windows and request echo fields are volatile
// between runs and deliberately excluded.
type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Fetch retrieves one RawBatch per descriptor. Failures are reported per
// series key in the second map; successful series are unaffected by them.
func (c *FREDClient) Fetch(ctx context.Context, descs []model.SeriesDescriptor, since map[string]time.Time) (map[string]model.RawBatch, map[string]error) {
	batches := make(map[string]model.RawBatch, len(descs))
	failures := make(map[string]error)

	for _, desc := range descs {
		var sinceDate *time.Time
		if s, ok := since[desc.SeriesKey]; ok {
			sinceDate = &s
		}

		batch, err := c.fetchSeries(ctx, desc, sinceDate)
		if err != nil {
			failures[desc.SeriesKey] = err
			continue
		}
		batches[desc.SeriesKey] = batch
	}

	return batches, failures
}

func (c *FREDClient) fetchSeries(ctx context.Context, desc model.SeriesDescriptor, since *time.Time) (model.RawBatch, error) {
	query := url.Values{}
	query.Set("series_id", desc.ProviderSeriesID)
	query.Set("api_key", c.apiKey)
	query.Set("file_type", "json")
	if since != nil {
		query.Set("observation_start", since.Format(isoDate))
	}

	fullURL := c.baseURL + "/series/observations?" + query.Encode()

	body, err := c.doWithRetry(ctx, "fred.observations", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	})
	if err != nil {
		return model.RawBatch{}, fmt.Errorf("fetch %s: %w", desc.SeriesKey, err)
	}

	var resp fredResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.RawBatch{}, &ProviderError{Kind: KindValidation, Op: "fred.observations", Err: fmt.Errorf("unmarshal %s: %w", desc.SeriesKey, err)}
	}
	if resp.Observations == nil {
		return model.RawBatch{}, &ProviderError{Kind: KindValidation, Op: "fred.observations", Err: fmt.Errorf("%s: response has no observations", desc.SeriesKey)}
	}

	obs := make([]model.RawObservation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		obs = append(obs, model.RawObservation{Date: o.Date, Token: o.Value})
	}

	return model.RawBatch{
		SeriesKey:    desc.SeriesKey,
		Source:       model.SourceFRED,
		FetchedAt:    c.now(),
		Raw:          model.CanonicalRaw(obs),
		Observations: obs,
	}, nil
}
