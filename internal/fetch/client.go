package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// client is the shared HTTP core for both provider clients.
type client struct {
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter

	maxAttempts  int
	retryBackoff time.Duration

	// sleep waits for the backoff delay; injectable so tests can run
	// without real delays.
	sleep func(context.Context, time.Duration) error

	now func() time.Time
}

// Option configures a provider client.
type Option func(*client)

func newClient(opts ...Option) *client {
	c := &client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxAttempts:  3,
		retryBackoff: time.Second,
		sleep:        sleepContext,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the total attempt limit and base backoff.
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(c *client) {
		c.maxAttempts = attempts
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps outgoing requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSleep replaces the backoff sleep function (for tests).
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *client) {
		c.sleep = sleep
	}
}

// WithClock replaces the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(c *client) {
		c.now = now
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// do performs a single request and classifies any failure.
func (c *client) do(ctx context.Context, op string, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := build(ctx)
	if err != nil {
		return nil, &ProviderError{Kind: KindValidation, Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Kind: KindNetwork, Op: op, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &ProviderError{
			Kind:       classifyStatus(resp.StatusCode),
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	return body, nil
}

// doWithRetry performs a request with exponential backoff retry, bounded
// at maxAttempts total attempts. Rate-limit responses double the delay.
func (c *client) doWithRetry(ctx context.Context, op string, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			// Add jitter: backoff * (0.5 to 1.5)
			delay := backoff/2 + time.Duration(rand.Int63n(int64(backoff)))
			var perr *ProviderError
			if errors.As(lastErr, &perr) && perr.Kind == KindRateLimit {
				delay *= 2
			}

			c.logger.Debug("retrying request",
				"op", op,
				"attempt", attempt,
				"backoff", delay,
			)

			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			backoff *= 2
		}

		body, err := c.do(ctx, op, build)
		if err == nil {
			return body, nil
		}

		lastErr = err

		var perr *ProviderError
		if !errors.As(err, &perr) || !perr.Retryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max attempts exceeded: %w", lastErr)
}
