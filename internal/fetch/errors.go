package fetch

import "fmt"

// Kind classifies a provider error for retry and reporting decisions.
type Kind int

const (
	// KindNetwork covers timeouts, connection failures, and 5xx responses.
	KindNetwork Kind = iota
	// KindRateLimit covers 429 responses; retried with a longer backoff.
	KindRateLimit
	// KindAuth covers 401/403 responses; never retried.
	KindAuth
	// KindValidation covers malformed requests or response shapes; never retried.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRateLimit:
		return "rate_limit"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ProviderError represents a failed provider request.
type ProviderError struct {
	Kind       Kind
	Op         string // e.g., "fred.observations", "bls.timeseries"
	StatusCode int    // 0 when no HTTP response was received
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable returns true if the error should trigger a retry.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindRateLimit
}

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(status int) Kind {
	switch {
	case status == 429:
		return KindRateLimit
	case status == 401 || status == 403:
		return KindAuth
	case status >= 500:
		return KindNetwork
	default:
		return KindValidation
	}
}
