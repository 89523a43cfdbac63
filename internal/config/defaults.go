package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultFREDURL    = "https://api.stlouisfed.org/fred"
	DefaultBLSURL     = "https://api.bls.gov/publicAPI/v2"
	DefaultAPITimeout = 30 * time.Second
	DefaultMaxRetries = 3

	// FRED allows 120 req/min, BLS 500 req/day for registered keys;
	// both defaults stay well inside those limits.
	DefaultFREDRateLimit = 1.0
	DefaultBLSRateLimit  = 0.5
	DefaultRateBurst     = 1

	DefaultBLSStartYear = 2000

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultRawDir = "data/raw"
)

func (c *Config) applyDefaults() {
	applyProviderDefaults(&c.Providers.FRED, DefaultFREDURL, DefaultFREDRateLimit)
	applyProviderDefaults(&c.Providers.BLS.ProviderConfig, DefaultBLSURL, DefaultBLSRateLimit)
	if c.Providers.BLS.StartYear == 0 {
		c.Providers.BLS.StartYear = DefaultBLSStartYear
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	if c.Storage.RawDir == "" {
		c.Storage.RawDir = DefaultRawDir
	}
}

func applyProviderDefaults(p *ProviderConfig, baseURL string, rateLimit float64) {
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	if p.Timeout == 0 {
		p.Timeout = DefaultAPITimeout
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.RateLimit == 0 {
		p.RateLimit = rateLimit
	}
	if p.RateBurst == 0 {
		p.RateBurst = DefaultRateBurst
	}
}
