package config

import (
	"time"

	"github.com/rickgao/econ-etl/internal/model"
)

// Config is the root configuration for an ETL run.
type Config struct {
	Providers ProvidersConfig `yaml:"providers"`
	Database  DBConfig        `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Series    []SeriesConfig  `yaml:"series"`
}

// ProvidersConfig holds per-provider API settings.
type ProvidersConfig struct {
	FRED ProviderConfig `yaml:"fred"`
	BLS  BLSConfig      `yaml:"bls"`
}

// ProviderConfig holds settings common to both providers.
type ProviderConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"` // Total attempts, not retries after the first
	RateLimit  float64       `yaml:"rate_limit"`  // Requests per second
	RateBurst  int           `yaml:"rate_burst"`
}

// BLSConfig extends the common provider settings with the start year for
// full-history requests (the BLS API is windowed by year).
type BLSConfig struct {
	ProviderConfig `yaml:",inline"`
	StartYear      int `yaml:"start_year"`
}

// DBConfig holds the destination database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// StorageConfig holds local storage paths.
type StorageConfig struct {
	RawDir string `yaml:"raw_dir"`
}

// SeriesConfig declares one series to ingest.
type SeriesConfig struct {
	Key         string `yaml:"key"`    // Stable internal key, e.g. "UNRATE"
	Source      string `yaml:"source"` // "FRED" or "BLS"
	ID          string `yaml:"id"`     // Provider series ID
	Description string `yaml:"description"`
	Unit        string `yaml:"unit"`
}

// Descriptors converts the configured catalog into model descriptors,
// preserving order.
func (c *Config) Descriptors() []model.SeriesDescriptor {
	descs := make([]model.SeriesDescriptor, 0, len(c.Series))
	for _, s := range c.Series {
		descs = append(descs, model.SeriesDescriptor{
			Source:           model.Source(s.Source),
			ProviderSeriesID: s.ID,
			SeriesKey:        s.Key,
			Description:      s.Description,
			Unit:             s.Unit,
		})
	}
	return descs
}
