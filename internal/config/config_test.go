package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rickgao/econ-etl/internal/model"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "econetl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const minimalYAML = `
providers:
  fred:
    api_key: test-key
database:
  host: localhost
  name: econ_test
  user: testuser
  password: testpass
series:
  - key: UNRATE
    source: FRED
    id: UNRATE
    description: Unemployment Rate
    unit: percent
`

func TestLoad(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Providers.FRED.APIKey != "test-key" {
		t.Errorf("Providers.FRED.APIKey = %q, want %q", cfg.Providers.FRED.APIKey, "test-key")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if len(cfg.Series) != 1 {
		t.Fatalf("len(Series) = %d, want 1", len(cfg.Series))
	}
	if cfg.Series[0].Key != "UNRATE" {
		t.Errorf("Series[0].Key = %q, want %q", cfg.Series[0].Key, "UNRATE")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
providers:
  fred:
    api_key: test-key
database:
  host: localhost
  name: econ_test
  user: testuser
  password: ${TEST_DB_PASSWORD}
series:
  - key: UNRATE
    source: FRED
    id: UNRATE
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Providers.FRED.BaseURL != DefaultFREDURL {
		t.Errorf("Providers.FRED.BaseURL = %q, want default %q", cfg.Providers.FRED.BaseURL, DefaultFREDURL)
	}
	if cfg.Providers.BLS.BaseURL != DefaultBLSURL {
		t.Errorf("Providers.BLS.BaseURL = %q, want default %q", cfg.Providers.BLS.BaseURL, DefaultBLSURL)
	}
	if cfg.Providers.FRED.Timeout != DefaultAPITimeout {
		t.Errorf("Providers.FRED.Timeout = %v, want default %v", cfg.Providers.FRED.Timeout, DefaultAPITimeout)
	}
	if cfg.Providers.FRED.MaxRetries != DefaultMaxRetries {
		t.Errorf("Providers.FRED.MaxRetries = %d, want default %d", cfg.Providers.FRED.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Providers.BLS.StartYear != DefaultBLSStartYear {
		t.Errorf("Providers.BLS.StartYear = %d, want default %d", cfg.Providers.BLS.StartYear, DefaultBLSStartYear)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.MaxConns != DefaultMaxConns {
		t.Errorf("Database.MaxConns = %d, want default %d", cfg.Database.MaxConns, DefaultMaxConns)
	}
	if cfg.Storage.RawDir != DefaultRawDir {
		t.Errorf("Storage.RawDir = %q, want default %q", cfg.Storage.RawDir, DefaultRawDir)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Providers: ProvidersConfig{
				FRED: ProviderConfig{APIKey: "key"},
			},
			Database: DBConfig{
				Host:     "localhost",
				Name:     "econ",
				User:     "u",
				Password: "p",
				MaxConns: 10,
				MinConns: 2,
			},
			Series: []SeriesConfig{
				{Key: "UNRATE", Source: "FRED", ID: "UNRATE"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database.host is required",
		},
		{
			name:    "missing password",
			mutate:  func(c *Config) { c.Database.Password = "" },
			wantErr: "database.password is required",
		},
		{
			name:    "no series",
			mutate:  func(c *Config) { c.Series = nil },
			wantErr: "at least one series is required",
		},
		{
			name:    "unknown source",
			mutate:  func(c *Config) { c.Series[0].Source = "OECD" },
			wantErr: "must be FRED or BLS",
		},
		{
			name:    "missing series key",
			mutate:  func(c *Config) { c.Series[0].Key = "" },
			wantErr: "series[0].key is required",
		},
		{
			name: "duplicate series key",
			mutate: func(c *Config) {
				c.Series = append(c.Series, SeriesConfig{Key: "UNRATE", Source: "FRED", ID: "UNRATE2"})
			},
			wantErr: "configured more than once",
		},
		{
			name: "fred key required for fred series",
			mutate: func(c *Config) {
				c.Providers.FRED.APIKey = ""
			},
			wantErr: "providers.fred.api_key is required",
		},
		{
			name: "min conns exceeds max",
			mutate: func(c *Config) {
				c.Database.MinConns = 20
			},
			wantErr: "cannot exceed max_conns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDescriptors(t *testing.T) {
	cfg := Config{
		Series: []SeriesConfig{
			{Key: "UNRATE", Source: "FRED", ID: "UNRATE", Description: "Unemployment Rate", Unit: "percent"},
			{Key: "CPI_URBAN", Source: "BLS", ID: "CUUR0000SA0", Description: "CPI", Unit: "index"},
		},
	}

	descs := cfg.Descriptors()
	if len(descs) != 2 {
		t.Fatalf("len(descs) = %d, want 2", len(descs))
	}
	if descs[0].Source != model.SourceFRED {
		t.Errorf("descs[0].Source = %q, want %q", descs[0].Source, model.SourceFRED)
	}
	if descs[1].ProviderSeriesID != "CUUR0000SA0" {
		t.Errorf("descs[1].ProviderSeriesID = %q, want %q", descs[1].ProviderSeriesID, "CUUR0000SA0")
	}
	if descs[1].SeriesKey != "CPI_URBAN" {
		t.Errorf("descs[1].SeriesKey = %q, want %q", descs[1].SeriesKey, "CPI_URBAN")
	}
}
