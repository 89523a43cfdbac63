package config

import (
	"errors"
	"fmt"

	"github.com/rickgao/econ-etl/internal/model"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if len(c.Series) == 0 {
		return errors.New("at least one series is required")
	}

	seen := make(map[string]struct{}, len(c.Series))
	for i, s := range c.Series {
		if s.Key == "" {
			return fmt.Errorf("series[%d].key is required", i)
		}
		if s.ID == "" {
			return fmt.Errorf("series[%d].id is required", i)
		}
		switch model.Source(s.Source) {
		case model.SourceFRED:
			if c.Providers.FRED.APIKey == "" {
				return errors.New("providers.fred.api_key is required when FRED series are configured")
			}
		case model.SourceBLS:
		default:
			return fmt.Errorf("series[%d].source must be FRED or BLS, got %q", i, s.Source)
		}
		if _, dup := seen[s.Key]; dup {
			return fmt.Errorf("series key %q is configured more than once", s.Key)
		}
		seen[s.Key] = struct{}{}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
