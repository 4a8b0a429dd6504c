// Package config loads the connection settings of a table.Client from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"

	"github.com/syssam/entable/dialect"
)

// Row error policies.
const (
	RowErrorsAbort = "abort"
	RowErrorsSkip  = "skip"
)

// Config holds the connection handle settings.
type Config struct {
	// Dialect is "mysql" or "sqlite".
	Dialect string `yaml:"dialect"`
	// DSN is the driver data source name.
	DSN string `yaml:"dsn"`
	// Verbose logs every statement.
	Verbose bool `yaml:"verbose"`
	// RowErrors selects the row error policy, "abort" (default) or "skip".
	RowErrors string `yaml:"row_errors"`
	// SlowThreshold enables statement statistics and logs statements
	// slower than the threshold. Zero disables statistics.
	SlowThreshold time.Duration `yaml:"slow_threshold"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig configures the in-memory result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and fills defaults. MySQL DSNs are
// normalized with parseTime enabled so DATETIME columns scan into
// time.Time.
func (c *Config) Validate() error {
	switch c.Dialect {
	case dialect.MySQL:
		dsn, err := mysql.ParseDSN(c.DSN)
		if err != nil {
			return fmt.Errorf("config: invalid mysql dsn: %w", err)
		}
		dsn.ParseTime = true
		c.DSN = dsn.FormatDSN()
	case dialect.SQLite:
		if c.DSN == "" {
			return fmt.Errorf("config: sqlite dsn is required")
		}
	case "":
		return fmt.Errorf("config: dialect is required")
	default:
		return fmt.Errorf("config: unsupported dialect %q", c.Dialect)
	}
	switch c.RowErrors {
	case "":
		c.RowErrors = RowErrorsAbort
	case RowErrorsAbort, RowErrorsSkip:
	default:
		return fmt.Errorf("config: row_errors must be %q or %q, got %q", RowErrorsAbort, RowErrorsSkip, c.RowErrors)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return fmt.Errorf("config: connection limits must not be negative")
	}
	if c.SlowThreshold < 0 || c.ConnMaxLifetime < 0 || c.Cache.TTL < 0 {
		return fmt.Errorf("config: durations must not be negative")
	}
	return nil
}
