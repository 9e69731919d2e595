package config

import (
	"time"

	"github.com/s0up4200/tusdatos/tusdatos"
)

// Config represents the complete configuration structure
type Config struct {
	TusDatos TusDatosConfig `mapstructure:"tusdatos"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Filters  FilterConfig   `mapstructure:"filters"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TusDatosConfig holds API connection details
type TusDatosConfig struct {
	Environment string        `mapstructure:"environment"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// Env returns the configured environment
func (c TusDatosConfig) Env() tusdatos.Environment {
	return tusdatos.Environment(c.Environment)
}

// TrackerConfig controls job polling
type TrackerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Concurrency  int           `mapstructure:"concurrency"`
}

// FilterConfig contains named history filter presets
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
