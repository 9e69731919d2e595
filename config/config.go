package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/tusdatos/tusdatos"
)

// EnvPrefix prefixes environment variable overrides, e.g. TUSDATOS_LOGGING_LEVEL
const EnvPrefix = "TUSDATOS"

// shortEnv maps the connection keys to shorter variable names than the
// prefixed form TUSDATOS_TUSDATOS_*.
var shortEnv = map[string]string{
	"tusdatos.environment": "TUSDATOS_ENVIRONMENT",
	"tusdatos.username":    "TUSDATOS_USERNAME",
	"tusdatos.password":    "TUSDATOS_PASSWORD",
	"tusdatos.timeout":     "TUSDATOS_TIMEOUT",
}

// Load loads the configuration. An explicit configPath must exist; without
// one the standard locations are searched and a missing file leaves the
// defaults and environment variables in effect.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindShortEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tusdatos"))
		}

		v.AddConfigPath("/etc/tusdatos/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func bindShortEnv(v *viper.Viper) {
	for key, env := range shortEnv {
		// BindEnv only fails without a key
		_ = v.BindEnv(key, env)
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TusDatos defaults
	v.SetDefault("tusdatos.environment", string(tusdatos.Testing))
	v.SetDefault("tusdatos.username", "")
	v.SetDefault("tusdatos.password", "")
	v.SetDefault("tusdatos.timeout", tusdatos.DefaultTimeout)
	v.SetDefault("tusdatos.user_agent", "")

	// Tracker defaults
	v.SetDefault("tracker.poll_interval", "5s")
	v.SetDefault("tracker.concurrency", 4)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if _, err := tusdatos.ResolveBaseURL(cfg.TusDatos.Env()); err != nil {
		return fmt.Errorf("tusdatos.environment: %w", err)
	}

	if cfg.TusDatos.Env() == tusdatos.Production && (cfg.TusDatos.Username == "" || cfg.TusDatos.Password == "") {
		return fmt.Errorf("tusdatos.username and tusdatos.password are required in the production environment")
	}

	if cfg.TusDatos.Timeout <= 0 {
		return fmt.Errorf("tusdatos.timeout must be positive, got %s", cfg.TusDatos.Timeout)
	}

	if cfg.Tracker.PollInterval <= 0 {
		return fmt.Errorf("tracker.poll_interval must be positive, got %s", cfg.Tracker.PollInterval)
	}

	if cfg.Tracker.Concurrency < 1 {
		return fmt.Errorf("tracker.concurrency must be at least 1, got %d", cfg.Tracker.Concurrency)
	}

	for name, expression := range cfg.Filters {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filters.%s: empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
