// Package config provides configuration management for the fetcher CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the fetcher.
type Config struct {
	// EUtils contains E-utilities client settings.
	EUtils EUtilsConfig `mapstructure:"eutils"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Output contains export settings.
	Output OutputConfig `mapstructure:"output"`
}

// EUtilsConfig holds E-utilities client configuration.
type EUtilsConfig struct {
	// BaseURL is the E-utilities base URL.
	BaseURL string `mapstructure:"base_url"`
	// Email identifies the caller on every request. Required by NCBI.
	Email string `mapstructure:"email"`
	// APIKey is the optional NCBI API key (env OPHTHA_EUTILS_API_KEY only).
	APIKey string `mapstructure:"-"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// BatchSize is the number of PMIDs per efetch call.
	BatchSize int `mapstructure:"batch_size"`
	// MaxRetries is the number of efetch retries.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryBaseDelay is the first retry backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
}

// OutputConfig holds export configuration.
type OutputConfig struct {
	// Dir is the directory export files are written to.
	Dir string `mapstructure:"dir"`
	// Format selects the export format (csv, text, xlsx, dois, all).
	Format string `mapstructure:"format"`
}

// Load loads configuration from defaults, an optional config file, and
// OPHTHA_-prefixed environment variables.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("OPHTHA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/ophtha-fetcher")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets load exclusively from the environment.
	cfg.EUtils.APIKey = os.Getenv("OPHTHA_EUTILS_API_KEY")

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("eutils.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("eutils.email", "")
	v.SetDefault("eutils.timeout", "30s")
	v.SetDefault("eutils.batch_size", 200)
	v.SetDefault("eutils.max_retries", 3)
	v.SetDefault("eutils.retry_base_delay", "1s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.add_source", false)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", "all")
}
