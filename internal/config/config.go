// Package config defines the daisd process configuration and its loading
// rules. Configuration is layered: compiled-in defaults, then an optional
// YAML file named by the DAIS_CONFIG environment variable, then DAIS_
// prefixed environment variables. Later layers win.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for configuration structs.
var validate = validator.New()

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Backend selects the store implementation. The sqlite backend
	// persists to a database file; the memory backend keeps everything
	// in process and is meant for demos and tests.
	Backend string `koanf:"backend" yaml:"backend" validate:"required,oneof=sqlite memory"`

	// Path is the SQLite database file. Ignored by the memory backend.
	Path string `koanf:"path" yaml:"path" validate:"required_if=Backend sqlite"`
}

// ComputeConfig bounds the compute pipeline's most expensive entry points.
type ComputeConfig struct {
	// RatePerMinute caps how many compute requests the HTTP API accepts
	// per minute. Compute is the heaviest operation in the system, so
	// the cap protects live scoring from accidental hammering.
	RatePerMinute int `koanf:"rate_per_minute" yaml:"rate_per_minute" validate:"min=1"`

	// RateBurst is the burst allowance on top of RatePerMinute.
	RateBurst int `koanf:"rate_burst" yaml:"rate_burst" validate:"min=1"`

	// RecomputeConcurrency bounds how many rounds a batch recompute
	// processes in parallel.
	RecomputeConcurrency int `koanf:"recompute_concurrency" yaml:"recompute_concurrency" validate:"min=1,max=64"`
}

// Config contains the full daisd process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" yaml:"addr" validate:"required"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" yaml:"log_format" validate:"oneof=text json"`

	// Storage configures the persistence backend.
	Storage StorageConfig `koanf:"storage" yaml:"storage"`

	// Compute configures rate limiting and batch concurrency.
	Compute ComputeConfig `koanf:"compute" yaml:"compute"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    "dais.db",
		},
		Compute: ComputeConfig{
			RatePerMinute:        30,
			RateBurst:            5,
			RecomputeConcurrency: 4,
		},
	}
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
