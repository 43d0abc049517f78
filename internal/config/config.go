// Package config loads runtime configuration for the xpypact CLI.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Log modes accepted by the log_mode key.
const (
	LogModeDev  = "dev"
	LogModeProd = "prod"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid")

// Config holds all runtime configuration for an xpypact run.
// Values are populated from .xpypact.yaml, XPYPACT_* env vars, and CLI flags.
type Config struct {
	DBPath        string `mapstructure:"db_path"`
	OutDir        string `mapstructure:"out_dir"`
	Workers       int    `mapstructure:"workers"`
	Override      bool   `mapstructure:"override"`
	Partition     bool   `mapstructure:"partition"`
	LogMode       string `mapstructure:"log_mode"`
	Verbose       bool   `mapstructure:"verbose"`
	TelemetryPath string `mapstructure:"telemetry_path"`
	MetricsFile   string `mapstructure:"metrics_file"`
	ReadOnly      bool   `mapstructure:"read_only"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("db_path", "xpypact.db")
	viper.SetDefault("out_dir", "parquet")
	viper.SetDefault("workers", runtime.NumCPU())
	viper.SetDefault("override", false)
	viper.SetDefault("partition", false)
	viper.SetDefault("log_mode", LogModeDev)
	viper.SetDefault("verbose", false)
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("metrics_file", "")
	viper.SetDefault("read_only", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the CLI cannot run with.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	switch c.LogMode {
	case LogModeDev, LogModeProd:
	default:
		return fmt.Errorf("%w: unknown log_mode %q", ErrInvalid, c.LogMode)
	}
	return nil
}
