package config

import (
	"errors"
	"runtime"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"DBPath", cfg.DBPath, "xpypact.db"},
		{"OutDir", cfg.OutDir, "parquet"},
		{"Workers", cfg.Workers, runtime.NumCPU()},
		{"Override", cfg.Override, false},
		{"Partition", cfg.Partition, false},
		{"LogMode", cfg.LogMode, LogModeDev},
		{"Verbose", cfg.Verbose, false},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"MetricsFile", cfg.MetricsFile, ""},
		{"ReadOnly", cfg.ReadOnly, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "db_path",
			envKey: "XPYPACT_DB_PATH",
			envVal: "/tmp/fispact.db",
			field:  func(c Config) any { return c.DBPath },
			want:   "/tmp/fispact.db",
		},
		{
			name:   "out_dir",
			envKey: "XPYPACT_OUT_DIR",
			envVal: "/tmp/out",
			field:  func(c Config) any { return c.OutDir },
			want:   "/tmp/out",
		},
		{
			name:   "workers",
			envKey: "XPYPACT_WORKERS",
			envVal: "3",
			field:  func(c Config) any { return c.Workers },
			want:   3,
		},
		{
			name:   "partition",
			envKey: "XPYPACT_PARTITION",
			envVal: "true",
			field:  func(c Config) any { return c.Partition },
			want:   true,
		},
		{
			name:   "log_mode",
			envKey: "XPYPACT_LOG_MODE",
			envVal: "prod",
			field:  func(c Config) any { return c.LogMode },
			want:   LogModeProd,
		},
		{
			name:   "telemetry_path",
			envKey: "XPYPACT_TELEMETRY_PATH",
			envVal: "events.jsonl",
			field:  func(c Config) any { return c.TelemetryPath },
			want:   "events.jsonl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so XPYPACT_* env vars map to config keys.
			viper.SetEnvPrefix("XPYPACT")
			viper.AutomaticEnv()
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{Workers: 1, LogMode: LogModeProd}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -2 }, true},
		{"unknown log mode", func(c *Config) { c.LogMode = "verbose" }, true},
		{"empty log mode", func(c *Config) { c.LogMode = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}
}
