// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and RINGSIDE_* env vars.
// - Validation failures wrap ErrInvalidConfig; loading failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir is the root under which the per-participant CSV files live.
	DataDir string `koanf:"data_dir"`

	// AppendMode reuses existing destinations instead of truncating them.
	// Headers are never rewritten onto a non-empty destination.
	AppendMode bool `koanf:"append_mode"`

	// LegacyHeaderSpacing keeps the ", " separator in outcome headers.
	LegacyHeaderSpacing bool `koanf:"legacy_header_spacing"`

	// FlushIntervalMS is the periodic flush cadence; 0 disables the flusher.
	FlushIntervalMS int `koanf:"flush_interval_ms"`

	// EventQueueSize bounds the in-memory event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the event id deduplication window.
	DedupeSize int `koanf:"dedupe_size"`

	// Viewpoint is the participant the feedback is addressed to (0 or 1).
	Viewpoint int `koanf:"viewpoint"`

	// StageWidth is used to centre feedback lines when rendering.
	StageWidth int `koanf:"stage_width"`

	// MetricsEnabled toggles per-event telemetry counters.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshMS is how often system and service gauges are refreshed.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		DataDir:             ".",
		AppendMode:          false,
		LegacyHeaderSpacing: true,
		FlushIntervalMS:     1000,
		EventQueueSize:      10_000,
		WorkerCount:         2,
		DedupeSize:          100_000,
		Viewpoint:           0,
		StageWidth:          960,
		MetricsEnabled:      true,
		MetricsRefreshMS:    10_000,
	}
}

// FlushInterval returns FlushIntervalMS as a duration.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.Viewpoint != 0 && c.Viewpoint != 1:
		return fmt.Errorf("%w: viewpoint must be 0 or 1, got %d", ErrInvalidConfig, c.Viewpoint)
	case c.FlushIntervalMS < 0:
		return fmt.Errorf("%w: flush_interval_ms must not be negative", ErrInvalidConfig)
	case c.MetricsRefreshMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_ms must be positive", ErrInvalidConfig)
	}
	return nil
}
