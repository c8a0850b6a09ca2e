// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// InputPath is analyzed at startup when set.
	InputPath string `koanf:"input_path"`

	// WatchInput re-analyzes InputPath whenever it changes.
	WatchInput bool `koanf:"watch_input"`

	// QueueSize bounds the analysis job queue.
	QueueSize int `koanf:"queue_size" validate:"gte=1"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// DedupeSize sets how many upload digests are remembered.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=1"`

	// StoreDriver selects the snapshot store: memory or sqlite.
	StoreDriver string `koanf:"store_driver" validate:"oneof=memory sqlite"`

	// SQLitePath is the database file of the sqlite driver.
	SQLitePath string `koanf:"sqlite_path" validate:"required_if=StoreDriver sqlite"`

	// SnapshotRetention caps stored snapshots; 0 keeps all.
	SnapshotRetention int `koanf:"snapshot_retention" validate:"gte=0"`

	// Parallel evaluates aggregation views concurrently.
	Parallel bool `koanf:"parallel"`

	// MaxUploadBytes caps POST /runs bodies.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"gte=1"`

	// TraceStdout exports pipeline spans to stdout.
	TraceStdout bool `koanf:"trace_stdout"`

	// ParetoMetrics maps metric names to maximize or minimize. Empty uses
	// the default metric set.
	ParetoMetrics map[string]string `koanf:"pareto_metrics"`

	// Pareto is the inline form "metric=direction,...", convenient from env.
	// It takes precedence over ParetoMetrics.
	Pareto string `koanf:"pareto"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         64,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        4096,
		StoreDriver:       "memory",
		SQLitePath:        "minestats.db",
		SnapshotRetention: 32,
		MaxUploadBytes:    32 << 20,
	}
}
