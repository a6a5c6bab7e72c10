// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite event store file.
	DBPath string `koanf:"db_path"`

	// SaveEventThreshold triggers a durable save after this many appended
	// events since the last save.
	SaveEventThreshold int `koanf:"save_event_threshold"`

	// SaveIntervalSeconds triggers a durable save after this much elapsed
	// time since the last save, checked on each append.
	SaveIntervalSeconds int `koanf:"save_interval_seconds"`

	// SaveQueueSize bounds the in-memory save-request queue.
	SaveQueueSize int `koanf:"save_queue_size"`

	// SaveWorkerCount sets the number of save workers draining the queue.
	SaveWorkerCount int `koanf:"save_worker_count"`

	// DedupeSize sets the size of the intake deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		DBPath:              "sideout.db",
		SaveEventThreshold:  10,
		SaveIntervalSeconds: 30,
		SaveQueueSize:       1024,
		SaveWorkerCount:     1,
		DedupeSize:          50_000,
	}
}
