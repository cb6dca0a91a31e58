// Package config holds the engine settings for dagflow: worker pool
// sizing, run defaults, persistence, and logging. Settings load from
// YAML or JSON files and fall back to defaults field by field.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Settings is the enumerated engine configuration.
type Settings struct {
	// PoolSize is the number of workers in the default execution
	// pool nodes use to offload blocking work.
	PoolSize int `yaml:"pool_size" json:"pool_size"`

	// Streaming makes new run contexts streaming-style by default.
	Streaming bool `yaml:"streaming" json:"streaming"`

	// RunStorePath is the SQLite file used to persist run snapshots.
	// Empty disables persistence; ":memory:" is accepted for tests.
	RunStorePath string `yaml:"run_store_path" json:"run_store_path"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format" json:"log_format"`
}

// Default returns the settings used when no file is provided.
func Default() Settings {
	return Settings{
		PoolSize:  4,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Validate checks field values, returning the first problem found.
func (s Settings) Validate() error {
	if s.PoolSize < 0 {
		return fmt.Errorf("pool_size must not be negative, got %d", s.PoolSize)
	}
	switch strings.ToLower(s.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", s.LogLevel)
	}
	switch strings.ToLower(s.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", s.LogFormat)
	}
	return nil
}

// Logger builds a slog.Logger writing to w according to LogLevel and
// LogFormat. Unknown values fall back to info-level text output.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(s.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
