package config

import (
	"fmt"
	"os"
)

// Default values applied when no config file is present.
const (
	DefaultDatabasePath = ".skd/speckit.db"
	DefaultDebounceMs   = 400
	DefaultPort         = 8080
	DefaultMaxSizeMB    = 10
	DefaultMaxBackups   = 3
	DefaultMaxAgeDays   = 28
)

// ConfigFileName is the per-project config file, relative to the root.
const ConfigFileName = ".skd.yaml"

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Database: DatabaseConfig{
			Path: DefaultDatabasePath,
		},
		Daemon: DaemonConfig{
			DebounceMs: DefaultDebounceMs,
		},
		Dashboard: DashboardConfig{
			Enabled: false,
			Port:    DefaultPort,
		},
		Log: LogConfig{
			File:       "",
			MaxSizeMB:  DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
			MaxAgeDays: DefaultMaxAgeDays,
		},
	}
}

// defaultConfigTemplate is written by WriteDefault. Comments document each
// key so a fresh project is self-describing.
const defaultConfigTemplate = `# skd configuration
version: "1.0"

database:
  # SQLite mirror location, relative to the project root
  path: .skd/speckit.db

daemon:
  # Quiet interval before a changed document is synced (milliseconds)
  debounce_ms: 400

dashboard:
  # Serve a WebSocket activity feed while watching
  enabled: false
  port: 8080

log:
  # Route daemon logs to a rotating file; empty logs to stderr
  file: ""
  max_size_mb: 10
  max_backups: 3
  max_age_days: 28
`

// WriteDefault writes the commented default config template to path.
// Fails if a file already exists there.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
