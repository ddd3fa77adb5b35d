// Package config loads and writes skd project configuration.
//
// Configuration lives in a .skd.yaml file at the project root and can be
// overridden per key with SKD_* environment variables (SKD_DASHBOARD_PORT,
// SKD_DAEMON_DEBOUNCE_MS, and so on).
package config

import (
	"path/filepath"
	"time"
)

// Config represents the full skd configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Database configuration
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon" mapstructure:"daemon"`

	// Dashboard configuration
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`

	// Log configuration
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// DatabaseConfig configures the SQLite mirror
type DatabaseConfig struct {
	// Path to the database file, relative to the project root unless absolute
	Path string `yaml:"path" mapstructure:"path"`
}

// DaemonConfig configures the watch daemon
type DaemonConfig struct {
	// DebounceMs is the per-path quiet interval in milliseconds
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// DashboardConfig configures the WebSocket feed
type DashboardConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Port    int  `yaml:"port" mapstructure:"port"`
}

// LogConfig configures daemon log output and rotation
type LogConfig struct {
	// File routes daemon logs to a rotating file; empty means stderr
	File string `yaml:"file" mapstructure:"file"`

	// Rotation knobs, applied only when File is set
	MaxSizeMB  int `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// Debounce returns the daemon debounce interval as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Daemon.DebounceMs) * time.Millisecond
}

// DatabasePath resolves the configured database path against the project
// root. Absolute paths are returned unchanged.
func (c *Config) DatabasePath(root string) string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(root, c.Database.Path)
}

// LogFilePath resolves the configured log file against the project root,
// or returns empty when logging goes to stderr.
func (c *Config) LogFilePath(root string) string {
	if c.Log.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(root, c.Log.File)
}
