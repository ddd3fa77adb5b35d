package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the project config from <root>/.skd.yaml. A missing file is
// not an error; defaults and SKD_* environment overrides still apply.
func Load(root string) (*Config, error) {
	return LoadFrom(filepath.Join(root, ConfigFileName))
}

// LoadFrom reads config from an explicit file path.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Defaults must be registered for env overrides to unmarshal.
	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("daemon.debounce_ms", defaults.Daemon.DebounceMs)
	v.SetDefault("dashboard.enabled", defaults.Dashboard.Enabled)
	v.SetDefault("dashboard.port", defaults.Dashboard.Port)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.max_size_mb", defaults.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", defaults.Log.MaxBackups)
	v.SetDefault("log.max_age_days", defaults.Log.MaxAgeDays)

	v.SetEnvPrefix("SKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	if cfg.Daemon.DebounceMs < 0 {
		return fmt.Errorf("daemon.debounce_ms cannot be negative: %d", cfg.Daemon.DebounceMs)
	}
	if cfg.Dashboard.Port < 1 || cfg.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port out of range: %d", cfg.Dashboard.Port)
	}
	return nil
}
