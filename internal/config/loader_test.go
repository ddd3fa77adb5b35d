package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Version != "1.0" {
		t.Errorf("Version = %q, want %q", cfg.Version, "1.0")
	}
	if cfg.Database.Path != ".skd/speckit.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, ".skd/speckit.db")
	}
	if cfg.Daemon.DebounceMs != 400 {
		t.Errorf("Daemon.DebounceMs = %d, want 400", cfg.Daemon.DebounceMs)
	}
	if cfg.Dashboard.Enabled {
		t.Error("Dashboard.Enabled = true, want false")
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d, want 8080", cfg.Dashboard.Port)
	}
	if cfg.Log.File != "" {
		t.Errorf("Log.File = %q, want empty", cfg.Log.File)
	}
	if cfg.Log.MaxSizeMB != 10 || cfg.Log.MaxBackups != 3 || cfg.Log.MaxAgeDays != 28 {
		t.Errorf("rotation defaults = %d/%d/%d, want 10/3/28",
			cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != DefaultDatabasePath {
		t.Errorf("Database.Path = %q, want default %q", cfg.Database.Path, DefaultDatabasePath)
	}
	if cfg.Daemon.DebounceMs != DefaultDebounceMs {
		t.Errorf("Daemon.DebounceMs = %d, want default %d", cfg.Daemon.DebounceMs, DefaultDebounceMs)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	content := `version: "1.0"
database:
  path: data/mirror.db
daemon:
  debounce_ms: 250
dashboard:
  enabled: true
  port: 9090
log:
  file: logs/skd.log
  max_backups: 5
`
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "data/mirror.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "data/mirror.db")
	}
	if cfg.Daemon.DebounceMs != 250 {
		t.Errorf("Daemon.DebounceMs = %d, want 250", cfg.Daemon.DebounceMs)
	}
	if !cfg.Dashboard.Enabled {
		t.Error("Dashboard.Enabled = false, want true")
	}
	if cfg.Dashboard.Port != 9090 {
		t.Errorf("Dashboard.Port = %d, want 9090", cfg.Dashboard.Port)
	}
	if cfg.Log.File != "logs/skd.log" {
		t.Errorf("Log.File = %q, want %q", cfg.Log.File, "logs/skd.log")
	}
	if cfg.Log.MaxBackups != 5 {
		t.Errorf("Log.MaxBackups = %d, want 5", cfg.Log.MaxBackups)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Log.MaxSizeMB != DefaultMaxSizeMB {
		t.Errorf("Log.MaxSizeMB = %d, want default %d", cfg.Log.MaxSizeMB, DefaultMaxSizeMB)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte("database: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(root); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "empty database path",
			content: "database:\n  path: \"\"\n",
			wantErr: "database.path",
		},
		{
			name:    "negative debounce",
			content: "daemon:\n  debounce_ms: -1\n",
			wantErr: "debounce_ms",
		},
		{
			name:    "port out of range",
			content: "dashboard:\n  port: 70000\n",
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			_, err := Load(root)
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SKD_DASHBOARD_PORT", "9999")
	t.Setenv("SKD_DATABASE_PATH", "/var/lib/skd/mirror.db")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Dashboard.Port != 9999 {
		t.Errorf("Dashboard.Port = %d, want env override 9999", cfg.Dashboard.Port)
	}
	if cfg.Database.Path != "/var/lib/skd/mirror.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("SKD_DAEMON_DEBOUNCE_MS", "50")

	root := t.TempDir()
	content := "daemon:\n  debounce_ms: 900\n"
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Daemon.DebounceMs != 50 {
		t.Errorf("Daemon.DebounceMs = %d, want env override 50", cfg.Daemon.DebounceMs)
	}
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	// The template must round-trip to the same values as DefaultConfig.
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	want := DefaultConfig()
	if cfg.Database.Path != want.Database.Path {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, want.Database.Path)
	}
	if cfg.Daemon.DebounceMs != want.Daemon.DebounceMs {
		t.Errorf("Daemon.DebounceMs = %d, want %d", cfg.Daemon.DebounceMs, want.Daemon.DebounceMs)
	}
	if cfg.Dashboard.Port != want.Dashboard.Port {
		t.Errorf("Dashboard.Port = %d, want %d", cfg.Dashboard.Port, want.Dashboard.Port)
	}
	if cfg.Log.MaxAgeDays != want.Log.MaxAgeDays {
		t.Errorf("Log.MaxAgeDays = %d, want %d", cfg.Log.MaxAgeDays, want.Log.MaxAgeDays)
	}

	// A second write must refuse to clobber the file.
	if err := WriteDefault(path); err == nil {
		t.Error("WriteDefault() on existing file error = nil, want error")
	}
}

func TestDebounce(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if got := cfg.Debounce(); got != 400*time.Millisecond {
		t.Errorf("Debounce() = %v, want 400ms", got)
	}
	cfg.Daemon.DebounceMs = 1500
	if got := cfg.Debounce(); got != 1500*time.Millisecond {
		t.Errorf("Debounce() = %v, want 1.5s", got)
	}
}

func TestDatabasePath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if got := cfg.DatabasePath("/proj"); got != filepath.Join("/proj", ".skd", "speckit.db") {
		t.Errorf("DatabasePath() = %q", got)
	}

	cfg.Database.Path = "/abs/mirror.db"
	if got := cfg.DatabasePath("/proj"); got != "/abs/mirror.db" {
		t.Errorf("DatabasePath() absolute = %q, want unchanged", got)
	}
}

func TestLogFilePath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if got := cfg.LogFilePath("/proj"); got != "" {
		t.Errorf("LogFilePath() = %q, want empty for stderr logging", got)
	}

	cfg.Log.File = "logs/skd.log"
	if got := cfg.LogFilePath("/proj"); got != filepath.Join("/proj", "logs", "skd.log") {
		t.Errorf("LogFilePath() = %q", got)
	}

	cfg.Log.File = "/var/log/skd.log"
	if got := cfg.LogFilePath("/proj"); got != "/var/log/skd.log" {
		t.Errorf("LogFilePath() absolute = %q, want unchanged", got)
	}
}
