package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SessionTimeout != time.Hour {
		t.Errorf("SessionTimeout = %v, want 1h", cfg.SessionTimeout)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if !strings.HasSuffix(cfg.ConfigDir, ".roo-code") {
		t.Errorf("ConfigDir = %q, want ~/.roo-code", cfg.ConfigDir)
	}
	if cfg.LogFile != "" {
		t.Errorf("LogFile = %q, want empty (stderr)", cfg.LogFile)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ROO_PROJECT_ROOT", "/srv/project")
	t.Setenv("ROO_CONFIG_DIR", "/etc/roo")
	t.Setenv("ROO_SESSION_TIMEOUT", "120")
	t.Setenv("ROO_CLEANUP_INTERVAL", "15")
	t.Setenv("ROO_LOG_LEVEL", "debug")
	t.Setenv("ROO_LOG_FILE", "/var/log/roomodes.log")

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ProjectRoot != "/srv/project" {
		t.Errorf("ProjectRoot = %q", cfg.ProjectRoot)
	}
	if cfg.ConfigDir != "/etc/roo" {
		t.Errorf("ConfigDir = %q", cfg.ConfigDir)
	}
	if cfg.SessionTimeout != 2*time.Minute {
		t.Errorf("SessionTimeout = %v, want 2m", cfg.SessionTimeout)
	}
	if cfg.CleanupInterval != 15*time.Second {
		t.Errorf("CleanupInterval = %v, want 15s", cfg.CleanupInterval)
	}
	if cfg.LogLevel != "debug" || cfg.LogFile != "/var/log/roomodes.log" {
		t.Errorf("logging config = %q %q", cfg.LogLevel, cfg.LogFile)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("ROO_PROJECT_ROOT", "/from-env")
	t.Setenv("ROO_LOG_LEVEL", "error")

	cfg, err := Load(Overrides{ProjectRoot: "/from-flag", LogLevel: "debug"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ProjectRoot != "/from-flag" {
		t.Errorf("ProjectRoot = %q, want flag value", cfg.ProjectRoot)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want flag value", cfg.LogLevel)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	content := "session_timeout: 900\ncleanup_interval: 60\nlog_level: warn\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(Overrides{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SessionTimeout != 15*time.Minute {
		t.Errorf("SessionTimeout = %v, want 15m", cfg.SessionTimeout)
	}
	if cfg.CleanupInterval != time.Minute {
		t.Errorf("CleanupInterval = %v, want 1m", cfg.CleanupInterval)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoadMissingExplicitConfigFileFails(t *testing.T) {
	if _, err := Load(Overrides{ConfigPath: "/does/not/exist.yaml"}); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.SessionTimeout = 0 }},
		{"negative interval", func(c *Config) { c.CleanupInterval = -time.Second }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose-ish" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				SessionTimeout:  time.Hour,
				CleanupInterval: time.Minute,
				LogLevel:        "info",
			}
			tt.mut(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
