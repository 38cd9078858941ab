// Package config loads the server configuration. The surface is closed: a
// typed record populated from flags, ROO_* environment variables, an
// optional config file, and defaults, in that precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Defaults for the session subsystem, in seconds.
const (
	DefaultSessionTimeout  = 3600
	DefaultCleanupInterval = 300
)

// Config is the complete configuration record for the roomodes server.
type Config struct {
	ProjectRoot     string
	ConfigDir       string
	SessionTimeout  time.Duration
	CleanupInterval time.Duration
	LogLevel        string
	LogFile         string
}

// Overrides carries flag values; empty fields mean "not set on the
// command line".
type Overrides struct {
	ConfigPath  string
	ProjectRoot string
	LogLevel    string
	LogFile     string
}

// Load builds a Config with precedence flags > environment > config file >
// defaults. The config file (YAML or JSON, detected by extension) is only
// read when a path is given; a missing explicit file is an error.
func Load(o Overrides) (*Config, error) {
	v := viper.New()

	v.SetDefault("project_root", "")
	v.SetDefault("config_dir", defaultConfigDir())
	v.SetDefault("session_timeout", DefaultSessionTimeout)
	v.SetDefault("cleanup_interval", DefaultCleanupInterval)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	// Environment variable surface.
	bindings := map[string]string{
		"project_root":     "ROO_PROJECT_ROOT",
		"config_dir":       "ROO_CONFIG_DIR",
		"session_timeout":  "ROO_SESSION_TIMEOUT",
		"cleanup_interval": "ROO_CLEANUP_INTERVAL",
		"log_level":        "ROO_LOG_LEVEL",
		"log_file":         "ROO_LOG_FILE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if o.ConfigPath != "" {
		v.SetConfigFile(o.ConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", o.ConfigPath, err)
		}
	}

	if o.ProjectRoot != "" {
		v.Set("project_root", o.ProjectRoot)
	}
	if o.LogLevel != "" {
		v.Set("log_level", o.LogLevel)
	}
	if o.LogFile != "" {
		v.Set("log_file", o.LogFile)
	}

	cfg := &Config{
		ProjectRoot:     v.GetString("project_root"),
		ConfigDir:       v.GetString("config_dir"),
		SessionTimeout:  time.Duration(v.GetInt("session_timeout")) * time.Second,
		CleanupInterval: time.Duration(v.GetInt("cleanup_interval")) * time.Second,
		LogLevel:        v.GetString("log_level"),
		LogFile:         v.GetString("log_file"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session_timeout must be positive, got %s", c.SessionTimeout)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be positive, got %s", c.CleanupInterval)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// defaultConfigDir returns ~/.roo-code, the global mode and config
// directory.
func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".roo-code"
	}
	return filepath.Join(home, ".roo-code")
}
