package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations and pointers for
// values whose zero is meaningful.
type FileConfig struct {
	Display         string `toml:"display" yaml:"display"`
	QueueCapacity   int    `toml:"queue_capacity" yaml:"queue_capacity"`
	MaxRetries      *int   `toml:"max_retries" yaml:"max_retries"`
	RetryDelay      string `toml:"retry_delay" yaml:"retry_delay"`
	ElevatePriority *bool  `toml:"elevate_priority" yaml:"elevate_priority"`
	ProbeInterval   string `toml:"probe_interval" yaml:"probe_interval"`
	LogLevel        string `toml:"log_level" yaml:"log_level"`
	LogFormat       string `toml:"log_format" yaml:"log_format"`
}

// LoadFileConfig reads and parses a config file. Files ending in .yaml or
// .yml are decoded as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.vdesk/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".vdesk", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("display", fc.Display, &cfg.Display)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	s.setInt("queue-capacity", fc.QueueCapacity, &cfg.QueueCapacity)
	s.setCount("max-retries", fc.MaxRetries, &cfg.MaxRetries)

	if err := s.setDuration("retry-delay", fc.RetryDelay, &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("probe-interval", fc.ProbeInterval, &cfg.ProbeInterval); err != nil {
		return err
	}

	s.setBool("elevate-priority", fc.ElevatePriority, &cfg.ElevatePriority)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
