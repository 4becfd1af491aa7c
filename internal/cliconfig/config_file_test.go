package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false
	zero := 0

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Display:         ":1",
				QueueCapacity:   4,
				MaxRetries:      &zero,
				RetryDelay:      "50ms",
				ElevatePriority: &falseVal,
				ProbeInterval:   "1m",
				LogLevel:        "debug",
				LogFormat:       "json",
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			expected: Config{
				Display:         ":1",
				QueueCapacity:   4,
				MaxRetries:      0,
				RetryDelay:      50 * time.Millisecond,
				ElevatePriority: false,
				ProbeInterval:   time.Minute,
				LogLevel:        "debug",
				LogFormat:       "json",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Display:         ":2",
				QueueCapacity:   3,
				ElevatePriority: &trueVal,
			},
			changed: map[string]bool{"display": true, "elevate-priority": true},
			initial: Config{Display: ":9", QueueCapacity: 10},
			expected: Config{
				Display:       ":9", // unchanged because flag was set
				QueueCapacity: 3,
			},
		},
		{
			name:       "empty file keeps defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{ProbeInterval: "soon"},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
display = ":1"
queue_capacity = 4
max_retries = 0
retry_delay = "10ms"
elevate_priority = false
log_level = "debug"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Display != ":1" {
		t.Errorf("Display = %v, want :1", fc.Display)
	}
	if fc.QueueCapacity != 4 {
		t.Errorf("QueueCapacity = %v, want 4", fc.QueueCapacity)
	}
	if fc.MaxRetries == nil || *fc.MaxRetries != 0 {
		t.Errorf("MaxRetries = %v, want explicit 0", fc.MaxRetries)
	}
	if fc.RetryDelay != "10ms" {
		t.Errorf("RetryDelay = %v, want 10ms", fc.RetryDelay)
	}
	if fc.ElevatePriority == nil || *fc.ElevatePriority {
		t.Errorf("ElevatePriority = %v, want false", fc.ElevatePriority)
	}
	if fc.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", fc.LogLevel)
	}
}

func TestLoadFileConfig_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
display: ":3"
max_retries: 2
probe_interval: 5s
log_format: json
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Display != ":3" {
		t.Errorf("Display = %v, want :3", fc.Display)
	}
	if fc.MaxRetries == nil || *fc.MaxRetries != 2 {
		t.Errorf("MaxRetries = %v, want 2", fc.MaxRetries)
	}
	if fc.ProbeInterval != "5s" {
		t.Errorf("ProbeInterval = %v, want 5s", fc.ProbeInterval)
	}
	if fc.LogFormat != "json" {
		t.Errorf("LogFormat = %v, want json", fc.LogFormat)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
display = ":1"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".vdesk") {
		t.Errorf("DefaultConfigPath() = %v, should contain .vdesk", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
