package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (VDESK_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("display", os.Getenv("VDESK_DISPLAY"), &cfg.Display)
	s.setString("log-level", os.Getenv("VDESK_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("VDESK_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setIntFromString("queue-capacity", os.Getenv("VDESK_QUEUE_CAPACITY"), &cfg.QueueCapacity); err != nil {
		return err
	}
	if err := s.setCountFromString("max-retries", os.Getenv("VDESK_MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}

	if err := s.setDuration("retry-delay", os.Getenv("VDESK_RETRY_DELAY"), &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("probe-interval", os.Getenv("VDESK_PROBE_INTERVAL"), &cfg.ProbeInterval); err != nil {
		return err
	}

	s.setBoolFromString("elevate-priority", os.Getenv("VDESK_ELEVATE_PRIORITY"), &cfg.ElevatePriority)

	return nil
}
