package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Monitoring.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("monitoring: %w", err))
	}

	if err := c.Persistence.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("persistence: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	return nil
}

func (m *MonitoringConfig) Validate() error {
	var errs []error

	if m.PollIntervalSec < 1 {
		errs = append(errs, fmt.Errorf("poll_interval_sec must be at least 1, got %d", m.PollIntervalSec))
	}

	if m.StartTimeTimeoutMS < 1 {
		errs = append(errs, fmt.Errorf("start_time_timeout_ms must be at least 1, got %d", m.StartTimeTimeoutMS))
	}

	return errors.Join(errs...)
}

func (p *PersistenceConfig) Validate() error {
	var errs []error

	if p.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}

	if p.FlushIntervalSec < 1 {
		errs = append(errs, fmt.Errorf("flush_interval_sec must be at least 1, got %d", p.FlushIntervalSec))
	}

	return errors.Join(errs...)
}

func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error; got %q", l.Level)
	}

	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", l.Format)
	}

	return nil
}
