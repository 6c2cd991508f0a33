package config

import "time"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Logging     LoggingConfig     `yaml:"logging"`
	Categories  CategoriesConfig  `yaml:"categories"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type MonitoringConfig struct {
	// PollIntervalSec is the process scan cadence.
	PollIntervalSec int `yaml:"poll_interval_sec"`
	// Allowlist names are tracked even without a main window title.
	Allowlist []string `yaml:"allowlist"`
	// Exclude names are never tracked.
	Exclude []string `yaml:"exclude"`
	// StartTimeTimeoutMS bounds per-process start-time queries.
	StartTimeTimeoutMS int `yaml:"start_time_timeout_ms"`
}

type PersistenceConfig struct {
	DataDir          string `yaml:"data_dir"`
	FlushIntervalSec int    `yaml:"flush_interval_sec"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CategoriesConfig carries category overrides applied at startup, keyed by
// process name pattern.
type CategoriesConfig struct {
	Overrides map[string]string `yaml:"overrides"`
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitoring.PollIntervalSec) * time.Second
}

func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.Persistence.FlushIntervalSec) * time.Second
}

func (c *Config) StartTimeTimeout() time.Duration {
	return time.Duration(c.Monitoring.StartTimeTimeoutMS) * time.Millisecond
}
