package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	if cfg.PollInterval() != 5*time.Second {
		t.Errorf("expected 5s poll interval, got %v", cfg.PollInterval())
	}
	if cfg.FlushInterval() != 60*time.Second {
		t.Errorf("expected 60s flush interval, got %v", cfg.FlushInterval())
	}
	if len(cfg.Monitoring.Allowlist) == 0 {
		t.Error("expected a default allowlist")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9000
monitoring:
  poll_interval_sec: 2
persistence:
  data_dir: /tmp/timethread
  flush_interval_sec: 30
logging:
  level: debug
  format: json
categories:
  overrides:
    chrome: Work
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Errorf("expected 2s poll interval, got %v", cfg.PollInterval())
	}
	if cfg.Persistence.DataDir != "/tmp/timethread" {
		t.Errorf("unexpected data dir %q", cfg.Persistence.DataDir)
	}
	if cfg.Categories.Overrides["chrome"] != "Work" {
		t.Error("expected category override to be read")
	}

	// Unset fields keep their defaults.
	if cfg.Monitoring.StartTimeTimeoutMS != Default().Monitoring.StartTimeTimeoutMS {
		t.Error("expected unset fields to keep defaults")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: -1
`)

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for bad port")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault("")
	if cfg.Server.Port != Default().Server.Port {
		t.Error("expected defaults for empty path")
	}

	cfg = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.Server.Port != Default().Server.Port {
		t.Error("expected defaults for unreadable path")
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TT_DATA_DIR", "/var/lib/timethread")

	path := writeConfig(t, `
persistence:
  data_dir: ${TT_DATA_DIR}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Persistence.DataDir != "/var/lib/timethread" {
		t.Errorf("expected env substitution, got %q", cfg.Persistence.DataDir)
	}
}

func TestValidate_Monitoring(t *testing.T) {
	cfg := Default()
	cfg.Monitoring.PollIntervalSec = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero poll interval")
	}
}

func TestValidate_Logging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown log level")
	}

	cfg = Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown log format")
	}
}
