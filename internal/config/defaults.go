package config

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8273,
		},
		Monitoring: MonitoringConfig{
			PollIntervalSec:    5,
			Allowlist:          []string{"explorer"},
			Exclude:            []string{"System", "Registry", "Idle"},
			StartTimeTimeoutMS: 500,
		},
		Persistence: PersistenceConfig{
			DataDir:          "data",
			FlushIntervalSec: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Categories: CategoriesConfig{
			Overrides: map[string]string{},
		},
	}
}
