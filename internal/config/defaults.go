package config

import "time"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:       "~/.config/histidx",
			SQLiteFile: "history.db",
			OpTimeout:  5 * time.Second,
		},
		Capture: CaptureConfig{
			DenylistDomains: DefaultDenylistDomains(),
			DenylistRegex:   []string{},
		},
		Query: QueryConfig{
			HideUntitled: true,
			MaxResults:   0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Name: "histidx",
		},
	}
}
