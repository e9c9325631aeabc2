// Package config loads the histidx YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/histidx/config.yaml"

// MemoryDB is the sqlite_file value for a private in-memory database.
const MemoryDB = ":memory:"

// Config holds all histidx configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Capture CaptureConfig `yaml:"capture"`
	Query   QueryConfig   `yaml:"query"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
	// OpTimeout bounds each store operation, e.g. "5s".
	OpTimeout time.Duration `yaml:"op_timeout"`
}

// CaptureConfig lists domains whose visits are never recorded.
type CaptureConfig struct {
	DenylistDomains []string `yaml:"denylist_domains"`
	DenylistRegex   []string `yaml:"denylist_regex"`
}

type QueryConfig struct {
	// HideUntitled leaves entries without a title out of search results for
	// a non-empty term. Listing all history (empty term) always shows them.
	HideUntitled bool `yaml:"hide_untitled"`
	// MaxResults caps the rows of one search; 0 means unlimited.
	MaxResults int `yaml:"max_results"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Name string `yaml:"name"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML, or
// holds invalid values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}

	return cfg, nil
}

// Validate reports every invalid value in the config.
func (c *Config) Validate() error {
	var errs []error

	if c.Storage.SQLiteFile == "" {
		errs = append(errs, errors.New("storage.sqlite_file must not be empty"))
	}
	if c.Storage.OpTimeout <= 0 {
		errs = append(errs, fmt.Errorf("storage.op_timeout must be positive, got %s", c.Storage.OpTimeout))
	}
	if c.Query.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("query.max_results must not be negative, got %d", c.Query.MaxResults))
	}
	for _, expr := range c.Capture.DenylistRegex {
		if _, err := regexp.Compile(expr); err != nil {
			errs = append(errs, fmt.Errorf("capture.denylist_regex: %w", err))
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses logging.level ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// DBPath returns the SQLite database path: sqlite_file joined to the
// expanded storage path, or MemoryDB unchanged.
func (c *Config) DBPath() (string, error) {
	if c.Storage.SQLiteFile == MemoryDB {
		return MemoryDB, nil
	}
	if filepath.IsAbs(c.Storage.SQLiteFile) {
		return c.Storage.SQLiteFile, nil
	}
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// ExpandPath is expandPath for callers outside the package.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
