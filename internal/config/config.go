package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config holds all housekeeper configuration.
type Config struct {
	Housekeeping HousekeepingConfig `yaml:"housekeeping"`
	Storage      StorageConfig      `yaml:"storage"`
	Logging      LoggingConfig      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

type HousekeepingConfig struct {
	MaxFeedAgeDays int `yaml:"max_feed_age_days"`
	TalkPageLimit  int `yaml:"talk_page_limit"`
}

type StorageConfig struct {
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	CacheDir          string `yaml:"cache_dir"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type MetricsConfig struct {
	// Textfile is where a Prometheus textfile-collector dump is written after
	// each command. Empty disables the dump.
	Textfile string `yaml:"textfile"`
}

// DefaultPath returns the default config file location under the XDG config
// directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "housekeeper", "config.yaml")
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML, or
// fails validation.
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
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values housekeeping cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Housekeeping.MaxFeedAgeDays <= 0 {
		errs = append(errs, fmt.Errorf("housekeeping.max_feed_age_days must be positive, got %d", c.Housekeeping.MaxFeedAgeDays))
	}
	if c.Housekeeping.TalkPageLimit <= 0 {
		errs = append(errs, fmt.Errorf("housekeeping.talk_page_limit must be positive, got %d", c.Housekeeping.TalkPageLimit))
	}
	if c.Storage.SQLiteFile == "" {
		errs = append(errs, errors.New("storage.sqlite_file must be set"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DBPath returns the expanded path of the SQLite database.
func (c *Config) DBPath() (string, error) {
	dir, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// CachePath returns the expanded root of the on-disk article cache. A
// relative cache_dir is resolved against storage.path.
func (c *Config) CachePath() (string, error) {
	dir, err := ExpandPath(c.Storage.CacheDir)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	base, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, dir), nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	return LoadOrCreateAt(DefaultPath())
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
