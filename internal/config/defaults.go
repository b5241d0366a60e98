package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Housekeeping defaults.
const (
	DefaultMaxFeedAgeDays = 30
	DefaultTalkPageLimit  = 50
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Housekeeping: HousekeepingConfig{
			MaxFeedAgeDays: DefaultMaxFeedAgeDays,
			TalkPageLimit:  DefaultTalkPageLimit,
		},
		Storage: StorageConfig{
			Path:              filepath.Join(xdg.DataHome, "housekeeper"),
			SQLiteFile:        "housekeeper.db",
			CacheDir:          "articles",
			SQLiteJournalMode: "wal",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Metrics: MetricsConfig{
			Textfile: "",
		},
	}
}
