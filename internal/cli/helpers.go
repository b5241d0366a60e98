package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/runnerr0/housekeeper/internal/config"
	"github.com/runnerr0/housekeeper/internal/diskcache"
	"github.com/runnerr0/housekeeper/internal/housekeeping"
	"github.com/runnerr0/housekeeper/internal/inuse"
	"github.com/runnerr0/housekeeper/internal/logging"
	"github.com/runnerr0/housekeeper/internal/metrics"
	"github.com/runnerr0/housekeeper/internal/storage"
)

// cmdEnv is everything a subcommand needs, opened from the global flags.
type cmdEnv struct {
	cfg      *config.Config
	dbPath   string
	db       *sql.DB
	store    *storage.SQLiteStore
	cache    *diskcache.Cache
	inUse    *inuse.Registry
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *metrics.HousekeepingMetrics
	logFile  io.Closer
}

// openEnv loads the config, sets up logging and metrics, and opens the
// database.
func openEnv(globals *GlobalFlags) (*cmdEnv, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	logger, logFile, err := logging.New(cfg.Logging, globals.Verbose, os.Stderr)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg, globals)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	cachePath, err := cfg.CachePath()
	if err != nil {
		logFile.Close()
		return nil, err
	}

	store, db, err := openStore(dbPath, cfg.Storage.SQLiteJournalMode)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	logger.Debug("opened cache database", "path", dbPath)

	registry := prometheus.NewRegistry()
	return &cmdEnv{
		cfg:      cfg,
		dbPath:   dbPath,
		db:       db,
		store:    store,
		cache:    diskcache.New(cachePath),
		inUse:    inuse.New(),
		logger:   logger,
		registry: registry,
		metrics:  metrics.NewHousekeepingMetricsWithRegistry(registry),
		logFile:  logFile,
	}, nil
}

// Close releases the store, the database and the log file.
func (e *cmdEnv) Close() error {
	var errs []error
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	if e.db != nil {
		errs = append(errs, e.db.Close())
	}
	if e.logFile != nil {
		errs = append(errs, e.logFile.Close())
	}
	return errors.Join(errs...)
}

func (e *cmdEnv) housekeeper() *housekeeping.Housekeeper {
	return housekeeping.New(housekeeping.Options{
		MaxFeedAgeDays: e.cfg.Housekeeping.MaxFeedAgeDays,
		TalkPageLimit:  e.cfg.Housekeeping.TalkPageLimit,
		Logger:         e.logger,
		Metrics:        e.metrics,
	})
}

// flushMetrics writes the command's metrics to the configured textfile, if
// any. A failure is logged, not returned.
func (e *cmdEnv) flushMetrics() {
	if e.cfg.Metrics.Textfile == "" {
		return
	}
	path, err := config.ExpandPath(e.cfg.Metrics.Textfile)
	if err == nil {
		err = metrics.WriteTextfile(path, e.registry)
	}
	if err != nil {
		e.logger.Warn("could not write metrics", "err", err)
	}
}

// removeFiles deletes the payload directories of urls unless keep is set.
func (e *cmdEnv) removeFiles(urls []string, keep bool) int {
	if keep || len(urls) == 0 {
		return 0
	}
	removed, err := e.cache.Remove(urls)
	if err != nil {
		e.logger.Warn("some article payloads could not be removed", "err", err)
	}
	e.logger.Debug("removed article payloads", "removed", removed, "root", e.cache.Root)
	return removed
}

// loadConfig loads the file named by --config, or the default config,
// creating it on first use.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals.Config != "" {
		path, err := config.ExpandPath(globals.Config)
		if err != nil {
			return nil, err
		}
		return config.Load(path)
	}
	return config.LoadOrCreate()
}

// resolveDBPath prefers --db-path over the configured location.
func resolveDBPath(cfg *config.Config, globals *GlobalFlags) (string, error) {
	if globals.DBPath != "" {
		return config.ExpandPath(globals.DBPath)
	}
	return cfg.DBPath()
}

// openStore opens the database at dbPath, runs migrations, and returns a
// ready-to-use store and the underlying *sql.DB.
func openStore(dbPath, journalMode string) (*storage.SQLiteStore, *sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db).WithJournalMode(journalMode)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}
