package cli

import (
	"bytes"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/housekeeper/internal/config"
	"github.com/runnerr0/housekeeper/internal/diskcache"
	"github.com/runnerr0/housekeeper/internal/inuse"
	"github.com/runnerr0/housekeeper/internal/metrics"
	"github.com/runnerr0/housekeeper/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestEnv creates an environment backed by an in-memory database and a
// temporary payload directory.
func newTestEnv(t *testing.T) *cmdEnv {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultConfig()
	cfg.Storage.Path = t.TempDir()

	registry := prometheus.NewRegistry()
	return &cmdEnv{
		cfg:      cfg,
		dbPath:   ":memory:",
		db:       db,
		store:    store,
		cache:    diskcache.New(filepath.Join(cfg.Storage.Path, "articles")),
		inUse:    inuse.New(),
		logger:   log.New(io.Discard),
		registry: registry,
		metrics:  metrics.NewHousekeepingMetricsWithRegistry(registry),
	}
}

// writeTestConfig writes a config file pointing storage at a fresh temp
// directory and returns its path.
func writeTestConfig(t *testing.T, extra string) (cfgPath, dataDir string) {
	t.Helper()
	dataDir = t.TempDir()
	cfgPath = filepath.Join(dataDir, "config.yaml")
	content := "storage:\n  path: " + dataDir + "\n" + extra
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath, dataDir
}
