package storage

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner_FreshDB(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	err := runner.Run()
	require.NoError(t, err)

	expectedTables := []string{
		"content_groups",
		"articles",
		"talk_pages",
		"talk_page_topics",
		"talk_page_topic_content",
		"navigation_state",
		"schema_migrations",
	}
	for _, table := range expectedTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrationRunner_IndexesCreated(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	expectedIndexes := []string{
		"idx_content_groups_date",
		"idx_articles_state",
		"idx_articles_cached",
		"idx_talk_pages_accessed",
		"idx_topics_talk_page",
		"idx_topics_content",
	}
	for _, idx := range expectedIndexes {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
		assert.Equal(t, idx, name)
	}
}

func TestMigrationRunner_Idempotent(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	require.NoError(t, runner.Run())
	require.NoError(t, runner.Run())

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "should have exactly 1 migration recorded after double-run")
}

func TestMigrationRunner_SchemaMigrationsTracking(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	var version int
	var name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations WHERE version = 1").Scan(&version, &name)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, "initial_schema", name)
}

func TestMigrationRunner_JournalMode(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	var journalMode string
	err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	require.NoError(t, err)
	// WAL only takes effect on file-backed databases.
	assert.Contains(t, []string{"wal", "memory"}, journalMode)
}

func TestMigrationRunner_UnsupportedJournalMode(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db).WithJournalMode("wal; DROP TABLE articles")

	err := runner.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported journal mode")
}

func TestMigrationRunner_ForeignKeys(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	var fk int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign_keys should be enabled")
}

func TestMigrationRunner_ForeignKeyEnforcement(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	_, err := db.Exec(
		"INSERT INTO talk_page_topics (talk_page_id, title) VALUES (9999, 'orphan')",
	)
	assert.Error(t, err, "foreign key constraint should prevent orphan topic rows")
}

func TestMigrationRunner_NavigationStateSingleton(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	_, err := db.Exec("INSERT INTO navigation_state (id, payload, saved_at) VALUES (2, x'00', 'now')")
	assert.Error(t, err, "only row id 1 is allowed")
}
