package storage

import (
	"context"
	"database/sql"
)

// migrateV001 creates the cache schema. Every statement uses IF NOT EXISTS
// so a partially applied run can be retried.
func migrateV001(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS content_groups (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			key               TEXT NOT NULL UNIQUE,
			content_type      TEXT NOT NULL,
			midnight_utc_date TEXT,
			article_url       TEXT,
			content_preview   TEXT,
			full_content      BLOB
		)`,

		`CREATE TABLE IF NOT EXISTS articles (
			key                   TEXT PRIMARY KEY,
			url                   TEXT,
			display_title         TEXT NOT NULL DEFAULT '',
			is_cached             BOOLEAN NOT NULL DEFAULT 0,
			saved_date            TEXT,
			viewed_date           TEXT,
			places_sort_order     INTEGER NOT NULL DEFAULT 0,
			is_excluded_from_feed BOOLEAN NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS talk_pages (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			key           TEXT NOT NULL UNIQUE,
			url           TEXT NOT NULL DEFAULT '',
			date_accessed TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS talk_page_topic_content (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			sha256 TEXT NOT NULL UNIQUE,
			html   TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS talk_page_topics (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			talk_page_id INTEGER NOT NULL REFERENCES talk_pages(id) ON DELETE CASCADE,
			sort_index   INTEGER NOT NULL DEFAULT 0,
			title        TEXT NOT NULL DEFAULT '',
			content_id   INTEGER REFERENCES talk_page_topic_content(id)
		)`,

		`CREATE TABLE IF NOT EXISTS navigation_state (
			id       INTEGER PRIMARY KEY CHECK (id = 1),
			payload  BLOB NOT NULL,
			saved_at TEXT NOT NULL
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_content_groups_date  ON content_groups(midnight_utc_date)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_state       ON articles(viewed_date, saved_date, places_sort_order, is_excluded_from_feed)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_cached      ON articles(is_cached, saved_date)`,
		`CREATE INDEX IF NOT EXISTS idx_talk_pages_accessed  ON talk_pages(date_accessed DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_talk_page     ON talk_page_topics(talk_page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_content       ON talk_page_topics(content_id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
