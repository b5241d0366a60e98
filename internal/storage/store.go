package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/runnerr0/housekeeper/internal/articlekey"
)

// timeLayout has a fixed-width fraction so stored timestamps sort
// lexicographically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SQLiteStore owns the cache database. Reads and writes performed during
// housekeeping go through a Session; the store's own methods are used by the
// ingestion side and for diagnostics.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	insertGroup   *sql.Stmt
	upsertArticle *sql.Stmt
	getArticle    *sql.Stmt
	saveNavState  *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertGroup, err = s.db.Prepare(`
		INSERT INTO content_groups (key, content_type, midnight_utc_date, article_url, content_preview, full_content)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.upsertArticle, err = s.db.Prepare(`
		INSERT INTO articles (key, url, display_title, is_cached, saved_date, viewed_date, places_sort_order, is_excluded_from_feed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			url = excluded.url,
			display_title = excluded.display_title,
			is_cached = excluded.is_cached,
			saved_date = excluded.saved_date,
			viewed_date = excluded.viewed_date,
			places_sort_order = excluded.places_sort_order,
			is_excluded_from_feed = excluded.is_excluded_from_feed
	`)
	if err != nil {
		return err
	}

	s.getArticle, err = s.db.Prepare(`
		SELECT key, url, display_title, is_cached, saved_date, viewed_date, places_sort_order, is_excluded_from_feed
		FROM articles WHERE key = ?
	`)
	if err != nil {
		return err
	}

	s.saveNavState, err = s.db.Prepare(`
		INSERT INTO navigation_state (id, payload, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`)
	if err != nil {
		return err
	}

	return nil
}

// NewSession opens a storage session. inUse may be nil, in which case every
// fetched article is reported as a fault.
func (s *SQLiteStore) NewSession(inUse InUseChecker) *Session {
	return newSession(s.db, inUse)
}

// AddContentGroup inserts a content group. A random key is assigned when
// g.Key is empty. g.ID is populated on success.
func (s *SQLiteStore) AddContentGroup(ctx context.Context, g *ContentGroup) error {
	if g.Key == "" {
		g.Key = uuid.NewString()
	}

	res, err := s.insertGroup.ExecContext(ctx,
		g.Key, string(g.ContentType), formatOptionalTime(g.MidnightUTCDate),
		nullString(g.ArticleURL), nullString(g.ContentPreview), g.FullContent.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("insert content group: %w", err)
	}

	g.ID, err = res.LastInsertId()
	return err
}

// UpsertArticle inserts or replaces the cache state of an article. When
// a.Key is empty it is derived from a.URL.
func (s *SQLiteStore) UpsertArticle(ctx context.Context, a *Article) error {
	if a.Key == "" {
		key, ok := articlekey.Key(a.URL)
		if !ok {
			return fmt.Errorf("article %q has no key", a.URL)
		}
		a.Key = key
	}

	_, err := s.upsertArticle.ExecContext(ctx,
		a.Key, nullString(a.URL), a.DisplayTitle, a.IsCached,
		formatTimePtr(a.SavedDate), formatTimePtr(a.ViewedDate),
		a.PlacesSortOrder, a.IsExcludedFromFeed,
	)
	if err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}
	return nil
}

// GetArticle retrieves an article by key.
func (s *SQLiteStore) GetArticle(ctx context.Context, key string) (*Article, error) {
	a, err := scanArticle(s.getArticle.QueryRowContext(ctx, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("article %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	a.IsFault = true
	return a, nil
}

// AddTalkPage inserts a talk page and its topics in a single transaction.
// Topic HTML is stored once per distinct body.
func (s *SQLiteStore) AddTalkPage(ctx context.Context, p *TalkPage) error {
	if p.Key == "" {
		key, ok := articlekey.Key(p.URL)
		if !ok {
			return fmt.Errorf("talk page %q has no key", p.URL)
		}
		p.Key = key
	}
	if p.DateAccessed.IsZero() {
		p.DateAccessed = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		"INSERT INTO talk_pages (key, url, date_accessed) VALUES (?, ?, ?)",
		p.Key, p.URL, formatTime(p.DateAccessed),
	)
	if err != nil {
		return fmt.Errorf("insert talk page: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	for i, topic := range p.Topics {
		sum := sha256.Sum256([]byte(topic.HTML))
		digest := hex.EncodeToString(sum[:])

		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO talk_page_topic_content (sha256, html) VALUES (?, ?)",
			digest, topic.HTML,
		); err != nil {
			return fmt.Errorf("insert topic content: %w", err)
		}

		var contentID int64
		if err := tx.QueryRowContext(ctx,
			"SELECT id FROM talk_page_topic_content WHERE sha256 = ?", digest,
		).Scan(&contentID); err != nil {
			return fmt.Errorf("lookup topic content: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO talk_page_topics (talk_page_id, sort_index, title, content_id) VALUES (?, ?, ?, ?)",
			p.ID, i, topic.Title, contentID,
		); err != nil {
			return fmt.Errorf("insert topic: %w", err)
		}
	}

	return tx.Commit()
}

// SaveNavigationState replaces the persisted navigation state.
func (s *SQLiteStore) SaveNavigationState(ctx context.Context, payload []byte) error {
	if _, err := s.saveNavState.ExecContext(ctx, payload, formatTime(time.Now())); err != nil {
		return fmt.Errorf("save navigation state: %w", err)
	}
	return nil
}

// GetStats returns record counts for the cache database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM content_groups", &stats.ContentGroups},
		{"SELECT COUNT(*) FROM articles", &stats.Articles},
		{"SELECT COUNT(*) FROM articles WHERE is_cached = 1", &stats.CachedArticles},
		{"SELECT COUNT(*) FROM articles WHERE saved_date IS NOT NULL", &stats.SavedArticles},
		{"SELECT COUNT(*) FROM talk_pages", &stats.TalkPages},
		{"SELECT COUNT(*) FROM talk_page_topic_content", &stats.TopicContent},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("stats (%s): %w", c.query, err)
		}
	}

	return stats, nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.insertGroup, s.upsertArticle, s.getArticle, s.saveNavState}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	var url, saved, viewed sql.NullString
	if err := row.Scan(
		&a.Key, &url, &a.DisplayTitle, &a.IsCached,
		&saved, &viewed, &a.PlacesSortOrder, &a.IsExcludedFromFeed,
	); err != nil {
		return nil, err
	}
	a.URL = url.String
	a.SavedDate = parseTimePtr(saved)
	a.ViewedDate = parseTimePtr(viewed)
	return &a, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatOptionalTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return formatOptionalTime(*t)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	// An unparsable value still counts as set.
	t, _ := parseTimestamp(s.String)
	return &t
}

// parseTimestamp tries the store's own layout first, then several common
// SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		timeLayout,
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		time.DateOnly,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
