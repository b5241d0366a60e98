package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/runnerr0/housekeeper/internal/feed"
)

// batchChunk bounds the number of bound parameters in a single IN clause.
const batchChunk = 500

// InUseChecker reports whether an article is currently held live by a view.
type InUseChecker interface {
	InUse(key string) bool
}

// Session is a unit of work over the cache database. Fetches read committed
// state with the session's own pending changes applied; deletes and flag
// changes are buffered in memory until Save commits them in one transaction.
// A Session is not safe for concurrent use.
type Session struct {
	db    *sql.DB
	inUse InUseChecker

	deletedGroups   map[int64]struct{}
	deletedArticles map[string]struct{}
	uncached        map[string]struct{}
}

func newSession(db *sql.DB, inUse InUseChecker) *Session {
	s := &Session{db: db, inUse: inUse}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.deletedGroups = make(map[int64]struct{})
	s.deletedArticles = make(map[string]struct{})
	s.uncached = make(map[string]struct{})
}

// ContentGroups fetches every content group not pending deletion.
func (s *Session) ContentGroups(ctx context.Context) ([]ContentGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, content_type, midnight_utc_date, article_url, content_preview, full_content
		FROM content_groups ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query content groups: %w", err)
	}
	defer rows.Close()

	var groups []ContentGroup
	for rows.Next() {
		var g ContentGroup
		var contentType string
		var midnight, articleURL, preview sql.NullString
		var full []byte
		if err := rows.Scan(&g.ID, &g.Key, &contentType, &midnight, &articleURL, &preview, &full); err != nil {
			return nil, fmt.Errorf("scan content group: %w", err)
		}
		if _, deleted := s.deletedGroups[g.ID]; deleted {
			continue
		}
		g.ContentType = feed.ContentType(contentType)
		if midnight.Valid {
			t, err := parseTimestamp(midnight.String)
			if err != nil {
				g.DateInvalid = true
			} else {
				g.MidnightUTCDate = t
			}
		}
		g.ArticleURL = articleURL.String
		g.ContentPreview = preview.String
		g.FullContent = feed.NewPayload(full)
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// DeleteContentGroup marks a group for deletion on the next Save.
func (s *Session) DeleteContentGroup(g ContentGroup) {
	s.deletedGroups[g.ID] = struct{}{}
}

// Articles fetches the articles matching f, ordered by key. Articles pending
// deletion are omitted and pending demotions are reflected.
func (s *Session) Articles(ctx context.Context, f ArticleFilter) ([]Article, error) {
	var clauses []string
	if f.NeverViewed {
		clauses = append(clauses, "viewed_date IS NULL")
	}
	if f.NotSaved {
		clauses = append(clauses, "saved_date IS NULL")
	}
	if f.NotOnMap {
		clauses = append(clauses, "places_sort_order = 0")
	}
	if f.NotExcludedFromFeed {
		clauses = append(clauses, "is_excluded_from_feed = 0")
	}
	if f.CachedOnly {
		clauses = append(clauses, "is_cached = 1")
	}

	query := `
		SELECT key, url, display_title, is_cached, saved_date, viewed_date, places_sort_order, is_excluded_from_feed
		FROM articles
	`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY key"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		if _, deleted := s.deletedArticles[a.Key]; deleted {
			continue
		}
		if _, demoted := s.uncached[a.Key]; demoted {
			if f.CachedOnly {
				continue
			}
			a.IsCached = false
		}
		a.IsFault = s.inUse == nil || !s.inUse.InUse(a.Key)
		articles = append(articles, *a)
	}

	return articles, rows.Err()
}

// DeleteArticle marks an article for deletion on the next Save.
func (s *Session) DeleteArticle(a Article) {
	delete(s.uncached, a.Key)
	s.deletedArticles[a.Key] = struct{}{}
}

// MarkArticleUncached clears the article's on-disk flag on the next Save.
func (s *Session) MarkArticleUncached(a Article) {
	if !a.IsCached {
		return
	}
	if _, deleted := s.deletedArticles[a.Key]; deleted {
		return
	}
	s.uncached[a.Key] = struct{}{}
}

// HasChanges reports whether Save has anything to write.
func (s *Session) HasChanges() bool {
	return len(s.deletedGroups) > 0 || len(s.deletedArticles) > 0 || len(s.uncached) > 0
}

// Save commits all pending changes in one transaction. On failure nothing is
// written and the pending changes are kept; call Rollback to discard them.
func (s *Session) Save(ctx context.Context) error {
	if !s.HasChanges() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for id := range s.deletedGroups {
		if _, err := tx.ExecContext(ctx, "DELETE FROM content_groups WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete content group %d: %w", id, err)
		}
	}
	for key := range s.deletedArticles {
		if _, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE key = ?", key); err != nil {
			return fmt.Errorf("delete article %s: %w", key, err)
		}
	}
	for key := range s.uncached {
		if _, err := tx.ExecContext(ctx, "UPDATE articles SET is_cached = 0 WHERE key = ?", key); err != nil {
			return fmt.Errorf("demote article %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.reset()
	return nil
}

// Rollback discards all pending changes.
func (s *Session) Rollback() {
	s.reset()
}

// BatchDeleteTalkPages deletes every talk page except the keep most recently
// accessed, by id and without loading the records. It runs in its own
// transaction, independent of the session's pending changes, and returns the
// deleted ids.
func (s *Session) BatchDeleteTalkPages(ctx context.Context, keep int) ([]int64, error) {
	if keep < 0 {
		return nil, fmt.Errorf("batch delete talk pages: negative keep %d", keep)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ids, err := queryIDs(ctx, tx,
		"SELECT id FROM talk_pages ORDER BY date_accessed DESC, id DESC LIMIT -1 OFFSET ?", keep,
	)
	if err != nil {
		return nil, fmt.Errorf("select stale talk pages: %w", err)
	}

	for start := 0; start < len(ids); start += batchChunk {
		end := min(start+batchChunk, len(ids))
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM talk_page_topics WHERE talk_page_id IN ("+placeholders+")", args...,
		); err != nil {
			return nil, fmt.Errorf("delete talk page topics: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM talk_pages WHERE id IN ("+placeholders+")", args...,
		); err != nil {
			return nil, fmt.Errorf("delete talk pages: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}

// RemoveUnlinkedTopicContent deletes topic content no surviving topic
// references and returns the number of rows removed.
func (s *Session) RemoveUnlinkedTopicContent(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM talk_page_topic_content
		WHERE id NOT IN (
			SELECT content_id FROM talk_page_topics WHERE content_id IS NOT NULL
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("remove unlinked topic content: %w", err)
	}
	return res.RowsAffected()
}

// NavigationState returns the persisted navigation state. ok is false when
// none has been saved.
func (s *Session) NavigationState(ctx context.Context) (payload []byte, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT payload FROM navigation_state WHERE id = 1").Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get navigation state: %w", err)
	}
	return payload, true, nil
}

func queryIDs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
