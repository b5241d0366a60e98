package housekeeping

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/housekeeper/internal/calendar"
	"github.com/runnerr0/housekeeper/internal/feed"
	"github.com/runnerr0/housekeeper/internal/metrics"
	"github.com/runnerr0/housekeeper/internal/storage"
)

// now is the fixed wall clock for every test; with the default 30 day
// horizon the oldest retained feed day is 2024-05-16.
var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func wiki(title string) string {
	return "https://en.wikipedia.org/wiki/" + title
}

// day returns the feed day offset days from today.
func day(offset int) time.Time {
	return time.Date(2024, 6, 15+offset, 0, 0, 0, 0, time.UTC)
}

type testEnv struct {
	db      *sql.DB
	store   *storage.SQLiteStore
	hk      *Housekeeper
	metrics *metrics.HousekeepingMetrics
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		db:      db,
		store:   store,
		metrics: metrics.NewHousekeepingMetricsWithRegistry(prometheus.NewRegistry()),
		logs:    &bytes.Buffer{},
	}
	env.hk = New(Options{
		Clock:   calendar.FixedClock(now),
		Logger:  log.New(env.logs),
		Metrics: env.metrics,
	})
	return env
}

func (e *testEnv) addGroup(t *testing.T, g storage.ContentGroup, entries ...feed.Entry) {
	t.Helper()
	if len(entries) > 0 {
		p, err := feed.EncodePayload(entries...)
		require.NoError(t, err)
		g.FullContent = p
	}
	require.NoError(t, e.store.AddContentGroup(context.Background(), &g))
}

func (e *testEnv) addArticle(t *testing.T, a storage.Article) {
	t.Helper()
	require.NoError(t, e.store.UpsertArticle(context.Background(), &a))
}

func (e *testEnv) exists(t *testing.T, url string) bool {
	t.Helper()
	_, err := e.store.GetArticle(context.Background(), url)
	if err == nil {
		return true
	}
	require.ErrorIs(t, err, storage.ErrNotFound)
	return false
}

func (e *testEnv) article(t *testing.T, url string) *storage.Article {
	t.Helper()
	a, err := e.store.GetArticle(context.Background(), url)
	require.NoError(t, err)
	return a
}

func (e *testEnv) stats(t *testing.T) *storage.Stats {
	t.Helper()
	s, err := e.store.GetStats(context.Background())
	require.NoError(t, err)
	return s
}

func (e *testEnv) saveTabs(t *testing.T, urls ...string) {
	t.Helper()
	items := ""
	for i, u := range urls {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{"url":%q}`, u)
	}
	state := fmt.Sprintf(`{"tabs":[{"items":[%s]}]}`, items)
	require.NoError(t, e.store.SaveNavigationState(context.Background(), []byte(state)))
}

func (e *testEnv) addTalkPages(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		p := &storage.TalkPage{
			URL:          wiki(fmt.Sprintf("Talk:Page_%d", i)),
			DateAccessed: now.Add(-time.Duration(n-i) * time.Hour),
			Topics:       []storage.TalkPageTopic{{Title: "t", HTML: fmt.Sprintf("<p>%d</p>", i)}},
		}
		require.NoError(t, e.store.AddTalkPage(context.Background(), p))
	}
}

func (e *testEnv) talkPageURLs(t *testing.T) []string {
	t.Helper()
	rows, err := e.db.Query("SELECT url FROM talk_pages ORDER BY date_accessed")
	require.NoError(t, err)
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		require.NoError(t, rows.Scan(&u))
		urls = append(urls, u)
	}
	require.NoError(t, rows.Err())
	return urls
}

// staticKeys is a PreservedKeyProvider with a canned answer.
type staticKeys struct {
	keys []string
	ok   bool
	err  error
}

func (s staticKeys) PreservedKeys(context.Context) ([]string, bool, error) {
	return s.keys, s.ok, s.err
}
