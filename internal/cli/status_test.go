package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/housekeeper/internal/storage"
)

func TestStatus_EmptyDB(t *testing.T) {
	env := newTestEnv(t)

	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "dev"}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(context.Background(), env))
	})

	assert.Contains(t, output, "Housekeeper Status")
	assert.Contains(t, output, "Version:       dev")
	assert.Contains(t, output, "Feed groups:   0")
	assert.Contains(t, output, "Articles:      0")
	assert.Contains(t, output, "Max feed age:  30 days")
	assert.Contains(t, output, "keep 50")
	assert.Contains(t, output, "Navigation:    none")
}

func TestStatus_WithData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.UpsertArticle(ctx, &storage.Article{URL: "https://en.wikipedia.org/wiki/A", IsCached: true}))
	require.NoError(t, env.store.UpsertArticle(ctx, &storage.Article{URL: "https://en.wikipedia.org/wiki/B"}))
	require.NoError(t, env.store.SaveNavigationState(ctx, []byte(`{"tabs":[]}`)))

	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "dev"}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(ctx, env))
	})

	assert.Contains(t, output, "Articles:      2 (1 cached, 50.0%)")
	assert.Contains(t, output, "Navigation:    saved")
}

func TestStatus_JSON(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.AddTalkPage(ctx, &storage.TalkPage{
		URL:    "https://en.wikipedia.org/wiki/Talk:Go",
		Topics: []storage.TalkPageTopic{{Title: "x", HTML: "<p>x</p>"}},
	}))

	cmd := &StatusCommand{globals: &GlobalFlags{JSON: true}, version: "1.0.0"}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(ctx, env))
	})

	var out statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, "1.0.0", out.Version)
	assert.Equal(t, int64(1), out.TalkPages)
	assert.Equal(t, int64(1), out.TopicContent)
	assert.Equal(t, 30, out.MaxFeedAgeDays)
	assert.Equal(t, 50, out.TalkPageLimit)
	assert.False(t, out.NavigationState)
	assert.Greater(t, out.DatabaseSizeBytes, int64(0), "in-memory size from page count")
}

func TestStatusCommand_EndToEnd(t *testing.T) {
	cfgPath, dataDir := writeTestConfig(t, "housekeeping:\n  talk_page_limit: 20\n")

	output := captureOutput(t, func() {
		require.NoError(t, RunWithArgs("test", []string{"--config", cfgPath, "status"}))
	})

	assert.Contains(t, output, filepath.Join(dataDir, "housekeeper.db"))
	assert.Contains(t, output, "keep 20")

	_, err := os.Stat(filepath.Join(dataDir, "housekeeper.db"))
	assert.NoError(t, err)
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		123456:  "123,456",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatNumber(in))
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
	assert.Equal(t, "1.0 GB", formatBytes(1<<30))
}
