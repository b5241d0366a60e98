package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/housekeeper/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string `json:"version"`
	DatabasePath      string `json:"database_path"`
	DatabaseSizeBytes int64  `json:"database_size_bytes"`
	ContentGroups     int64  `json:"content_groups"`
	Articles          int64  `json:"articles"`
	CachedArticles    int64  `json:"cached_articles"`
	SavedArticles     int64  `json:"saved_articles"`
	TalkPages         int64  `json:"talk_pages"`
	TopicContent      int64  `json:"topic_content"`
	MaxFeedAgeDays    int    `json:"max_feed_age_days"`
	TalkPageLimit     int    `json:"talk_page_limit"`
	NavigationState   bool   `json:"navigation_state"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	env, err := openEnv(c.globals)
	if err != nil {
		return err
	}
	defer env.Close()

	return c.executeWithEnv(context.Background(), env)
}

// executeWithEnv runs status against a provided environment (for testing).
func (c *StatusCommand) executeWithEnv(ctx context.Context, env *cmdEnv) error {
	stats, err := env.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	_, hasNav, err := env.store.NewSession(nil).NavigationState(ctx)
	if err != nil {
		return err
	}

	dbSize := getDatabaseSize(env, env.dbPath)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(env, stats, dbSize, hasNav)
	}
	return c.printStatusHuman(env, stats, dbSize, hasNav)
}

func (c *StatusCommand) printStatusHuman(env *cmdEnv, stats *storage.Stats, dbSize int64, hasNav bool) error {
	fmt.Println("Housekeeper Status")
	fmt.Println("==================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", env.dbPath, formatBytes(dbSize))
	fmt.Printf("Feed groups:   %s\n", formatNumber(stats.ContentGroups))

	if stats.Articles > 0 {
		pct := float64(stats.CachedArticles) / float64(stats.Articles) * 100
		fmt.Printf("Articles:      %s (%s cached, %.1f%%)\n", formatNumber(stats.Articles), formatNumber(stats.CachedArticles), pct)
	} else {
		fmt.Printf("Articles:      %s\n", formatNumber(stats.Articles))
	}
	fmt.Printf("Saved:         %s\n", formatNumber(stats.SavedArticles))
	fmt.Printf("Talk pages:    %s (%s topic bodies)\n", formatNumber(stats.TalkPages), formatNumber(stats.TopicContent))

	fmt.Println()
	fmt.Printf("Max feed age:  %d days\n", env.cfg.Housekeeping.MaxFeedAgeDays)
	fmt.Printf("Talk pages:    keep %d\n", env.cfg.Housekeeping.TalkPageLimit)
	if hasNav {
		fmt.Println("Navigation:    saved")
	} else {
		fmt.Println("Navigation:    none (demotion disabled)")
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(env *cmdEnv, stats *storage.Stats, dbSize int64, hasNav bool) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      env.dbPath,
		DatabaseSizeBytes: dbSize,
		ContentGroups:     stats.ContentGroups,
		Articles:          stats.Articles,
		CachedArticles:    stats.CachedArticles,
		SavedArticles:     stats.SavedArticles,
		TalkPages:         stats.TalkPages,
		TopicContent:      stats.TopicContent,
		MaxFeedAgeDays:    env.cfg.Housekeeping.MaxFeedAgeDays,
		TalkPageLimit:     env.cfg.Housekeeping.TalkPageLimit,
		NavigationState:   hasNav,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(env *cmdEnv, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := env.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := env.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
