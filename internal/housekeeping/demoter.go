package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/housekeeper/internal/metrics"
	"github.com/runnerr0/housekeeper/internal/storage"
)

var demoteFilter = storage.ArticleFilter{
	CachedOnly: true,
	NotSaved:   true,
}

// DemoteDiskCache clears the cached flag on every cached, unsaved article the
// navigation state does not preserve, commits, and returns the demoted
// articles' URLs so the caller can delete their files. Records are kept.
//
// Without navigation state nothing is demoted, since any open article could
// otherwise lose its files.
func (h *Housekeeper) DemoteDiskCache(ctx context.Context, sess Session, provider PreservedKeyProvider) ([]string, error) {
	hk := h.forPass(metrics.PassDemote)
	start := time.Now()
	defer func() { hk.metrics.RecordPassDuration(metrics.PassDemote, time.Since(start)) }()

	preserved, ok, err := hk.preservedKeys(ctx, provider)
	if err != nil {
		return nil, hk.fail(sess, StepDemoteDiskCache, err)
	}
	if !ok {
		hk.logger.Info("no navigation state, skipping disk cache demotion")
		return []string{}, nil
	}

	articles, err := sess.Articles(ctx, demoteFilter)
	if err != nil {
		return nil, hk.fail(sess, StepDemoteDiskCache, fmt.Errorf("%w: articles: %w", ErrStorageFetch, err))
	}

	urls := []string{}
	var demoted int
	for _, a := range articles {
		if !a.IsCached || a.SavedDate != nil || preserved.Contains(a.Key) {
			continue
		}
		sess.MarkArticleUncached(a)
		demoted++
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}

	if err := hk.save(ctx, sess); err != nil {
		return nil, hk.fail(sess, StepDemoteDiskCache, err)
	}

	hk.metrics.RecordArticlesDemoted(demoted)
	hk.logger.Info("disk cache demoted", "demoted", demoted, "preserved", preserved.Len())

	return urls, nil
}
