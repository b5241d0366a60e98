package housekeeping

import (
	"context"
	"fmt"

	"github.com/runnerr0/housekeeper/internal/storage"
)

// sweepFilter selects articles with no user state.
var sweepFilter = storage.ArticleFilter{
	NeverViewed:         true,
	NotSaved:            true,
	NotOnMap:            true,
	NotExcludedFromFeed: true,
}

// SweepArticles deletes every article that is unreachable, carries no user
// state and is not held live by a view, then commits. It returns the URLs of
// the deleted articles; articles without a URL are deleted but not listed.
func (h *Housekeeper) SweepArticles(ctx context.Context, sess Session, reachable KeySet) ([]string, error) {
	articles, err := sess.Articles(ctx, sweepFilter)
	if err != nil {
		return nil, h.fail(sess, StepSweepArticles, fmt.Errorf("%w: articles: %w", ErrStorageFetch, err))
	}

	urls := []string{}
	var deleted, live int
	for _, a := range articles {
		if !Sweepable(a, reachable) {
			if !a.IsFault {
				live++
			}
			continue
		}
		sess.DeleteArticle(a)
		deleted++
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}

	if err := h.save(ctx, sess); err != nil {
		return nil, h.fail(sess, StepSweepArticles, err)
	}

	h.metrics.RecordArticlesDeleted(deleted)
	h.logger.Info("unreferenced articles swept",
		"candidates", len(articles), "deleted", deleted, "in_use", live, "reachable", reachable.Len())

	return urls, nil
}

// Sweepable reports whether a may be deleted: never viewed, not saved, not
// on the map, not excluded from the feed, unreachable, and not in use.
func Sweepable(a storage.Article, reachable KeySet) bool {
	return a.ViewedDate == nil &&
		a.SavedDate == nil &&
		a.PlacesSortOrder == 0 &&
		!a.IsExcludedFromFeed &&
		!reachable.Contains(a.Key) &&
		a.IsFault
}
