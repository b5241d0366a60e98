package housekeeping

import (
	"context"

	"github.com/runnerr0/housekeeper/internal/storage"
)

// Session is the storage unit of work a pass runs against. Deletes and flag
// changes stay pending until Save; batch deletes and orphan cleanup commit
// on their own. *storage.Session satisfies it.
type Session interface {
	ContentGroups(ctx context.Context) ([]storage.ContentGroup, error)
	DeleteContentGroup(g storage.ContentGroup)
	Articles(ctx context.Context, f storage.ArticleFilter) ([]storage.Article, error)
	DeleteArticle(a storage.Article)
	MarkArticleUncached(a storage.Article)
	BatchDeleteTalkPages(ctx context.Context, keep int) ([]int64, error)
	RemoveUnlinkedTopicContent(ctx context.Context) (int64, error)
	HasChanges() bool
	Save(ctx context.Context) error
	Rollback()
}

// PreservedKeyProvider yields the keys that must survive regardless of
// reachability. ok is false when no preservation information is available.
type PreservedKeyProvider interface {
	PreservedKeys(ctx context.Context) (keys []string, ok bool, err error)
}

var _ Session = (*storage.Session)(nil)
