package storage

import (
	"time"

	"github.com/runnerr0/housekeeper/internal/feed"
)

// ContentGroup is one dated explore-feed entry.
type ContentGroup struct {
	ID              int64
	Key             string
	ContentType     feed.ContentType
	MidnightUTCDate time.Time // zero when the group is not tied to a day
	ArticleURL      string
	ContentPreview  string
	FullContent     *feed.Payload

	// DateInvalid is set when a stored day exists but cannot be parsed.
	// MidnightUTCDate is zero in that case.
	DateInvalid bool
}

// Article is the local cache state of one article, independent of its body.
type Article struct {
	Key                string
	URL                string
	DisplayTitle       string
	IsCached           bool
	SavedDate          *time.Time
	ViewedDate         *time.Time
	PlacesSortOrder    int64
	IsExcludedFromFeed bool

	// IsFault is true when nothing outside the store holds this record live.
	// It is computed at fetch time from the session's in-use registry and is
	// never persisted.
	IsFault bool
}

// ArticleFilter selects articles by column state. All set conditions must
// hold.
type ArticleFilter struct {
	NeverViewed         bool
	NotSaved            bool
	NotOnMap            bool
	NotExcludedFromFeed bool
	CachedOnly          bool
}

// TalkPage is a cached discussion page.
type TalkPage struct {
	ID           int64
	Key          string
	URL          string
	DateAccessed time.Time
	Topics       []TalkPageTopic
}

// TalkPageTopic is a section of a talk page. Topics with identical HTML share
// one content record.
type TalkPageTopic struct {
	Title string
	HTML  string
}

// Stats holds record counts for the cache database.
type Stats struct {
	ContentGroups  int64
	Articles       int64
	CachedArticles int64
	SavedArticles  int64
	TalkPages      int64
	TopicContent   int64
}
