package housekeeping

import (
	"fmt"
	"time"

	"github.com/runnerr0/housekeeper/internal/articlekey"
	"github.com/runnerr0/housekeeper/internal/feed"
	"github.com/runnerr0/housekeeper/internal/storage"
)

// Collection is the result of walking the content groups.
type Collection struct {
	// Referenced holds every key reachable from a retained group.
	Referenced KeySet
	// Expired holds the groups older than the cutoff. They contribute
	// nothing to Referenced.
	Expired []storage.ContentGroup
	// Anomalies lists what was skipped.
	Anomalies []Anomaly
}

// CollectReferences classifies groups against cutoff, the oldest retained
// feed day. A group dated strictly before cutoff is expired; a group with no
// date never expires. A group whose stored day cannot be parsed is reported
// as an anomaly and expired, since its age is unknown and it can never be
// shown under a feed day. Every other group contributes the keys of its
// article URL, its content preview, and the typed entries of its full
// content.
func CollectReferences(groups []storage.ContentGroup, cutoff time.Time) Collection {
	c := Collection{Referenced: make(KeySet, len(groups)*5+1)}

	for _, g := range groups {
		if g.DateInvalid {
			c.anomaly(g, "unparsable feed day")
			c.Expired = append(c.Expired, g)
			continue
		}
		if !g.MidnightUTCDate.IsZero() && g.MidnightUTCDate.Before(cutoff) {
			c.Expired = append(c.Expired, g)
			continue
		}

		if g.ArticleURL != "" {
			c.addLocator(g, g.ArticleURL, "article URL")
		}
		if g.ContentPreview != "" {
			c.addLocator(g, g.ContentPreview, "content preview")
		}
		if g.FullContent != nil {
			c.addFullContent(g)
		}
	}

	return c
}

func (c *Collection) addFullContent(g storage.ContentGroup) {
	entries, err := g.FullContent.Entries()
	if err != nil {
		c.anomaly(g, err.Error())
		return
	}

	for i, e := range entries {
		if u, ok := e.(feed.UnknownEntry); ok {
			c.anomaly(g, fmt.Sprintf("entry %d: undecodable entry of kind %q", i, u.Tag))
			continue
		}

		switch g.ContentType {
		case feed.ContentTypeURL:
			if u, ok := e.(feed.URLEntry); ok {
				c.addLocator(g, u.URL, fmt.Sprintf("entry %d", i))
				continue
			}
		case feed.ContentTypeTopReadPreview:
			if p, ok := e.(feed.TopReadPreview); ok {
				c.addLocator(g, p.ArticleURL, fmt.Sprintf("entry %d", i))
				continue
			}
		case feed.ContentTypeStory:
			if s, ok := e.(feed.NewsStory); ok {
				for j, p := range s.ArticlePreviews {
					c.addLocator(g, p.ArticleURL, fmt.Sprintf("entry %d preview %d", i, j))
				}
				continue
			}
		case feed.ContentTypeImage, feed.ContentTypeNotification, feed.ContentTypeAnnouncement,
			feed.ContentTypeOnThisDayEvent, feed.ContentTypeTheme:
			// These never reference articles.
			continue
		default:
			c.anomaly(g, fmt.Sprintf("entry %d: unknown content type", i))
			continue
		}

		c.anomaly(g, fmt.Sprintf("entry %d: %q entry in %q group", i, e.Kind(), g.ContentType))
	}
}

func (c *Collection) addLocator(g storage.ContentGroup, locator, where string) {
	key, ok := articlekey.Key(locator)
	if !ok {
		c.anomaly(g, fmt.Sprintf("%s: unresolvable locator %q", where, locator))
		return
	}
	c.Referenced.Add(key)
}

func (c *Collection) anomaly(g storage.ContentGroup, reason string) {
	c.Anomalies = append(c.Anomalies, Anomaly{
		GroupKey:    g.Key,
		ContentType: g.ContentType,
		Reason:      reason,
	})
}
