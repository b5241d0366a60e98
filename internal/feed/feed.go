// Package feed models the typed payloads carried by explore-feed content
// groups. A group declares a ContentType, and its full content is an ordered
// list of entries whose concrete shape depends on that type.
package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ContentType tags the kind of content a group holds.
type ContentType string

const (
	ContentTypeURL            ContentType = "url"
	ContentTypeTopReadPreview ContentType = "top_read_preview"
	ContentTypeStory          ContentType = "news_story"
	ContentTypeImage          ContentType = "image"
	ContentTypeNotification   ContentType = "notification"
	ContentTypeAnnouncement   ContentType = "announcement"
	ContentTypeOnThisDayEvent ContentType = "on_this_day_event"
	ContentTypeTheme          ContentType = "theme"
)

// Known reports whether c is one of the defined content types.
func (c ContentType) Known() bool {
	switch c {
	case ContentTypeURL, ContentTypeTopReadPreview, ContentTypeStory,
		ContentTypeImage, ContentTypeNotification, ContentTypeAnnouncement,
		ContentTypeOnThisDayEvent, ContentTypeTheme:
		return true
	}
	return false
}

// ErrNotSequence is returned when a payload's top-level value is not a list.
var ErrNotSequence = errors.New("full content is not a sequence")

// Entry is one element of a group's full content. The concrete types are
// URLEntry, TopReadPreview, NewsStory, ImageEntry, NotificationEntry,
// AnnouncementEntry, OnThisDayEvent, ThemeEntry and UnknownEntry.
type Entry interface {
	Kind() string
	entry()
}

// URLEntry is a bare article locator.
type URLEntry struct {
	URL string `json:"url"`
}

// ArticlePreview is a lightweight reference to an article.
type ArticlePreview struct {
	ArticleURL   string `json:"article_url"`
	DisplayTitle string `json:"display_title,omitempty"`
}

// TopReadPreview is one entry of a most-read list.
type TopReadPreview struct {
	ArticlePreview
	Rank      int   `json:"rank,omitempty"`
	ViewCount int64 `json:"view_count,omitempty"`
}

// NewsStory is an in-the-news item that links several articles.
type NewsStory struct {
	StoryHTML       string           `json:"story_html,omitempty"`
	ArticlePreviews []ArticlePreview `json:"article_previews,omitempty"`
}

// ImageEntry is a picture of the day.
type ImageEntry struct {
	CanonicalPageTitle string `json:"canonical_page_title,omitempty"`
	ImageURL           string `json:"image_url,omitempty"`
}

// NotificationEntry is an in-feed notification card.
type NotificationEntry struct {
	Text string `json:"text,omitempty"`
}

// AnnouncementEntry is a server-driven announcement card.
type AnnouncementEntry struct {
	Identifier string `json:"identifier,omitempty"`
	Text       string `json:"text,omitempty"`
}

// OnThisDayEvent is a historical event for the group's day.
type OnThisDayEvent struct {
	Year int    `json:"year,omitempty"`
	Text string `json:"text,omitempty"`
}

// ThemeEntry is a reading-theme suggestion card.
type ThemeEntry struct {
	Name string `json:"name,omitempty"`
}

// UnknownEntry is an entry whose kind tag is not recognized.
type UnknownEntry struct {
	Tag string
	Raw json.RawMessage
}

func (URLEntry) Kind() string          { return "url" }
func (TopReadPreview) Kind() string    { return "top_read_preview" }
func (NewsStory) Kind() string         { return "news_story" }
func (ImageEntry) Kind() string        { return "image" }
func (NotificationEntry) Kind() string { return "notification" }
func (AnnouncementEntry) Kind() string { return "announcement" }
func (OnThisDayEvent) Kind() string    { return "on_this_day_event" }
func (ThemeEntry) Kind() string        { return "theme" }
func (e UnknownEntry) Kind() string    { return e.Tag }

func (URLEntry) entry()          {}
func (TopReadPreview) entry()    {}
func (NewsStory) entry()         {}
func (ImageEntry) entry()        {}
func (NotificationEntry) entry() {}
func (AnnouncementEntry) entry() {}
func (OnThisDayEvent) entry()    {}
func (ThemeEntry) entry()        {}
func (UnknownEntry) entry()      {}

// Payload is the stored, still-encoded full content of a group. It is only
// decoded when Entries is called.
type Payload struct {
	raw json.RawMessage
}

// NewPayload wraps already-encoded content.
func NewPayload(raw []byte) *Payload {
	if len(raw) == 0 {
		return nil
	}
	return &Payload{raw: append(json.RawMessage(nil), raw...)}
}

// EncodePayload encodes entries into a Payload, tagging each with its kind.
func EncodePayload(entries ...Entry) (*Payload, error) {
	items := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		b, err := encodeEntry(e)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return &Payload{raw: raw}, nil
}

// Bytes returns the encoded payload.
func (p *Payload) Bytes() []byte {
	if p == nil {
		return nil
	}
	return p.raw
}

// Entries decodes the payload. Each element decodes into the variant named by
// its kind tag; an element that cannot be decoded becomes an UnknownEntry.
// ErrNotSequence is returned if the payload is not a list at all.
func (p *Payload) Entries() ([]Entry, error) {
	if p == nil {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(p.raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotSequence
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSequence, err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, decodeEntry(item))
	}
	return entries, nil
}
