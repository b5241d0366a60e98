package feed

import (
	"encoding/json"
	"fmt"
)

// envelope is the on-disk shape of a single entry: a kind tag plus the
// variant's own fields.
type envelope struct {
	Kind string `json:"kind"`
}

func encodeEntry(e Entry) (json.RawMessage, error) {
	if u, ok := e.(UnknownEntry); ok {
		return u.Raw, nil
	}

	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s entry: %w", e.Kind(), err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode %s entry: %w", e.Kind(), err)
	}
	kind, _ := json.Marshal(e.Kind())
	fields["kind"] = kind

	return json.Marshal(fields)
}

func decodeEntry(raw json.RawMessage) Entry {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return UnknownEntry{Raw: raw}
	}

	switch env.Kind {
	case "url":
		return decodeAs[URLEntry](env.Kind, raw)
	case "top_read_preview":
		return decodeAs[TopReadPreview](env.Kind, raw)
	case "news_story":
		return decodeAs[NewsStory](env.Kind, raw)
	case "image":
		return decodeAs[ImageEntry](env.Kind, raw)
	case "notification":
		return decodeAs[NotificationEntry](env.Kind, raw)
	case "announcement":
		return decodeAs[AnnouncementEntry](env.Kind, raw)
	case "on_this_day_event":
		return decodeAs[OnThisDayEvent](env.Kind, raw)
	case "theme":
		return decodeAs[ThemeEntry](env.Kind, raw)
	default:
		return UnknownEntry{Tag: env.Kind, Raw: raw}
	}
}

func decodeAs[T Entry](kind string, raw json.RawMessage) Entry {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return UnknownEntry{Tag: kind, Raw: raw}
	}
	return v
}
