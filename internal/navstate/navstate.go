// Package navstate derives the preserved article keys from the persisted
// navigation state: every article that sits in an open tab, whether it is
// the visible page or somewhere in that tab's back stack.
package navstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/runnerr0/housekeeper/internal/articlekey"
)

// Source returns the raw persisted navigation state. ok is false when the
// user has no saved state.
type Source interface {
	NavigationState(ctx context.Context) (payload []byte, ok bool, err error)
}

// State is the persisted navigation state.
type State struct {
	Tabs []Tab `json:"tabs"`
}

// Tab is one open tab. Items is its back stack; the last item is the page
// currently shown.
type Tab struct {
	Items []Item `json:"items"`
}

// Item is one page in a back stack.
type Item struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Controller answers preserved-key queries from a Source.
type Controller struct {
	source Source
}

// NewController binds a Controller to source.
func NewController(source Source) *Controller {
	return &Controller{source: source}
}

// PreservedKeys returns the keys of every article in the navigation state, in
// first-seen order without duplicates. Items whose URL has no key are
// skipped. ok is false when there is no navigation state to consult.
func (c *Controller) PreservedKeys(ctx context.Context) ([]string, bool, error) {
	payload, ok, err := c.source.NavigationState(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load navigation state: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, false, fmt.Errorf("decode navigation state: %w", err)
	}

	return state.Keys(), true, nil
}

// Keys returns the keys of every item in s, deduplicated in first-seen order.
func (s State) Keys() []string {
	seen := make(map[string]struct{})
	keys := []string{}
	for _, tab := range s.Tabs {
		for _, item := range tab.Items {
			key, ok := articlekey.Key(item.URL)
			if !ok {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}
