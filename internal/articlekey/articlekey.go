// Package articlekey derives the canonical database key for an article
// locator. Two locators that point at the same article always produce the
// same key, so keys can be compared and stored in sets.
package articlekey

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Key returns the canonical key for rawURL. The second return value is false
// when the locator is malformed and has no identity.
//
// The canonical form is https://<host><path>: the scheme is forced to https,
// the host is lowercased and converted to its ASCII (punycode) form, a mobile
// "m" host label is collapsed (en.m.example.org and m.example.org), the path
// is percent-decoded with spaces replaced by underscores, and any query or
// fragment is dropped.
func Key(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", false
	}

	host, ok := normalizeHost(u.Hostname())
	if !ok {
		return "", false
	}

	path := strings.ReplaceAll(u.Path, " ", "_")
	if path == "" || path == "/" {
		return "", false
	}

	return "https://" + host + path, true
}

func normalizeHost(host string) (string, bool) {
	if host == "" {
		return "", false
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", false
	}
	ascii = strings.ToLower(strings.TrimSuffix(ascii, "."))

	// m.org keeps its label: there is nothing to collapse it into.
	labels := strings.Split(ascii, ".")
	switch {
	case len(labels) > 2 && labels[1] == "m":
		labels = append(labels[:1], labels[2:]...)
	case len(labels) > 2 && labels[0] == "m":
		labels = labels[1:]
	}
	return strings.Join(labels, "."), true
}
