// Package diskcache removes the on-disk payload of demoted articles. Each
// article's body and media live in one directory named after the SHA-256 of
// its key, so removal is a single recursive delete.
package diskcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runnerr0/housekeeper/internal/articlekey"
)

// Cache is an article payload directory tree rooted at Root.
type Cache struct {
	Root string
}

// New returns a Cache rooted at root.
func New(root string) *Cache {
	return &Cache{Root: root}
}

// PathFor returns the payload directory of the article at url. ok is false
// when url has no key.
func (c *Cache) PathFor(url string) (path string, ok bool) {
	key, ok := articlekey.Key(url)
	if !ok {
		return "", false
	}
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(c.Root, name[:2], name), true
}

// Remove deletes the payload directories of urls and returns how many
// existed. URLs without a key and directories already gone are skipped.
// Removal continues past failures; all of them are returned joined.
func (c *Cache) Remove(urls []string) (removed int, err error) {
	var errs []error
	for _, u := range urls {
		path, ok := c.PathFor(u)
		if !ok {
			continue
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			continue
		}
		if rmErr := os.RemoveAll(path); rmErr != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", u, rmErr))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
