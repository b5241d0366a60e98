// Package inuse tracks which articles are currently held live by an open
// view. Views acquire an article when they materialize it and release it
// when they are torn down; housekeeping only queries the registry.
package inuse

import (
	"sync"

	"github.com/runnerr0/housekeeper/internal/articlekey"
)

// Registry is a reference count of live articles keyed by canonical key. The
// zero value is ready to use and a Registry is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	counts map[string]int
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{counts: make(map[string]int)}
}

// Acquire records one more live holder of the article at url. It returns
// false, recording nothing, when url has no key.
func (r *Registry) Acquire(url string) bool {
	key, ok := articlekey.Key(url)
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[key]++
	return true
}

// Release drops one holder of the article at url. Releasing an article that
// is not held is a no-op.
func (r *Registry) Release(url string) {
	key, ok := articlekey.Key(url)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	switch n := r.counts[key]; {
	case n > 1:
		r.counts[key] = n - 1
	case n == 1:
		delete(r.counts, key)
	}
}

// InUse reports whether any holder currently has the article with key.
func (r *Registry) InUse(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key] > 0
}

// Len returns the number of distinct live articles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counts)
}
