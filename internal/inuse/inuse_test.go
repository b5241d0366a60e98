package inuse

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const goURL = "https://en.wikipedia.org/wiki/Go"

func TestRegistry_AcquireRelease(t *testing.T) {
	r := New()
	assert.False(t, r.InUse(goURL))

	assert.True(t, r.Acquire(goURL))
	assert.True(t, r.Acquire("http://EN.m.wikipedia.org/wiki/Go"), "same article, other spelling")
	assert.True(t, r.InUse(goURL))
	assert.Equal(t, 1, r.Len())

	r.Release(goURL)
	assert.True(t, r.InUse(goURL), "one holder left")

	r.Release(goURL)
	assert.False(t, r.InUse(goURL))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ReleaseUnheld(t *testing.T) {
	r := New()
	r.Release(goURL)
	assert.False(t, r.InUse(goURL))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_InvalidURL(t *testing.T) {
	r := New()
	assert.False(t, r.Acquire("::not a url"))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ZeroValue(t *testing.T) {
	var r Registry
	assert.True(t, r.Acquire(goURL))
	assert.True(t, r.InUse(goURL))
}

func TestRegistry_Concurrent(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Acquire(goURL)
			r.Release(goURL)
		}()
	}
	wg.Wait()
	assert.False(t, r.InUse(goURL))
}
