package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache(capacity int, ttl time.Duration) (*LRUCache[int32, string], *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := NewLRUCache[int32, string](capacity, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Set(1, "one", 0)
	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	c.Set(1, "uno", 0)
	v, _ = c.Get(1)
	assert.Equal(t, "uno", v)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_Expiration(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)
	c.Set(1, "one", 0)

	clock.Advance(59 * time.Minute)
	_, ok := c.Get(1)
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok = c.Get(1)
	assert.False(t, ok, "an entry exactly TTL old is stale")
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_Eviction(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set(1, "one", 0)
	c.Set(2, "two", 0)

	// Touch 1 so that 2 becomes the least recently used.
	c.Get(1)
	c.Set(3, "three", 0)

	_, ok := c.Get(2)
	assert.False(t, ok)
	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestLRUCache_DeleteAndClear(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)
	c.Set(1, "one", 0)
	c.Set(2, "two", 0)

	assert.True(t, c.Delete(1))
	assert.False(t, c.Delete(1))
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_CleanupExpired(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)
	c.Set(1, "one", time.Minute)
	c.Set(2, "two", time.Hour)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.CleanupExpired())
	assert.Equal(t, 1, c.Size())
}
