package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	c := NewMemory()

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()

	c.Set("k", "v", -time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok)
	// expired entries stay in the map but read as absent
	assert.Equal(t, 1, c.Len())
}

func TestMemoryInvalidate(t *testing.T) {
	c := NewMemory()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestMemoryInvalidateAll(t *testing.T) {
	c := NewMemory()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.InvalidateAll()
	assert.Zero(t, c.Len())
}

func TestKeyCanonical(t *testing.T) {
	a := Key("list", map[string]interface{}{"state": "California", "limit": 10})
	b := Key("list", map[string]interface{}{"limit": 10, "state": "California"})
	assert.Equal(t, a, b)

	c := Key("list", map[string]interface{}{"limit": 20, "state": "California"})
	assert.NotEqual(t, a, c)

	assert.Equal(t, "stats", Key("stats", nil))
}
