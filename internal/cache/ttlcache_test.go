package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTL_GetSet(t *testing.T) {
	now := time.Now()
	c := NewTTL[string](time.Minute).WithClock(func() time.Time { return now })

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "value")
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestTTL_Expiry(t *testing.T) {
	now := time.Now()
	c := NewTTL[int](time.Minute).WithClock(func() time.Time { return now })

	c.Set("a", 1)

	now = now.Add(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok, "entry should survive inside the window")

	now = now.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry should expire after the window")
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on read")
}

func TestTTL_Invalidate(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Set("a", 1)
	c.Invalidate("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTL_Purge(t *testing.T) {
	now := time.Now()
	c := NewTTL[int](time.Minute).WithClock(func() time.Time { return now })

	c.Set("old", 1)
	now = now.Add(2 * time.Minute)
	c.Set("fresh", 2)

	c.Purge()
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("fresh")
	assert.True(t, ok)
}
