package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func TestTTL_Expiry(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	c := New[string, int](time.Minute, clk)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clk.now = clk.now.Add(59 * time.Second)
	_, ok = c.Get("a")
	assert.True(t, ok)

	clk.now = clk.now.Add(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTL_OverwriteAndDelete(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	c := New[string, string](time.Hour, clk)
	c.Set("k", "old")
	c.Set("k", "new")
	v, _ := c.Get("k")
	assert.Equal(t, "new", v)

	c.Delete("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestTTL_Disabled(t *testing.T) {
	c := New[int, int](0, nil)
	c.Set(1, 1)
	_, ok := c.Get(1)
	assert.False(t, ok)
}
