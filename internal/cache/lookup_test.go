package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSetGet(t *testing.T) {
	c := NewLookup(10, time.Minute, true)

	c.Set("RDUJFK", "segment")
	value, ok := c.Get("RDUJFK")
	require.True(t, ok)
	assert.Equal(t, "segment", value)

	_, ok = c.Get("JFKRDU")
	assert.False(t, ok)
}

func TestLookupNegativeEntry(t *testing.T) {
	c := NewLookup(10, time.Minute, true)

	// A nil value records confirmed absence, distinct from "not cached".
	c.Set("XXXYYY", nil)
	value, ok := c.Get("XXXYYY")
	require.True(t, ok)
	assert.Nil(t, value)
}

func TestLookupTTLExpiry(t *testing.T) {
	c := NewLookup(10, 50*time.Millisecond, true)

	c.Set("key", "value")
	_, ok := c.Get("key")
	require.True(t, ok)

	time.Sleep(120 * time.Millisecond)
	_, ok = c.Get("key")
	assert.False(t, ok, "entry must not be honored past its TTL")
}

func TestLookupNoExpiry(t *testing.T) {
	// Zero TTL (mapped from the -1 setting) means entries only leave by
	// capacity eviction.
	c := NewLookup(2, 0, true)

	c.Set("a", 1)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("b", 2)
	c.Set("c", 3)
	_, ok = c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted at capacity")
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLookupDisabledBypass(t *testing.T) {
	c := NewLookup(10, time.Minute, false)

	c.Set("key", "value")
	_, ok := c.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
