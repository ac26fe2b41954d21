package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEvictsFartherExtremeKey(t *testing.T) {
	c := newCache(3)
	c.put(0, []string{"h"})
	c.put(5, []string{"f5"})
	c.put(6, []string{"f6"})
	require.Equal(t, 3, c.size())

	// Requesting line 4 makes the largest key (6, distance 2) farther
	// than the smallest non-zero key (5, distance 1): evict 6.
	c.put(4, []string{"f4"})
	_, ok := c.get(6)
	assert.False(t, ok)
	_, ok = c.get(0)
	assert.True(t, ok, "line 0 must never be evicted while a candidate exists")
	_, ok = c.get(5)
	assert.True(t, ok)
}

func TestCacheNeverEvictsLineZero(t *testing.T) {
	c := newCache(2)
	c.put(0, []string{"h"})
	c.put(1, []string{"f1"})
	c.put(50, []string{"f50"})

	_, ok := c.get(0)
	assert.True(t, ok)
}

func TestCacheTieEvictsLowerKey(t *testing.T) {
	c := newCache(3)
	c.put(0, []string{"h"})
	c.put(10, []string{"f10"})
	c.put(20, []string{"f20"})

	// Requesting line 15 is equidistant from 10 and 20: evict the
	// lower key, 10.
	c.put(15, []string{"f15"})
	_, ok := c.get(10)
	assert.False(t, ok)
	_, ok = c.get(20)
	assert.True(t, ok)
}

func TestCacheUpdateExistingKeyDoesNotGrow(t *testing.T) {
	c := newCache(2)
	c.put(0, []string{"h"})
	c.put(5, []string{"old"})
	c.put(5, []string{"new"})
	assert.Equal(t, 2, c.size())
	fields, _ := c.get(5)
	assert.Equal(t, []string{"new"}, fields)
}

func TestCacheFlushClearsEverything(t *testing.T) {
	c := newCache(10)
	c.put(0, []string{"h"})
	c.put(1, []string{"f1"})
	c.flush()
	assert.Equal(t, 0, c.size())
	_, ok := c.get(0)
	assert.False(t, ok)
}
