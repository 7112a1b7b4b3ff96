package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_InsertAndRetrieve(t *testing.T) {
	c := NewCache(10)

	require.NoError(t, c.Insert("a", 1, 4))
	require.NoError(t, c.Insert("b", 2, 4))
	assert.Error(t, c.Insert("a", 3, 1))

	value, ok := c.Retrieve("a")
	require.True(t, ok)
	assert.Equal(t, 1, value)

	assert.Equal(t, 8, c.Weight())
	assert.Equal(t, 10, c.Budget())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(10)

	require.NoError(t, c.Insert("a", 1, 4))
	require.NoError(t, c.Insert("b", 2, 4))

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Retrieve("a")
	require.True(t, ok)

	require.NoError(t, c.Insert("c", 3, 4))

	_, ok = c.Retrieve("b")
	assert.False(t, ok)
	_, ok = c.Retrieve("a")
	assert.True(t, ok)
	_, ok = c.Retrieve("c")
	assert.True(t, ok)
}

func TestCache_OversizedValueClearsOut(t *testing.T) {
	c := NewCache(10)

	require.NoError(t, c.Insert("a", 1, 4))
	require.NoError(t, c.Insert("huge", 2, 100))

	// A value over budget cannot rest in the cache.
	_, ok := c.Retrieve("huge")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Weight())
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(10)

	require.NoError(t, c.Insert("a", 1, 4))
	c.Clear()

	_, ok := c.Retrieve("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Weight())
	require.NoError(t, c.Insert("a", 1, 4))
}
