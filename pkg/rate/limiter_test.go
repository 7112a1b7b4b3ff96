package rate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLocalRateLimiter(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(2))

	for i := 0; i < 2; i++ {
		allowed, err := l.Allow("key")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := l.Allow("key")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Independent keys get independent buckets.
	allowed, err = l.Allow("other")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestNoLimiter(t *testing.T) {
	l := &NoLimiter{}
	for i := 0; i < 100; i++ {
		allowed, err := l.Allow("key")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}
