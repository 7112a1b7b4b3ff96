package sync

import (
	"fmt"
	base "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripedLock_StableMapping(t *testing.T) {
	l := NewStripedLock(16)

	for i := 0; i < 100; i++ {
		key := []byte(fmt.Sprintf("key%d", i))
		assert.Same(t, l.Get(key), l.Get(key))
	}
}

func TestStripedLock_Distribution(t *testing.T) {
	l := NewStripedLock(16)

	distinct := make(map[*base.RWMutex]struct{})
	for i := 0; i < 1000; i++ {
		distinct[l.Get([]byte(fmt.Sprintf("key%d", i)))] = struct{}{}
	}

	// Every stripe should see traffic at this key volume.
	require.Len(t, distinct, 16)
}
