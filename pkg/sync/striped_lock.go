// Package sync provides concurrency utilities for partitioning work across
// a bounded key space.
package sync

import (
	"fmt"
	base "sync"
)

const hashEntriesPerLock = 200

// StripedLock consistently maps a key space onto a fixed pool of locks.
// Keys that collide onto the same stripe share a lock, bounding memory while
// still allowing unrelated keys to proceed concurrently.
type StripedLock struct {
	locks    []base.RWMutex
	hashRing *ring
}

// NewStripedLock returns a StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	ringEntries := make(map[string]interface{})
	for i := 0; i < int(stripes); i++ {
		ringEntries[fmt.Sprintf("lock%d", i)] = i
	}

	return &StripedLock{
		locks:    make([]base.RWMutex, stripes),
		hashRing: newRing(ringEntries, hashEntriesPerLock),
	}
}

// Get gets the lock for a key. The same key always maps to the same lock.
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	sharded := l.hashRing.shard(key).(int)
	return &l.locks[sharded]
}
