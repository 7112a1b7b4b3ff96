package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring consistently maps a key space onto a fixed set of entries. Each
// entry is replicated around the ring so the mapping stays well distributed
// even for small entry counts.
type ring struct {
	hashRing *treemap.Map

	// minEntryValue caches the first entry so wrap-around lookups avoid an
	// O(log n) Min() call.
	minEntryValue interface{}
}

func newRing(entries map[string]interface{}, replicationFactor uint) *ring {
	hashRing := treemap.NewWith(utils.Int64Comparator)
	for k, v := range entries {
		keyHash, _ := murmur3.Sum128([]byte(k))
		keyHashBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(keyHashBytes, keyHash)

		for i := uint(0); i < replicationFactor; i++ {
			replicatedHash, _ := murmur3.Sum128(append(keyHashBytes, byte(i)))
			hashRing.Put(int64(replicatedHash), v)
		}
	}

	_, minEntryValue := hashRing.Min()

	return &ring{
		hashRing:      hashRing,
		minEntryValue: minEntryValue,
	}
}

// shard returns the ring entry owning the provided key.
func (r *ring) shard(key []byte) interface{} {
	keyHash, _ := murmur3.Sum128(key)

	_, value := r.hashRing.Ceiling(int64(keyHash))
	if value == nil {
		// Wrapped past the largest ring position.
		value = r.minEntryValue
	}
	return value
}
