package mint

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("mint record not found")

	ErrExists = errors.New("mint record already exists")

	// ErrStaleRecord indicates a conflicting update landed after the
	// caller's snapshot was taken. The caller should re-read and retry.
	ErrStaleRecord = errors.New("mint record is stale")
)

// Store persists mint configuration records. Updates are optimistic: the
// caller reads a snapshot, mutates it, and commits with Update, which only
// applies if no conflicting update occurred meanwhile. This serializes all
// read-then-write operations against a given mint without shared locks.
type Store interface {
	// Put creates the record for a new mint. Fails with ErrExists if the
	// mint address is already tracked.
	Put(ctx context.Context, record *Record) error

	// Get gets the record for a mint by address.
	Get(ctx context.Context, address string) (*Record, error)

	// Update commits a mutated snapshot. Fails with ErrStaleRecord when
	// the stored version no longer matches the snapshot's version. On
	// success the record's version is bumped.
	Update(ctx context.Context, record *Record) error
}
