package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tokenworks/mint-server/pkg/core/data/mint"
)

type store struct {
	mu      sync.Mutex
	records []*mint.Record
	last    uint64
}

// New returns a new in memory mint.Store
func New() mint.Store {
	return &store{}
}

// Put implements mint.Store.Put
func (s *store) Put(_ context.Context, record *mint.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := record.Validate(); err != nil {
		return err
	}

	if item := s.find(record.Address); item != nil {
		return mint.ErrExists
	}

	s.last++
	cloned := record.Clone()
	cloned.Id = s.last
	cloned.Version = 1
	cloned.CreatedAt = time.Now()
	cloned.LastUpdatedAt = time.Now()
	s.records = append(s.records, &cloned)

	cloned.CopyTo(record)

	return nil
}

// Get implements mint.Store.Get
func (s *store) Get(_ context.Context, address string) (*mint.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(address)
	if item == nil {
		return nil, mint.ErrNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// Update implements mint.Store.Update
func (s *store) Update(_ context.Context, record *mint.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := record.Validate(); err != nil {
		return err
	}

	item := s.find(record.Address)
	if item == nil {
		return mint.ErrNotFound
	}

	if item.Version != record.Version {
		return mint.ErrStaleRecord
	}

	cloned := record.Clone()
	cloned.Id = item.Id
	cloned.Version = item.Version + 1
	cloned.CreatedAt = item.CreatedAt
	cloned.LastUpdatedAt = time.Now()

	*item = cloned

	item.CopyTo(record)

	return nil
}

func (s *store) find(address string) *mint.Record {
	for _, item := range s.records {
		if item.Address == address {
			return item
		}
	}
	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.last = 0
}
