package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tokenworks/mint-server/pkg/core/data/withheld"
)

type store struct {
	mu         sync.Mutex
	records    []*withheld.Record
	aggregates map[string]uint64
	last       uint64
}

// New returns a new in memory withheld.Store
func New() withheld.Store {
	return &store{
		aggregates: make(map[string]uint64),
	}
}

// Add implements withheld.Store.Add
func (s *store) Add(_ context.Context, mint, account string, quantity uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(mint, account)
	if item != nil {
		item.Quantity += quantity
		item.LastUpdatedAt = time.Now()
	} else {
		s.last++
		s.records = append(s.records, &withheld.Record{
			Id: s.last,

			Mint:    mint,
			Account: account,

			Quantity: quantity,

			LastUpdatedAt: time.Now(),
			CreatedAt:     time.Now(),
		})
	}

	return nil
}

// Harvest implements withheld.Store.Harvest
func (s *store) Harvest(_ context.Context, mint string, accounts ...string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	harvested := s.drain(mint, accounts)
	s.aggregates[mint] += harvested
	return harvested, nil
}

// DrainMint implements withheld.Store.DrainMint
func (s *store) DrainMint(_ context.Context, mint string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quantity := s.aggregates[mint]
	if quantity == 0 {
		return 0, withheld.ErrNothingToWithdraw
	}

	s.aggregates[mint] = 0
	return quantity, nil
}

// DrainAccounts implements withheld.Store.DrainAccounts
func (s *store) DrainAccounts(_ context.Context, mint string, accounts ...string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.drain(mint, accounts), nil
}

// GetAccount implements withheld.Store.GetAccount
func (s *store) GetAccount(_ context.Context, mint, account string) (*withheld.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(mint, account)
	if item == nil {
		return nil, withheld.ErrNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetMintAggregate implements withheld.Store.GetMintAggregate
func (s *store) GetMintAggregate(_ context.Context, mint string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.aggregates[mint], nil
}

// GetTotal implements withheld.Store.GetTotal
func (s *store) GetTotal(_ context.Context, mint string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.aggregates[mint]
	for _, item := range s.records {
		if item.Mint == mint {
			total += item.Quantity
		}
	}
	return total, nil
}

func (s *store) find(mint, account string) *withheld.Record {
	for _, item := range s.records {
		if item.Mint == mint && item.Account == account {
			return item
		}
	}
	return nil
}

func (s *store) drain(mint string, accounts []string) uint64 {
	var drained uint64
	for _, account := range accounts {
		item := s.find(mint, account)
		if item == nil || item.Quantity == 0 {
			continue
		}

		drained += item.Quantity
		item.Quantity = 0
		item.LastUpdatedAt = time.Now()
	}
	return drained
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.aggregates = make(map[string]uint64)
	s.last = 0
}
