package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/tokenworks/mint-server/pkg/core/data/withheld"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres withheld.Store
func New(db *sql.DB) withheld.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Add implements withheld.Store.Add
func (s *store) Add(ctx context.Context, mint, account string, quantity uint64) error {
	return dbAdd(ctx, s.db, mint, account, quantity)
}

// Harvest implements withheld.Store.Harvest
func (s *store) Harvest(ctx context.Context, mint string, accounts ...string) (uint64, error) {
	return dbHarvest(ctx, s.db, mint, accounts)
}

// DrainMint implements withheld.Store.DrainMint
func (s *store) DrainMint(ctx context.Context, mint string) (uint64, error) {
	return dbDrainMint(ctx, s.db, mint)
}

// DrainAccounts implements withheld.Store.DrainAccounts
func (s *store) DrainAccounts(ctx context.Context, mint string, accounts ...string) (uint64, error) {
	return dbDrainAccountsDirect(ctx, s.db, mint, accounts)
}

// GetAccount implements withheld.Store.GetAccount
func (s *store) GetAccount(ctx context.Context, mint, account string) (*withheld.Record, error) {
	model, err := dbGetAccount(ctx, s.db, mint, account)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// GetMintAggregate implements withheld.Store.GetMintAggregate
func (s *store) GetMintAggregate(ctx context.Context, mint string) (uint64, error) {
	return dbGetMintAggregate(ctx, s.db, mint)
}

// GetTotal implements withheld.Store.GetTotal
func (s *store) GetTotal(ctx context.Context, mint string) (uint64, error) {
	return dbGetTotal(ctx, s.db, mint)
}
