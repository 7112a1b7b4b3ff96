package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/tokenworks/mint-server/pkg/core/data/mint"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres mint.Store
func New(db *sql.DB) mint.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Put implements mint.Store.Put
func (s *store) Put(ctx context.Context, record *mint.Record) error {
	return dbPut(ctx, s.db, record)
}

// Get implements mint.Store.Get
func (s *store) Get(ctx context.Context, address string) (*mint.Record, error) {
	model, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromModel(model)
}

// Update implements mint.Store.Update
func (s *store) Update(ctx context.Context, record *mint.Record) error {
	return dbUpdate(ctx, s.db, record)
}
