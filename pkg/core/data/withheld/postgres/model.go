package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tokenworks/mint-server/pkg/core/data/withheld"
	pgutil "github.com/tokenworks/mint-server/pkg/database/postgres"
)

const (
	accountTableName   = "mintserver__core_withheldaccount"
	aggregateTableName = "mintserver__core_withheldmint"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Mint    string `db:"mint"`
	Account string `db:"account"`

	Quantity uint64 `db:"quantity"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
	CreatedAt     time.Time `db:"created_at"`
}

func fromModel(obj *model) *withheld.Record {
	return &withheld.Record{
		Id: uint64(obj.Id.Int64),

		Mint:    obj.Mint,
		Account: obj.Account,

		Quantity: obj.Quantity,

		LastUpdatedAt: obj.LastUpdatedAt,
		CreatedAt:     obj.CreatedAt,
	}
}

func dbAdd(ctx context.Context, db *sqlx.DB, mint, account string, quantity uint64) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + accountTableName + `
			(mint, account, quantity, last_updated_at, created_at)
			VALUES ($1, $2, $3, $4, $4)

			ON CONFLICT (mint, account)
			DO UPDATE
				SET quantity = ` + accountTableName + `.quantity + $3, last_updated_at = $4
				WHERE ` + accountTableName + `.mint = $1 AND ` + accountTableName + `.account = $2`

		_, err := tx.ExecContext(
			ctx,
			query,
			mint,
			account,
			quantity,
			time.Now(),
		)
		return err
	})
}

// dbDrainAccounts zeroes the listed account balances within tx, returning
// the drained sum.
func dbDrainAccounts(ctx context.Context, tx *sqlx.Tx, mint string, accounts []string) (uint64, error) {
	var drained uint64
	for _, account := range accounts {
		var quantity uint64

		// RETURNING evaluates against the post-update row, so the drained
		// quantity has to come from a self-join on the pre-update row.
		query := `UPDATE ` + accountTableName + ` AS t
			SET quantity = 0, last_updated_at = $3
			FROM ` + accountTableName + ` AS old
			WHERE t.id = old.id AND t.mint = $1 AND t.account = $2 AND t.quantity > 0
			RETURNING old.quantity`

		err := tx.QueryRowxContext(
			ctx,
			query,
			mint,
			account,
			time.Now(),
		).Scan(&quantity)
		if pgutil.IsNoRows(err) {
			// Already zeroed, or never funded. Harvesting and draining are
			// idempotent per account.
			continue
		} else if err != nil {
			return 0, err
		}

		drained += quantity
	}
	return drained, nil
}

func dbHarvest(ctx context.Context, db *sqlx.DB, mint string, accounts []string) (uint64, error) {
	var harvested uint64
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		var err error
		harvested, err = dbDrainAccounts(ctx, tx, mint, accounts)
		if err != nil {
			return err
		}
		if harvested == 0 {
			return nil
		}

		query := `INSERT INTO ` + aggregateTableName + `
			(mint, quantity, last_updated_at, created_at)
			VALUES ($1, $2, $3, $3)

			ON CONFLICT (mint)
			DO UPDATE
				SET quantity = ` + aggregateTableName + `.quantity + $2, last_updated_at = $3
				WHERE ` + aggregateTableName + `.mint = $1`

		_, err = tx.ExecContext(
			ctx,
			query,
			mint,
			harvested,
			time.Now(),
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return harvested, nil
}

func dbDrainMint(ctx context.Context, db *sqlx.DB, mint string) (uint64, error) {
	var drained uint64
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		// Self-join for the pre-update quantity, as in dbDrainAccounts.
		query := `UPDATE ` + aggregateTableName + ` AS t
			SET quantity = 0, last_updated_at = $2
			FROM ` + aggregateTableName + ` AS old
			WHERE t.id = old.id AND t.mint = $1 AND t.quantity > 0
			RETURNING old.quantity`

		err := tx.QueryRowxContext(
			ctx,
			query,
			mint,
			time.Now(),
		).Scan(&drained)
		return pgutil.CheckNoRows(err, withheld.ErrNothingToWithdraw)
	})
	if err != nil {
		return 0, err
	}
	return drained, nil
}

func dbDrainAccountsDirect(ctx context.Context, db *sqlx.DB, mint string, accounts []string) (uint64, error) {
	var drained uint64
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		var err error
		drained, err = dbDrainAccounts(ctx, tx, mint, accounts)
		return err
	})
	if err != nil {
		return 0, err
	}
	return drained, nil
}

func dbGetAccount(ctx context.Context, db *sqlx.DB, mint, account string) (*model, error) {
	res := &model{}

	query := `SELECT id, mint, account, quantity, last_updated_at, created_at FROM ` + accountTableName + `
		WHERE mint = $1 AND account = $2
	`

	err := db.QueryRowxContext(
		ctx,
		query,
		mint,
		account,
	).StructScan(res)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, withheld.ErrNotFound)
	}
	return res, nil
}

func dbGetMintAggregate(ctx context.Context, db *sqlx.DB, mint string) (uint64, error) {
	var quantity uint64

	query := `SELECT quantity FROM ` + aggregateTableName + `
		WHERE mint = $1
	`

	err := db.QueryRowxContext(ctx, query, mint).Scan(&quantity)
	if pgutil.IsNoRows(err) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return quantity, nil
}

func dbGetTotal(ctx context.Context, db *sqlx.DB, mint string) (uint64, error) {
	var total uint64

	query := `SELECT
			COALESCE((SELECT SUM(quantity) FROM ` + accountTableName + ` WHERE mint = $1), 0) +
			COALESCE((SELECT quantity FROM ` + aggregateTableName + ` WHERE mint = $1), 0)`

	err := db.QueryRowxContext(ctx, query, mint).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
