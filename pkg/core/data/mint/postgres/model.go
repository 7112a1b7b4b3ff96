package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tokenworks/mint-server/pkg/core/data/mint"
	pgutil "github.com/tokenworks/mint-server/pkg/database/postgres"
	"github.com/tokenworks/mint-server/pkg/pointer"
	"github.com/tokenworks/mint-server/pkg/token/extension"
)

const (
	tableName = "mintserver__core_mint"
)

type model struct {
	Id      sql.NullInt64 `db:"id"`
	Version uint64        `db:"version"`

	Address  string `db:"address"`
	Decimals uint8  `db:"decimals"`

	Extensions string `db:"extensions"`
	TotalSize  uint32 `db:"total_size"`

	State uint8 `db:"state"`

	FeeRateBps uint16 `db:"fee_rate_bps"`
	FeeCap     uint64 `db:"fee_cap"`

	Supply uint64 `db:"supply"`

	MintAuthority      sql.NullString `db:"mint_authority"`
	FreezeAuthority    sql.NullString `db:"freeze_authority"`
	FeeConfigAuthority sql.NullString `db:"fee_config_authority"`
	WithdrawAuthority  sql.NullString `db:"withdraw_authority"`
	MetadataAuthority  sql.NullString `db:"metadata_authority"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
	CreatedAt     time.Time `db:"created_at"`
}

func toModel(obj *mint.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Version: obj.Version,

		Address:  obj.Address,
		Decimals: obj.Decimals,

		Extensions: marshalExtensions(obj.Extensions),
		TotalSize:  obj.TotalSize,

		State: uint8(obj.State),

		FeeRateBps: obj.FeeRateBps,
		FeeCap:     obj.FeeCap,

		Supply: obj.Supply,

		MintAuthority:      toNullString(obj.MintAuthority),
		FreezeAuthority:    toNullString(obj.FreezeAuthority),
		FeeConfigAuthority: toNullString(obj.FeeConfigAuthority),
		WithdrawAuthority:  toNullString(obj.WithdrawAuthority),
		MetadataAuthority:  toNullString(obj.MetadataAuthority),
	}, nil
}

func fromModel(obj *model) (*mint.Record, error) {
	extensions, err := parseExtensions(obj.Extensions)
	if err != nil {
		return nil, err
	}

	return &mint.Record{
		Id:      uint64(obj.Id.Int64),
		Version: obj.Version,

		Address:  obj.Address,
		Decimals: obj.Decimals,

		Extensions: extensions,
		TotalSize:  obj.TotalSize,

		State: mint.State(obj.State),

		FeeRateBps: obj.FeeRateBps,
		FeeCap:     obj.FeeCap,

		Supply: obj.Supply,

		MintAuthority:      pointer.StringIfValid(obj.MintAuthority.Valid, obj.MintAuthority.String),
		FreezeAuthority:    pointer.StringIfValid(obj.FreezeAuthority.Valid, obj.FreezeAuthority.String),
		FeeConfigAuthority: pointer.StringIfValid(obj.FeeConfigAuthority.Valid, obj.FeeConfigAuthority.String),
		WithdrawAuthority:  pointer.StringIfValid(obj.WithdrawAuthority.Valid, obj.WithdrawAuthority.String),
		MetadataAuthority:  pointer.StringIfValid(obj.MetadataAuthority.Valid, obj.MetadataAuthority.String),

		LastUpdatedAt: obj.LastUpdatedAt,
		CreatedAt:     obj.CreatedAt,
	}, nil
}

func toNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{Valid: true, String: *value}
}

// marshalExtensions packs extension states as "type:contentSize:initialized"
// triples joined by commas.
func marshalExtensions(extensions []mint.ExtensionState) string {
	parts := make([]string, len(extensions))
	for i, ext := range extensions {
		initialized := "0"
		if ext.Initialized {
			initialized = "1"
		}
		parts[i] = strconv.Itoa(int(ext.Type)) + ":" + strconv.Itoa(int(ext.ContentSize)) + ":" + initialized
	}
	return strings.Join(parts, ",")
}

func parseExtensions(value string) ([]mint.ExtensionState, error) {
	if len(value) == 0 {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	extensions := make([]mint.ExtensionState, len(parts))
	for i, part := range parts {
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, errors.Errorf("malformed extension state: %s", part)
		}

		extensionType, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return nil, errors.Wrap(err, "malformed extension type")
		}
		contentSize, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, errors.Wrap(err, "malformed extension content size")
		}

		extensions[i] = mint.ExtensionState{
			Type:        extension.Type(extensionType),
			ContentSize: uint32(contentSize),
			Initialized: fields[2] == "1",
		}
	}
	return extensions, nil
}

func dbPut(ctx context.Context, db *sqlx.DB, record *mint.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(version, address, decimals, extensions, total_size, state, fee_rate_bps, fee_cap, supply, mint_authority, freeze_authority, fee_config_authority, withdraw_authority, metadata_authority, last_updated_at, created_at)
			VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)

			RETURNING id, version, created_at, last_updated_at`

		now := time.Now()
		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Decimals,
			m.Extensions,
			m.TotalSize,
			m.State,
			m.FeeRateBps,
			m.FeeCap,
			m.Supply,
			m.MintAuthority,
			m.FreezeAuthority,
			m.FeeConfigAuthority,
			m.WithdrawAuthority,
			m.MetadataAuthority,
			now,
		).Scan(&m.Id, &m.Version, &m.CreatedAt, &m.LastUpdatedAt)
		if err != nil {
			return pgutil.CheckUniqueViolation(err, mint.ErrExists)
		}

		record.Id = uint64(m.Id.Int64)
		record.Version = m.Version
		record.CreatedAt = m.CreatedAt
		record.LastUpdatedAt = m.LastUpdatedAt

		return nil
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT id, version, address, decimals, extensions, total_size, state, fee_rate_bps, fee_cap, supply, mint_authority, freeze_authority, fee_config_authority, withdraw_authority, metadata_authority, last_updated_at, created_at FROM ` + tableName + `
		WHERE address = $1
	`

	err := db.QueryRowxContext(
		ctx,
		query,
		address,
	).StructScan(res)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, mint.ErrNotFound)
	}
	return res, nil
}

func dbUpdate(ctx context.Context, db *sqlx.DB, record *mint.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `UPDATE ` + tableName + `
			SET version = version + 1, decimals = $3, extensions = $4, total_size = $5, state = $6, fee_rate_bps = $7, fee_cap = $8, supply = $9, mint_authority = $10, freeze_authority = $11, fee_config_authority = $12, withdraw_authority = $13, metadata_authority = $14, last_updated_at = $15
			WHERE address = $1 AND version = $2

			RETURNING id, version, created_at, last_updated_at`

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Version,
			m.Decimals,
			m.Extensions,
			m.TotalSize,
			m.State,
			m.FeeRateBps,
			m.FeeCap,
			m.Supply,
			m.MintAuthority,
			m.FreezeAuthority,
			m.FeeConfigAuthority,
			m.WithdrawAuthority,
			m.MetadataAuthority,
			time.Now(),
		).Scan(&m.Id, &m.Version, &m.CreatedAt, &m.LastUpdatedAt)
		if pgutil.IsNoRows(err) {
			// Distinguish a missing record from a lost race.
			var exists bool
			checkErr := tx.QueryRowxContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+tableName+` WHERE address = $1)`, m.Address).Scan(&exists)
			if checkErr != nil {
				return checkErr
			}
			if !exists {
				return mint.ErrNotFound
			}
			return mint.ErrStaleRecord
		} else if err != nil {
			return err
		}

		record.Id = uint64(m.Id.Int64)
		record.Version = m.Version
		record.CreatedAt = m.CreatedAt
		record.LastUpdatedAt = m.LastUpdatedAt

		return nil
	})
}
