package withheld

import (
	"errors"
	"time"
)

// Record is a withheld fee balance resting on a single token account,
// accumulated by transfers and not yet harvested or withdrawn.
type Record struct {
	Id uint64

	Mint    string
	Account string

	Quantity uint64

	LastUpdatedAt time.Time
	CreatedAt     time.Time
}

func (r *Record) Validate() error {
	if len(r.Mint) == 0 {
		return errors.New("mint is required")
	}

	if len(r.Account) == 0 {
		return errors.New("account is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		Mint:    r.Mint,
		Account: r.Account,

		Quantity: r.Quantity,

		LastUpdatedAt: r.LastUpdatedAt,
		CreatedAt:     r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Mint = r.Mint
	dst.Account = r.Account

	dst.Quantity = r.Quantity

	dst.LastUpdatedAt = r.LastUpdatedAt
	dst.CreatedAt = r.CreatedAt
}
