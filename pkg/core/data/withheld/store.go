package withheld

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("withheld balance not found")

	ErrNothingToWithdraw = errors.New("nothing to withdraw")
)

// Store tracks withheld fee balances. Fees rest in one of two summable
// pools: on the account they were collected against, or, after a harvest,
// in the mint-level aggregate. Every mutation is applied atomically so a
// partial update is never observable.
type Store interface {
	// Add accumulates a freshly withheld fee onto an account's balance,
	// creating the record on first collection.
	Add(ctx context.Context, mint, account string, quantity uint64) error

	// Harvest folds the listed accounts' balances into the mint-level
	// aggregate, zeroing them, and returns the newly harvested sum. It is
	// idempotent per account: harvesting an already-zeroed (or never
	// funded) account is a no-op, not an error. Accounts not listed are
	// untouched, so bounded batches can be safely repeated.
	Harvest(ctx context.Context, mint string, accounts ...string) (uint64, error)

	// DrainMint returns and zeroes the mint-level aggregate. A zero
	// aggregate fails with ErrNothingToWithdraw so callers can distinguish
	// "nothing happened" from "succeeded with zero effect".
	DrainMint(ctx context.Context, mint string) (uint64, error)

	// DrainAccounts returns and zeroes the listed accounts' balances
	// directly, bypassing the mint-level aggregate.
	DrainAccounts(ctx context.Context, mint string, accounts ...string) (uint64, error)

	// GetAccount gets the withheld balance record for an account.
	GetAccount(ctx context.Context, mint, account string) (*Record, error)

	// GetMintAggregate gets the mint-level aggregate balance. A mint with
	// no harvested fees has a zero aggregate.
	GetMintAggregate(ctx context.Context, mint string) (uint64, error)

	// GetTotal gets the sum of the mint-level aggregate and all tracked
	// account balances for a mint.
	GetTotal(ctx context.Context, mint string) (uint64, error)
}
