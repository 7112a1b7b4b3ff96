package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenworks/mint-server/pkg/core/data/withheld"
)

func RunTests(t *testing.T, s withheld.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s withheld.Store){
		testHappyPath,
		testHarvestIdempotence,
		testDrainMint,
		testDrainAccounts,
		testMintIsolation,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s withheld.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAccount(ctx, "mint1", "account1")
		assert.Equal(t, withheld.ErrNotFound, err)

		require.NoError(t, s.Add(ctx, "mint1", "account1", 500_000))
		require.NoError(t, s.Add(ctx, "mint1", "account1", 250_000))
		require.NoError(t, s.Add(ctx, "mint1", "account2", 1_000_000))

		actual, err := s.GetAccount(ctx, "mint1", "account1")
		require.NoError(t, err)
		require.NoError(t, actual.Validate())
		assert.True(t, actual.Id > 0)
		assert.Equal(t, "mint1", actual.Mint)
		assert.Equal(t, "account1", actual.Account)
		assert.EqualValues(t, 750_000, actual.Quantity)

		aggregate, err := s.GetMintAggregate(ctx, "mint1")
		require.NoError(t, err)
		assert.EqualValues(t, 0, aggregate)

		total, err := s.GetTotal(ctx, "mint1")
		require.NoError(t, err)
		assert.EqualValues(t, 1_750_000, total)
	})
}

func testHarvestIdempotence(t *testing.T, s withheld.Store) {
	t.Run("testHarvestIdempotence", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Add(ctx, "mint1", "account1", 100))
		require.NoError(t, s.Add(ctx, "mint1", "account2", 200))
		require.NoError(t, s.Add(ctx, "mint1", "account3", 300))

		// Partial batch: account3 must be untouched.
		harvested, err := s.Harvest(ctx, "mint1", "account1", "account2")
		require.NoError(t, err)
		assert.EqualValues(t, 300, harvested)

		aggregate, err := s.GetMintAggregate(ctx, "mint1")
		require.NoError(t, err)
		assert.EqualValues(t, 300, aggregate)

		actual, err := s.GetAccount(ctx, "mint1", "account3")
		require.NoError(t, err)
		assert.EqualValues(t, 300, actual.Quantity)

		// A second harvest of the same accounts is a no-op, not an error.
		harvested, err = s.Harvest(ctx, "mint1", "account1", "account2")
		require.NoError(t, err)
		assert.EqualValues(t, 0, harvested)

		aggregate, err = s.GetMintAggregate(ctx, "mint1")
		require.NoError(t, err)
		assert.EqualValues(t, 300, aggregate)

		// Harvesting an account with no record is equally a no-op.
		harvested, err = s.Harvest(ctx, "mint1", "unknown")
		require.NoError(t, err)
		assert.EqualValues(t, 0, harvested)

		// The total is conserved across harvesting.
		total, err := s.GetTotal(ctx, "mint1")
		require.NoError(t, err)
		assert.EqualValues(t, 600, total)
	})
}

func testDrainMint(t *testing.T, s withheld.Store) {
	t.Run("testDrainMint", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.DrainMint(ctx, "mint1")
		assert.Equal(t, withheld.ErrNothingToWithdraw, err)

		require.NoError(t, s.Add(ctx, "mint1", "account1", 400))
		_, err = s.Harvest(ctx, "mint1", "account1")
		require.NoError(t, err)

		drained, err := s.DrainMint(ctx, "mint1")
		require.NoError(t, err)
		assert.EqualValues(t, 400, drained)

		aggregate, err := s.GetMintAggregate(ctx, "mint1")
		require.NoError(t, err)
		assert.EqualValues(t, 0, aggregate)

		_, err = s.DrainMint(ctx, "mint1")
		assert.Equal(t, withheld.ErrNothingToWithdraw, err)
	})
}

func testDrainAccounts(t *testing.T, s withheld.Store) {
	t.Run("testDrainAccounts", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Add(ctx, "mint1", "account1", 100))
		require.NoError(t, s.Add(ctx, "mint1", "account2", 200))

		drained, err := s.DrainAccounts(ctx, "mint1", "account1", "account2", "unknown")
		require.NoError(t, err)
		assert.EqualValues(t, 300, drained)

		// Direct drains bypass the mint-level aggregate.
		aggregate, err := s.GetMintAggregate(ctx, "mint1")
		require.NoError(t, err)
		assert.EqualValues(t, 0, aggregate)

		drained, err = s.DrainAccounts(ctx, "mint1", "account1", "account2")
		require.NoError(t, err)
		assert.EqualValues(t, 0, drained)
	})
}

func testMintIsolation(t *testing.T, s withheld.Store) {
	t.Run("testMintIsolation", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Add(ctx, "mint1", "account1", 100))
		require.NoError(t, s.Add(ctx, "mint2", "account1", 900))

		_, err := s.Harvest(ctx, "mint1", "account1")
		require.NoError(t, err)

		actual, err := s.GetAccount(ctx, "mint2", "account1")
		require.NoError(t, err)
		assert.EqualValues(t, 900, actual.Quantity)

		total, err := s.GetTotal(ctx, "mint2")
		require.NoError(t, err)
		assert.EqualValues(t, 900, total)
	})
}
