package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenworks/mint-server/pkg/core/data/mint"
	"github.com/tokenworks/mint-server/pkg/pointer"
	"github.com/tokenworks/mint-server/pkg/token/extension"
)

func RunTests(t *testing.T, s mint.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s mint.Store){
		testRoundTrip,
		testPutConflict,
		testUpdateStaleSnapshot,
	} {
		tf(t, s)
		teardown()
	}
}

func newTestRecord() *mint.Record {
	return &mint.Record{
		Address:  "mint1",
		Decimals: 6,

		Extensions: []mint.ExtensionState{
			{Type: extension.TypeTransferFeeConfig},
			{Type: extension.TypeTokenMetadata, ContentSize: 128},
		},
		TotalSize: 326,

		State: mint.StateUnfunded,

		FeeRateBps: 100,
		FeeCap:     1_000_000,

		FeeConfigAuthority: pointer.String("feeauthority1"),
		WithdrawAuthority:  pointer.String("withdrawauthority1"),
		MintAuthority:      pointer.String("mintauthority1"),
	}
}

func testRoundTrip(t *testing.T, s mint.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Get(ctx, "mint1")
		assert.Equal(t, mint.ErrNotFound, err)

		record := newTestRecord()
		require.NoError(t, s.Put(ctx, record))
		assert.True(t, record.Id > 0)
		assert.EqualValues(t, 1, record.Version)

		actual, err := s.Get(ctx, "mint1")
		require.NoError(t, err)
		require.NoError(t, actual.Validate())

		assert.Equal(t, record.Address, actual.Address)
		assert.Equal(t, record.Decimals, actual.Decimals)
		assert.Equal(t, record.Extensions, actual.Extensions)
		assert.Equal(t, record.TotalSize, actual.TotalSize)
		assert.Equal(t, record.State, actual.State)
		assert.Equal(t, record.FeeRateBps, actual.FeeRateBps)
		assert.Equal(t, record.FeeCap, actual.FeeCap)
		require.NotNil(t, actual.FeeConfigAuthority)
		assert.Equal(t, "feeauthority1", *actual.FeeConfigAuthority)
		require.NotNil(t, actual.WithdrawAuthority)
		assert.Equal(t, "withdrawauthority1", *actual.WithdrawAuthority)
		assert.Nil(t, actual.FreezeAuthority)
		assert.Nil(t, actual.MetadataAuthority)
	})
}

func testPutConflict(t *testing.T, s mint.Store) {
	t.Run("testPutConflict", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, newTestRecord()))
		assert.Equal(t, mint.ErrExists, s.Put(ctx, newTestRecord()))
	})
}

func testUpdateStaleSnapshot(t *testing.T, s mint.Store) {
	t.Run("testUpdateStaleSnapshot", func(t *testing.T) {
		ctx := context.Background()

		assert.Equal(t, mint.ErrNotFound, s.Update(ctx, newTestRecord()))

		require.NoError(t, s.Put(ctx, newTestRecord()))

		snapshot1, err := s.Get(ctx, "mint1")
		require.NoError(t, err)
		snapshot2, err := s.Get(ctx, "mint1")
		require.NoError(t, err)

		snapshot1.State = mint.StateSpaceAllocated
		require.NoError(t, s.Update(ctx, snapshot1))
		assert.EqualValues(t, 2, snapshot1.Version)

		// The second snapshot is now stale; its update must not clobber
		// the first one's commit.
		snapshot2.FeeRateBps = 9_999
		assert.Equal(t, mint.ErrStaleRecord, s.Update(ctx, snapshot2))

		actual, err := s.Get(ctx, "mint1")
		require.NoError(t, err)
		assert.Equal(t, mint.StateSpaceAllocated, actual.State)
		assert.EqualValues(t, 100, actual.FeeRateBps)
		assert.EqualValues(t, 2, actual.Version)

		// Retrying from a fresh snapshot succeeds.
		actual.FeeRateBps = 200
		require.NoError(t, s.Update(ctx, actual))
		assert.EqualValues(t, 3, actual.Version)
	})
}
