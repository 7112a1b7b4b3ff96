package mint

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tokenworks/mint-server/pkg/core/common"
	mint_data "github.com/tokenworks/mint-server/pkg/core/data/mint"
	"github.com/tokenworks/mint-server/pkg/core/data/withheld"
	"github.com/tokenworks/mint-server/pkg/pointer"
	"github.com/tokenworks/mint-server/pkg/token/extension"
)

// GetMint returns the full configuration record for a mint.
func (s *Service) GetMint(ctx context.Context, mintAddress *common.Key) (*mint_data.Record, error) {
	return s.getMint(ctx, mintAddress)
}

// GetLayout returns the storage layout for a mint's extension set. The
// result is identical across calls for the same mint, since the extension
// set is fixed at creation, so computed layouts are cached.
func (s *Service) GetLayout(ctx context.Context, mintAddress *common.Key) (*extension.Layout, error) {
	if cached, ok := s.layoutCache.Retrieve(mintAddress.ToBase58()); ok {
		return cached.(*extension.Layout), nil
	}

	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return nil, err
	}

	types, contentSizes := record.RequestedTypes()
	layout, err := extension.ComputeLayout(types, contentSizes)
	if err != nil {
		return nil, err
	}

	// Weigh the entry at its account image size, a decent proxy for the
	// in-memory footprint. Insertion races just mean one computation wins.
	_ = s.layoutCache.Insert(mintAddress.ToBase58(), layout, int(layout.TotalSize))

	return layout, nil
}

// FeeConfig is the fee schedule and controlling authorities of a mint.
type FeeConfig struct {
	RateBps uint16
	Cap     uint64

	ConfigAuthority   *string
	WithdrawAuthority *string
}

// GetFeeConfig returns the current fee schedule. Mints without the transfer
// fee extension report a zero schedule.
func (s *Service) GetFeeConfig(ctx context.Context, mintAddress *common.Key) (*FeeConfig, error) {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return nil, err
	}

	if _, ok := record.GetExtension(extension.TypeTransferFeeConfig); !ok {
		return &FeeConfig{}, nil
	}

	return &FeeConfig{
		RateBps:           record.FeeRateBps,
		Cap:               record.FeeCap,
		ConfigAuthority:   pointer.StringCopy(record.FeeConfigAuthority),
		WithdrawAuthority: pointer.StringCopy(record.WithdrawAuthority),
	}, nil
}

// WithheldBalance is a point-in-time view of a mint's withheld fee pools.
type WithheldBalance struct {
	// Aggregate is the mint-level pool, fed by harvests.
	Aggregate uint64

	// Total is the aggregate plus every account-level balance. It is
	// invariant under harvests.
	Total uint64
}

// GetWithheldBalance reports the withheld fee pools for a mint.
func (s *Service) GetWithheldBalance(ctx context.Context, mintAddress *common.Key) (*WithheldBalance, error) {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.withheld.GetMintAggregate(ctx, record.Address)
	if err != nil {
		return nil, err
	}
	total, err := s.withheld.GetTotal(ctx, record.Address)
	if err != nil {
		return nil, err
	}

	return &WithheldBalance{
		Aggregate: aggregate,
		Total:     total,
	}, nil
}

// GetAccountWithheldBalance reports one account's withheld fee balance. An
// account that never collected a fee reports zero.
func (s *Service) GetAccountWithheldBalance(ctx context.Context, mintAddress, account *common.Key) (uint64, error) {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return 0, err
	}

	balance, err := s.withheld.GetAccount(ctx, record.Address, account.ToBase58())
	if err != nil {
		if errors.Is(err, withheld.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return balance.Quantity, nil
}
