package mint

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tokenworks/mint-server/pkg/core/common"
	mint_data "github.com/tokenworks/mint-server/pkg/core/data/mint"
	"github.com/tokenworks/mint-server/pkg/core/data/withheld"
	"github.com/tokenworks/mint-server/pkg/ledger/token22"
	"github.com/tokenworks/mint-server/pkg/token/extension"
	"github.com/tokenworks/mint-server/pkg/token/fee"
)

// Transfer moves tokens between accounts, withholding the transfer fee on
// the destination. The fee comes out of the transferred amount, so the
// destination is credited amount minus fee and the fee rests on the
// destination's withheld balance until harvested or withdrawn.
func (s *Service) Transfer(ctx context.Context, mintAddress, source, dest, owner *common.Key, amount uint64) (uint64, error) {
	log := s.log.WithFields(logrus.Fields{
		"method": "Transfer",
		"mint":   mintAddress.ToBase58(),
	})

	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return 0, err
	}
	if err := requireFinalized(record); err != nil {
		return 0, err
	}

	if _, ok := record.GetExtension(extension.TypeTransferFeeConfig); !ok {
		_, err = s.ledger.SubmitBatch(token22.TransferChecked(
			source.PublicKey(),
			mintAddress.PublicKey(),
			dest.PublicKey(),
			owner.PublicKey(),
			amount,
			record.Decimals,
		))
		return 0, err
	}

	withheldFee, err := fee.Calculate(amount, record.FeeRateBps, record.FeeCap)
	if err != nil {
		return 0, err
	}

	_, err = s.ledger.SubmitBatch(token22.TransferCheckedWithFee(
		source.PublicKey(),
		mintAddress.PublicKey(),
		dest.PublicKey(),
		owner.PublicKey(),
		amount,
		record.Decimals,
		withheldFee,
	))
	if err != nil {
		return 0, err
	}

	if withheldFee > 0 {
		if err := s.withheld.Add(ctx, record.Address, dest.ToBase58(), withheldFee); err != nil {
			return 0, errors.Wrap(err, "error recording withheld fee")
		}
	}

	log.WithFields(logrus.Fields{
		"amount": amount,
		"fee":    withheldFee,
	}).Debug("transferred with fee")

	return withheldFee, nil
}

// SimulateFee computes the fee a transfer of the given amount would
// withhold, without touching anything.
func (s *Service) SimulateFee(ctx context.Context, mintAddress *common.Key, amount uint64) (uint64, error) {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return 0, err
	}
	if _, ok := record.GetExtension(extension.TypeTransferFeeConfig); !ok {
		return 0, nil
	}
	return fee.Calculate(amount, record.FeeRateBps, record.FeeCap)
}

// SetTransferFee updates the fee schedule for future transfers. Already
// withheld balances are unaffected.
func (s *Service) SetTransferFee(ctx context.Context, mintAddress, authority *common.Key, rateBps uint16, cap uint64) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if err := requireFinalized(record); err != nil {
		return err
	}
	if _, ok := record.GetExtension(extension.TypeTransferFeeConfig); !ok {
		return errors.Wrap(ErrExtensionNotRequested, extension.TypeTransferFeeConfig.Name())
	}
	if err := requireAuthority(record.FeeConfigAuthority, authority, "fee config"); err != nil {
		return err
	}
	if rateBps > fee.MaxBasisPoints {
		return errors.Wrapf(fee.ErrRateOutOfRange, "rate %d", rateBps)
	}

	_, err = s.ledger.SubmitBatch(token22.SetTransferFee(
		mintAddress.PublicKey(),
		authority.PublicKey(),
		rateBps,
		cap,
	))
	if err != nil {
		return err
	}

	return s.updateMint(ctx, mintAddress, func(record *mint_data.Record) error {
		if err := requireAuthority(record.FeeConfigAuthority, authority, "fee config"); err != nil {
			return err
		}
		record.FeeRateBps = rateBps
		record.FeeCap = cap
		return nil
	})
}

// Harvest folds the listed accounts' withheld balances into the mint-level
// aggregate. Anyone may call this; it only moves value between the two
// pools. Harvesting already-empty accounts is a no-op, so bounded batches
// can be repeated until the account set is covered.
func (s *Service) Harvest(ctx context.Context, mintAddress *common.Key, accounts ...*common.Key) (uint64, error) {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return 0, err
	}
	if err := requireFinalized(record); err != nil {
		return 0, err
	}
	if len(accounts) == 0 {
		return 0, nil
	}

	addresses := make([]string, len(accounts))
	keys := make([]ed25519.PublicKey, len(accounts))
	for i, account := range accounts {
		addresses[i] = account.ToBase58()
		keys[i] = account.PublicKey()
	}

	_, err = s.ledger.SubmitBatch(token22.HarvestWithheldTokensToMint(mintAddress.PublicKey(), keys...))
	if err != nil {
		return 0, err
	}

	harvested, err := s.withheld.Harvest(ctx, record.Address, addresses...)
	if err != nil {
		return 0, errors.Wrap(err, "error folding withheld balances")
	}

	s.log.WithFields(logrus.Fields{
		"method":    "Harvest",
		"mint":      record.Address,
		"harvested": harvested,
	}).Debug("harvested withheld fees")

	return harvested, nil
}

// WithdrawFromMint pays out the mint-level aggregate of withheld fees to a
// destination account. Fails with withheld.ErrNothingToWithdraw when the
// aggregate is empty.
func (s *Service) WithdrawFromMint(ctx context.Context, mintAddress, dest, authority *common.Key) (uint64, error) {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return 0, err
	}
	if err := requireFinalized(record); err != nil {
		return 0, err
	}
	if err := requireAuthority(record.WithdrawAuthority, authority, "withdraw"); err != nil {
		return 0, err
	}

	// Check before submitting so an empty aggregate never reaches the
	// runtime. The store re-checks under its own atomicity, so a raced
	// drain still fails cleanly.
	aggregate, err := s.withheld.GetMintAggregate(ctx, record.Address)
	if err != nil {
		return 0, err
	}
	if aggregate == 0 {
		return 0, errors.Wrap(withheld.ErrNothingToWithdraw, record.Address)
	}

	_, err = s.ledger.SubmitBatch(token22.WithdrawWithheldTokensFromMint(
		mintAddress.PublicKey(),
		dest.PublicKey(),
		authority.PublicKey(),
	))
	if err != nil {
		return 0, err
	}

	return s.withheld.DrainMint(ctx, record.Address)
}

// WithdrawFromAccounts pays out the listed accounts' withheld balances
// directly to a destination, bypassing the mint-level aggregate.
func (s *Service) WithdrawFromAccounts(ctx context.Context, mintAddress, dest, authority *common.Key, accounts ...*common.Key) (uint64, error) {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return 0, err
	}
	if err := requireFinalized(record); err != nil {
		return 0, err
	}
	if err := requireAuthority(record.WithdrawAuthority, authority, "withdraw"); err != nil {
		return 0, err
	}
	if len(accounts) == 0 {
		return 0, nil
	}

	addresses := make([]string, len(accounts))
	keys := make([]ed25519.PublicKey, len(accounts))
	for i, account := range accounts {
		addresses[i] = account.ToBase58()
		keys[i] = account.PublicKey()
	}

	_, err = s.ledger.SubmitBatch(token22.WithdrawWithheldTokensFromAccounts(
		mintAddress.PublicKey(),
		dest.PublicKey(),
		authority.PublicKey(),
		keys...,
	))
	if err != nil {
		return 0, err
	}

	return s.withheld.DrainAccounts(ctx, record.Address, addresses...)
}
