package mint

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/tokenworks/mint-server/pkg/core/common"
	mint_data "github.com/tokenworks/mint-server/pkg/core/data/mint"
	"github.com/tokenworks/mint-server/pkg/ledger/token22"
)

// MintTo issues new tokens to an account.
func (s *Service) MintTo(ctx context.Context, mintAddress, dest, authority *common.Key, amount uint64) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if err := requireFinalized(record); err != nil {
		return err
	}
	if err := requireAuthority(record.MintAuthority, authority, "mint"); err != nil {
		return err
	}

	_, err = s.ledger.SubmitBatch(token22.MintTo(
		mintAddress.PublicKey(),
		dest.PublicKey(),
		authority.PublicKey(),
		amount,
	))
	if err != nil {
		return err
	}

	return s.updateMint(ctx, mintAddress, func(record *mint_data.Record) error {
		if amount > math.MaxUint64-record.Supply {
			return errors.Wrap(ErrSupplyOverflow, "supply would exceed uint64 range")
		}
		record.Supply += amount
		return nil
	})
}

// Burn destroys tokens from an account, signed by the account's owner.
func (s *Service) Burn(ctx context.Context, mintAddress, source, owner *common.Key, amount uint64) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if err := requireFinalized(record); err != nil {
		return err
	}

	_, err = s.ledger.SubmitBatch(token22.Burn(
		source.PublicKey(),
		mintAddress.PublicKey(),
		owner.PublicKey(),
		amount,
	))
	if err != nil {
		return err
	}

	return s.updateMint(ctx, mintAddress, func(record *mint_data.Record) error {
		if amount > record.Supply {
			return errors.Wrap(ErrSupplyOverflow, "burn exceeds tracked supply")
		}
		record.Supply -= amount
		return nil
	})
}

// FreezeAccount halts all token movement on an account.
func (s *Service) FreezeAccount(ctx context.Context, mintAddress, account, authority *common.Key) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if err := requireFinalized(record); err != nil {
		return err
	}
	if err := requireAuthority(record.FreezeAuthority, authority, "freeze"); err != nil {
		return err
	}

	_, err = s.ledger.SubmitBatch(token22.FreezeAccount(
		account.PublicKey(),
		mintAddress.PublicKey(),
		authority.PublicKey(),
	))
	return err
}

// ThawAccount re-enables token movement on a frozen account.
func (s *Service) ThawAccount(ctx context.Context, mintAddress, account, authority *common.Key) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if err := requireFinalized(record); err != nil {
		return err
	}
	if err := requireAuthority(record.FreezeAuthority, authority, "freeze"); err != nil {
		return err
	}

	_, err = s.ledger.SubmitBatch(token22.ThawAccount(
		account.PublicKey(),
		mintAddress.PublicKey(),
		authority.PublicKey(),
	))
	return err
}
