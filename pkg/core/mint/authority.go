package mint

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tokenworks/mint-server/pkg/core/common"
	mint_data "github.com/tokenworks/mint-server/pkg/core/data/mint"
	"github.com/tokenworks/mint-server/pkg/ledger/token22"
	"github.com/tokenworks/mint-server/pkg/token/extension"
)

// AuthorityRole names one of a mint's rotatable authorities.
type AuthorityRole uint8

const (
	AuthorityRoleMint AuthorityRole = iota
	AuthorityRoleFreeze
	AuthorityRoleFeeConfig
	AuthorityRoleWithdraw
	AuthorityRoleMetadata
)

func (r AuthorityRole) String() string {
	switch r {
	case AuthorityRoleMint:
		return "mint"
	case AuthorityRoleFreeze:
		return "freeze"
	case AuthorityRoleFeeConfig:
		return "fee config"
	case AuthorityRoleWithdraw:
		return "withdraw"
	case AuthorityRoleMetadata:
		return "metadata"
	}
	return "unknown"
}

func (r AuthorityRole) ledgerType() token22.AuthorityType {
	switch r {
	case AuthorityRoleFreeze:
		return token22.AuthorityTypeFreezeAccount
	case AuthorityRoleFeeConfig:
		return token22.AuthorityTypeTransferFeeConfig
	case AuthorityRoleWithdraw:
		return token22.AuthorityTypeWithheldWithdraw
	case AuthorityRoleMetadata:
		return token22.AuthorityTypeMetadataPointer
	}
	return token22.AuthorityTypeMintTokens
}

// field returns the record slot the role is stored in.
func (r AuthorityRole) field(record *mint_data.Record) **string {
	switch r {
	case AuthorityRoleFreeze:
		return &record.FreezeAuthority
	case AuthorityRoleFeeConfig:
		return &record.FeeConfigAuthority
	case AuthorityRoleWithdraw:
		return &record.WithdrawAuthority
	case AuthorityRoleMetadata:
		return &record.MetadataAuthority
	}
	return &record.MintAuthority
}

// SetAuthority rotates an authority to a new principal, or clears it
// permanently when newAuthority is nil. Clearing is one-way: once an
// authority is nil, no principal can ever act in that role or restore it.
func (s *Service) SetAuthority(ctx context.Context, mintAddress, current, newAuthority *common.Key, role AuthorityRole) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if err := requireFinalized(record); err != nil {
		return err
	}
	if err := requireAuthority(*role.field(record), current, role.String()); err != nil {
		return err
	}

	var newKey []byte
	if newAuthority != nil {
		if err := newAuthority.Validate(); err != nil {
			return errors.Wrap(err, "invalid new authority")
		}
		newKey = newAuthority.PublicKey()
	}

	_, err = s.ledger.SubmitBatch(token22.SetAuthority(
		mintAddress.PublicKey(),
		current.PublicKey(),
		newKey,
		role.ledgerType(),
	))
	if err != nil {
		return err
	}

	return s.updateMint(ctx, mintAddress, func(record *mint_data.Record) error {
		if err := requireAuthority(*role.field(record), current, role.String()); err != nil {
			return err
		}
		*role.field(record) = optionalAuthority(newAuthority)
		return nil
	})
}

// UpdateMetadataPointer repoints the mint's metadata location. Requires the
// metadata pointer extension and its authority.
func (s *Service) UpdateMetadataPointer(ctx context.Context, mintAddress, authority, metadataAddress *common.Key) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if err := requireFinalized(record); err != nil {
		return err
	}
	if _, ok := record.GetExtension(extension.TypeMetadataPointer); !ok {
		return errors.Wrap(ErrExtensionNotRequested, extension.TypeMetadataPointer.Name())
	}
	if err := requireAuthority(record.MetadataAuthority, authority, "metadata"); err != nil {
		return err
	}

	var target []byte
	if metadataAddress != nil {
		target = metadataAddress.PublicKey()
	}

	_, err = s.ledger.SubmitBatch(token22.UpdateMetadataPointer(
		mintAddress.PublicKey(),
		authority.PublicKey(),
		target,
	))
	return err
}

// SetDefaultAccountState updates the state newly created accounts start in.
// Requires the default account state extension and the freeze authority.
func (s *Service) SetDefaultAccountState(ctx context.Context, mintAddress, authority *common.Key, state token22.AccountState) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}
	if err := requireFinalized(record); err != nil {
		return err
	}
	if _, ok := record.GetExtension(extension.TypeDefaultAccountState); !ok {
		return errors.Wrap(ErrExtensionNotRequested, extension.TypeDefaultAccountState.Name())
	}
	if err := requireAuthority(record.FreezeAuthority, authority, "freeze"); err != nil {
		return err
	}

	_, err = s.ledger.SubmitBatch(token22.UpdateDefaultAccountState(
		mintAddress.PublicKey(),
		authority.PublicKey(),
		state,
	))
	return err
}
