// Package extension models the optional capabilities that can be attached
// to an extensible token mint, along with their on-chain byte footprints.
package extension

import (
	"math"

	"github.com/pkg/errors"
)

// Type is the TLV discriminant for an extension.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/mod.rs
type Type uint16

const (
	TypeUninitialized       Type = 0
	TypeTransferFeeConfig   Type = 1
	TypeMintCloseAuthority  Type = 3
	TypeDefaultAccountState Type = 6
	TypePermanentDelegate   Type = 12
	TypeMetadataPointer     Type = 18
	TypeTokenMetadata       Type = 19
)

var (
	ErrUnknownExtension       = errors.New("unknown extension")
	ErrDuplicateExtension     = errors.New("duplicate extension")
	ErrIncompatibleExtensions = errors.New("incompatible extensions")
	ErrMissingContentSize     = errors.New("variable-size extension requires a content size")
	ErrContentTooLarge        = errors.New("extension content exceeds maximum size")
)

type descriptor struct {
	extensionType Type
	name          string

	// size is the fixed byte footprint. Ignored when variable is set, in
	// which case callers must provide the content size up front.
	size     uint32
	variable bool

	// incompatible lists extension types this one cannot coexist with.
	// Empty for every currently supported extension, but enforced so new
	// catalog entries get the rule for free.
	incompatible []Type
}

// catalog declaration order is the canonical layout order: extensions are
// always assigned offsets in this order, regardless of request order.
var catalog = []descriptor{
	{extensionType: TypeTransferFeeConfig, name: "transfer_fee_config", size: 108},
	{extensionType: TypeMintCloseAuthority, name: "mint_close_authority", size: 32},
	{extensionType: TypeDefaultAccountState, name: "default_account_state", size: 1},
	{extensionType: TypePermanentDelegate, name: "permanent_delegate", size: 32},
	{extensionType: TypeMetadataPointer, name: "metadata_pointer", size: 64},
	{extensionType: TypeTokenMetadata, name: "token_metadata", variable: true},
}

func getDescriptor(t Type) (*descriptor, error) {
	for i := range catalog {
		if catalog[i].extensionType == t {
			return &catalog[i], nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownExtension, "extension type %d", t)
}

// IsKnown reports whether t is a supported extension type.
func IsKnown(t Type) bool {
	_, err := getDescriptor(t)
	return err == nil
}

// IsVariable reports whether t has a content-dependent footprint.
func IsVariable(t Type) bool {
	desc, err := getDescriptor(t)
	if err != nil {
		return false
	}
	return desc.variable
}

// Footprint returns the byte footprint of the extension value, excluding
// the TLV header. Variable-size extensions take their footprint from
// contentSize; fixed-size extensions ignore it.
func Footprint(t Type, contentSize *uint32) (uint32, error) {
	desc, err := getDescriptor(t)
	if err != nil {
		return 0, err
	}

	if !desc.variable {
		return desc.size, nil
	}

	if contentSize == nil {
		return 0, errors.Wrap(ErrMissingContentSize, desc.name)
	}
	if *contentSize > math.MaxUint16 {
		return 0, errors.Wrap(ErrContentTooLarge, desc.name)
	}
	return *contentSize, nil
}

// Name returns a stable human-readable name for logging and errors.
func (t Type) Name() string {
	desc, err := getDescriptor(t)
	if err != nil {
		return "unknown"
	}
	return desc.name
}
