package mint

import (
	"errors"

	"time"

	"github.com/tokenworks/mint-server/pkg/pointer"
	"github.com/tokenworks/mint-server/pkg/token/extension"
	"github.com/tokenworks/mint-server/pkg/token/fee"
)

// State is the lifecycle position of a mint under construction. States
// only ever advance; a finalized mint never returns to an earlier state.
type State uint8

const (
	StateUnfunded State = iota
	StateSpaceAllocated
	StateExtensionsInitialized
	StateFinalized
)

// ExtensionState tracks one requested extension and whether its
// initialization step has run.
type ExtensionState struct {
	Type extension.Type

	// ContentSize is only meaningful for variable-size extension kinds.
	ContentSize uint32

	Initialized bool
}

type Record struct {
	Id uint64

	// Version guards read-then-write updates. Store.Update only commits
	// when the caller's snapshot version is still current.
	Version uint64

	Address  string
	Decimals uint8

	Extensions []ExtensionState
	TotalSize  uint32

	State State

	FeeRateBps uint16
	FeeCap     uint64

	Supply uint64

	// A nil authority means the corresponding action family is permanently
	// disabled.
	MintAuthority      *string
	FreezeAuthority    *string
	FeeConfigAuthority *string
	WithdrawAuthority  *string
	MetadataAuthority  *string

	LastUpdatedAt time.Time
	CreatedAt     time.Time
}

func (r *Record) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if r.FeeRateBps > fee.MaxBasisPoints {
		return errors.New("fee rate exceeds 10000 basis points")
	}

	if r.State > StateFinalized {
		return errors.New("invalid state")
	}

	seen := make(map[extension.Type]struct{})
	for _, ext := range r.Extensions {
		if !extension.IsKnown(ext.Type) {
			return errors.New("unknown extension type")
		}
		if _, ok := seen[ext.Type]; ok {
			return errors.New("duplicate extension type")
		}
		seen[ext.Type] = struct{}{}
	}

	return nil
}

func (r *Record) Clone() Record {
	extensions := make([]ExtensionState, len(r.Extensions))
	copy(extensions, r.Extensions)

	return Record{
		Id:      r.Id,
		Version: r.Version,

		Address:  r.Address,
		Decimals: r.Decimals,

		Extensions: extensions,
		TotalSize:  r.TotalSize,

		State: r.State,

		FeeRateBps: r.FeeRateBps,
		FeeCap:     r.FeeCap,

		Supply: r.Supply,

		MintAuthority:      pointer.StringCopy(r.MintAuthority),
		FreezeAuthority:    pointer.StringCopy(r.FreezeAuthority),
		FeeConfigAuthority: pointer.StringCopy(r.FeeConfigAuthority),
		WithdrawAuthority:  pointer.StringCopy(r.WithdrawAuthority),
		MetadataAuthority:  pointer.StringCopy(r.MetadataAuthority),

		LastUpdatedAt: r.LastUpdatedAt,
		CreatedAt:     r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	*dst = r.Clone()
}

// GetExtension returns the tracked state for an extension type, if the
// mint requested it.
func (r *Record) GetExtension(t extension.Type) (*ExtensionState, bool) {
	for i := range r.Extensions {
		if r.Extensions[i].Type == t {
			return &r.Extensions[i], true
		}
	}
	return nil, false
}

// AllExtensionsInitialized reports whether every requested extension has
// had its initialization step run.
func (r *Record) AllExtensionsInitialized() bool {
	for _, ext := range r.Extensions {
		if !ext.Initialized {
			return false
		}
	}
	return true
}

// RequestedTypes returns the requested extension types along with the
// content sizes for variable-size kinds, in request order.
func (r *Record) RequestedTypes() ([]extension.Type, map[extension.Type]uint32) {
	types := make([]extension.Type, 0, len(r.Extensions))
	contentSizes := make(map[extension.Type]uint32)
	for _, ext := range r.Extensions {
		types = append(types, ext.Type)
		if extension.IsVariable(ext.Type) {
			contentSizes[ext.Type] = ext.ContentSize
		}
	}
	return types, contentSizes
}
