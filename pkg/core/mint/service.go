// Package mint orchestrates the lifecycle of extensible token mints: sizing,
// funding, extension initialization, finalization, and the fee accounting
// that follows.
package mint

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tokenworks/mint-server/pkg/cache"
	"github.com/tokenworks/mint-server/pkg/core/common"
	mint_data "github.com/tokenworks/mint-server/pkg/core/data/mint"
	"github.com/tokenworks/mint-server/pkg/core/data/withheld"
	"github.com/tokenworks/mint-server/pkg/ledger"
	"github.com/tokenworks/mint-server/pkg/ledger/system"
	"github.com/tokenworks/mint-server/pkg/ledger/token22"
	"github.com/tokenworks/mint-server/pkg/osutil"
	"github.com/tokenworks/mint-server/pkg/retry"
	sync_util "github.com/tokenworks/mint-server/pkg/sync"
	"github.com/tokenworks/mint-server/pkg/token/extension"
	"github.com/tokenworks/mint-server/pkg/token/fee"
)

var (
	// ErrInvalidSequencing indicates a lifecycle operation was attempted
	// out of order for the mint's current state.
	ErrInvalidSequencing = errors.New("operation out of sequence for mint state")

	// ErrIncompleteConfiguration indicates finalization was attempted
	// before every requested extension was initialized.
	ErrIncompleteConfiguration = errors.New("mint configuration is incomplete")

	// ErrUnauthorized indicates the provided signer does not hold the
	// authority the operation requires, or the authority was permanently
	// cleared.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrExtensionNotRequested indicates the operation targets an
	// extension the mint was not configured with.
	ErrExtensionNotRequested = errors.New("extension not requested for this mint")

	// ErrSupplyOverflow indicates a mint or burn would move the supply
	// outside the uint64 range.
	ErrSupplyOverflow = errors.New("supply arithmetic overflow")
)

// casRetryLimit bounds re-reads when a conflicting update invalidates a
// snapshot mid-operation.
const casRetryLimit = 3

const mintLockStripes = 64

type Service struct {
	log      *logrus.Entry
	mints    mint_data.Store
	withheld withheld.Store
	ledger   ledger.Client

	// funder pays the storage reserve when allocating mint accounts.
	funder *common.Key

	// mintLocks serialize local read-then-write cycles per mint so
	// concurrent operations on the same mint rarely burn a stale-record
	// retry. The store's version check remains the correctness backstop
	// against writers in other processes.
	mintLocks *sync_util.StripedLock

	// layoutCache holds computed layouts, which are immutable for the
	// lifetime of a mint.
	layoutCache cache.Cache
}

func NewService(
	mints mint_data.Store,
	withheldStore withheld.Store,
	ledgerClient ledger.Client,
	funder *common.Key,
) *Service {
	return &Service{
		log:         logrus.StandardLogger().WithField("type", "core/mint/service"),
		mints:       mints,
		withheld:    withheldStore,
		ledger:      ledgerClient,
		funder:      funder,
		mintLocks:   sync_util.NewStripedLock(mintLockStripes),
		layoutCache: cache.NewCache(layoutCacheBudget()),
	}
}

// layoutCacheBudget sizes the layout cache off of available memory.
// Layouts weigh in at their account image size, so even the floor holds
// thousands of them.
func layoutCacheBudget() int {
	budget := osutil.GetTotalMemory() / 1024
	if budget < 1<<20 {
		budget = 1 << 20
	}
	return int(budget)
}

// ExtensionRequest names one extension to attach to a new mint.
// ContentSize is required for variable-size extension kinds and ignored
// otherwise.
type ExtensionRequest struct {
	Type        extension.Type
	ContentSize *uint32
}

type CreateMintArgs struct {
	Address  *common.Key
	Decimals uint8

	Extensions []ExtensionRequest

	// FeeRateBps and FeeCap are only meaningful when the transfer fee
	// extension is requested.
	FeeRateBps uint16
	FeeCap     uint64

	MintAuthority      *common.Key
	FreezeAuthority    *common.Key
	FeeConfigAuthority *common.Key
	WithdrawAuthority  *common.Key
	MetadataAuthority  *common.Key
}

// CreateMint registers a new mint in the unfunded state with its full
// configuration decided up front. The extension set is validated and sized
// here; it is immutable from this point on.
func (s *Service) CreateMint(ctx context.Context, args CreateMintArgs) (*mint_data.Record, error) {
	log := s.log.WithField("method", "CreateMint")

	if err := args.Address.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid mint address")
	}
	if args.MintAuthority == nil {
		return nil, errors.Wrap(ErrIncompleteConfiguration, "mint authority is required")
	}
	if args.FeeRateBps > fee.MaxBasisPoints {
		return nil, errors.Wrapf(fee.ErrRateOutOfRange, "rate %d", args.FeeRateBps)
	}

	types := make([]extension.Type, 0, len(args.Extensions))
	contentSizes := make(map[extension.Type]uint32)
	extensions := make([]mint_data.ExtensionState, 0, len(args.Extensions))
	for _, request := range args.Extensions {
		types = append(types, request.Type)

		state := mint_data.ExtensionState{Type: request.Type}
		if extension.IsVariable(request.Type) && request.ContentSize != nil {
			contentSizes[request.Type] = *request.ContentSize
			state.ContentSize = *request.ContentSize
		}
		extensions = append(extensions, state)
	}

	layout, err := extension.ComputeLayout(types, contentSizes)
	if err != nil {
		return nil, err
	}

	record := &mint_data.Record{
		Address:  args.Address.ToBase58(),
		Decimals: args.Decimals,

		Extensions: extensions,
		TotalSize:  layout.TotalSize,

		State: mint_data.StateUnfunded,

		FeeRateBps: args.FeeRateBps,
		FeeCap:     args.FeeCap,

		MintAuthority:      optionalAuthority(args.MintAuthority),
		FreezeAuthority:    optionalAuthority(args.FreezeAuthority),
		FeeConfigAuthority: optionalAuthority(args.FeeConfigAuthority),
		WithdrawAuthority:  optionalAuthority(args.WithdrawAuthority),
		MetadataAuthority:  optionalAuthority(args.MetadataAuthority),
	}

	if err := s.mints.Put(ctx, record); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"mint":       record.Address,
		"extensions": len(record.Extensions),
		"total_size": record.TotalSize,
	}).Debug("registered mint")

	return record, nil
}

// AllocateSpace funds the mint account at its computed total size and
// advances the lifecycle. A mint with no extensions skips straight to the
// extensions-initialized state since there is nothing left to initialize.
func (s *Service) AllocateSpace(ctx context.Context, mintAddress *common.Key) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}

	if record.State != mint_data.StateUnfunded {
		return errors.Wrap(ErrInvalidSequencing, "space already allocated")
	}

	reserve, err := s.ledger.GetMinimumBalanceForRentExemption(uint64(record.TotalSize))
	if err != nil {
		return errors.Wrap(err, "error getting storage reserve")
	}

	_, err = s.ledger.SubmitBatch(system.CreateAccount(
		s.funder.PublicKey(),
		mintAddress.PublicKey(),
		token22.ProgramKey,
		reserve,
		uint64(record.TotalSize),
	))
	if err != nil {
		return err
	}

	return s.updateMint(ctx, mintAddress, func(record *mint_data.Record) error {
		if record.State != mint_data.StateUnfunded {
			return errors.Wrap(ErrInvalidSequencing, "space already allocated")
		}

		record.State = mint_data.StateSpaceAllocated
		if len(record.Extensions) == 0 {
			record.State = mint_data.StateExtensionsInitialized
		}
		return nil
	})
}

// InitializeExtension runs the initialization step for one requested
// extension. Re-initializing an already-initialized extension is a no-op,
// so interrupted sequences can be safely replayed. Once the last extension
// initializes, the lifecycle advances.
func (s *Service) InitializeExtension(ctx context.Context, mintAddress *common.Key, t extension.Type) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}

	switch record.State {
	case mint_data.StateUnfunded:
		return errors.Wrap(ErrInvalidSequencing, "space not yet allocated")
	case mint_data.StateSpaceAllocated, mint_data.StateExtensionsInitialized:
		// Replays of already-run initializations fall through to the
		// idempotence check below, including after the last extension
		// advanced the lifecycle.
	default:
		return errors.Wrap(ErrInvalidSequencing, "mint already finalized")
	}

	state, ok := record.GetExtension(t)
	if !ok {
		if !extension.IsKnown(t) {
			return errors.Wrapf(extension.ErrUnknownExtension, "extension type %d", t)
		}
		return errors.Wrap(ErrExtensionNotRequested, t.Name())
	}
	if state.Initialized {
		return nil
	}

	instruction, submit, err := s.extensionInitInstruction(record, mintAddress, t)
	if err != nil {
		return err
	}
	if submit {
		if _, err := s.ledger.SubmitBatch(instruction); err != nil {
			return err
		}
	}

	return s.updateMint(ctx, mintAddress, func(record *mint_data.Record) error {
		state, ok := record.GetExtension(t)
		if !ok {
			return errors.Wrap(ErrExtensionNotRequested, t.Name())
		}

		// A concurrent replay may have landed first; treat it the same as
		// a sequential one.
		if state.Initialized {
			return nil
		}
		if record.State != mint_data.StateSpaceAllocated {
			return errors.Wrap(ErrInvalidSequencing, "mint already finalized")
		}
		state.Initialized = true

		if record.AllExtensionsInitialized() {
			record.State = mint_data.StateExtensionsInitialized
		}
		return nil
	})
}

// extensionInitInstruction maps an extension type onto its pre-mint
// initialization operation. The boolean is false when the extension has no
// pre-mint step.
func (s *Service) extensionInitInstruction(record *mint_data.Record, mintAddress *common.Key, t extension.Type) (ledger.Instruction, bool, error) {
	mint := mintAddress.PublicKey()

	switch t {
	case extension.TypeTransferFeeConfig:
		return token22.InitializeTransferFeeConfig(
			mint,
			authorityKey(record.FeeConfigAuthority),
			authorityKey(record.WithdrawAuthority),
			record.FeeRateBps,
			record.FeeCap,
		), true, nil
	case extension.TypeMintCloseAuthority:
		// The mint authority doubles as the close authority.
		return token22.InitializeMintCloseAuthority(mint, authorityKey(record.MintAuthority)), true, nil
	case extension.TypeDefaultAccountState:
		// New accounts start frozen; the freeze authority thaws them
		// after whatever off-ledger checks apply.
		return token22.InitializeDefaultAccountState(mint, token22.AccountStateFrozen), true, nil
	case extension.TypePermanentDelegate:
		return token22.InitializePermanentDelegate(mint, authorityKey(record.MintAuthority)), true, nil
	case extension.TypeMetadataPointer:
		// Self-referential pointer: the metadata lives in the mint's own
		// account via the token metadata extension.
		return token22.InitializeMetadataPointer(mint, authorityKey(record.MetadataAuthority), mint), true, nil
	case extension.TypeTokenMetadata:
		// Metadata value bytes are written through the metadata interface
		// after the mint is finalized. Space was already reserved at
		// allocation time, so there is nothing to submit here.
		return ledger.Instruction{}, false, nil
	}

	return ledger.Instruction{}, false, errors.Wrapf(extension.ErrUnknownExtension, "extension type %d", t)
}

// Finalize runs base mint initialization, after which the extension set,
// decimals, and layout are permanently immutable.
func (s *Service) Finalize(ctx context.Context, mintAddress *common.Key) error {
	record, err := s.getMint(ctx, mintAddress)
	if err != nil {
		return err
	}

	switch record.State {
	case mint_data.StateUnfunded:
		return errors.Wrap(ErrInvalidSequencing, "space not yet allocated")
	case mint_data.StateSpaceAllocated:
		return errors.Wrap(ErrIncompleteConfiguration, "not all extensions initialized")
	case mint_data.StateFinalized:
		return errors.Wrap(ErrInvalidSequencing, "mint already finalized")
	}

	if !record.AllExtensionsInitialized() {
		return errors.Wrap(ErrIncompleteConfiguration, "not all extensions initialized")
	}
	if record.MintAuthority == nil {
		return errors.Wrap(ErrIncompleteConfiguration, "mint authority is required")
	}

	_, err = s.ledger.SubmitBatch(token22.InitializeMint(
		mintAddress.PublicKey(),
		record.Decimals,
		authorityKey(record.MintAuthority),
		authorityKey(record.FreezeAuthority),
	))
	if err != nil {
		return err
	}

	return s.updateMint(ctx, mintAddress, func(record *mint_data.Record) error {
		if record.State != mint_data.StateExtensionsInitialized {
			return errors.Wrap(ErrInvalidSequencing, "mint already finalized")
		}
		record.State = mint_data.StateFinalized
		return nil
	})
}

func (s *Service) getMint(ctx context.Context, mintAddress *common.Key) (*mint_data.Record, error) {
	if err := mintAddress.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid mint address")
	}
	return s.mints.Get(ctx, mintAddress.ToBase58())
}

// updateMint applies a read-mutate-commit cycle under optimistic
// concurrency, re-reading and replaying the mutation when a conflicting
// update lands in between.
func (s *Service) updateMint(ctx context.Context, mintAddress *common.Key, mutate func(record *mint_data.Record) error) error {
	lock := s.mintLocks.Get(mintAddress.ToBytes())
	lock.Lock()
	defer lock.Unlock()

	_, err := retry.Retry(
		func() error {
			record, err := s.mints.Get(ctx, mintAddress.ToBase58())
			if err != nil {
				return err
			}

			if err := mutate(record); err != nil {
				return err
			}

			return s.mints.Update(ctx, record)
		},
		retry.RetriableErrors(mint_data.ErrStaleRecord),
		retry.Limit(casRetryLimit),
	)
	return err
}

// requireFinalized gates operations that only make sense on a live mint.
func requireFinalized(record *mint_data.Record) error {
	if record.State != mint_data.StateFinalized {
		return errors.Wrap(ErrInvalidSequencing, "mint not finalized")
	}
	return nil
}

// requireAuthority checks a provided signer against a configured authority.
// A nil configured authority means the action family was permanently
// disabled, which fails the same way an impostor does.
func requireAuthority(configured *string, provided *common.Key, role string) error {
	if configured == nil {
		return errors.Wrapf(ErrUnauthorized, "%s authority is permanently disabled", role)
	}
	if provided == nil || provided.ToBase58() != *configured {
		return errors.Wrapf(ErrUnauthorized, "signer is not the %s authority", role)
	}
	return nil
}

func optionalAuthority(key *common.Key) *string {
	if key == nil {
		return nil
	}
	value := key.ToBase58()
	return &value
}

// authorityKey converts a stored authority to its public key form, or nil
// when the authority is disabled.
func authorityKey(configured *string) []byte {
	if configured == nil {
		return nil
	}
	key, err := common.NewKeyFromString(*configured)
	if err != nil {
		return nil
	}
	return key.PublicKey()
}
