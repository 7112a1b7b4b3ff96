// Package token22 builds operations for the extensible token program.
package token22

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/mr-tron/base58"

	"github.com/tokenworks/mint-server/pkg/ledger"
	"github.com/tokenworks/mint-server/pkg/ledger/system"
)

// ProgramKey is the address of the extensible token program.
//
// https://explorer.solana.com/address/TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb
var ProgramKey ed25519.PublicKey

func init() {
	var err error

	ProgramKey, err = base58.Decode("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	if err != nil {
		panic(err)
	}
}

type Command byte

const (
	CommandInitializeMint Command = 0
	CommandSetAuthority   Command = 6
	CommandMintTo         Command = 7
	CommandBurn           Command = 8
	CommandFreezeAccount  Command = 10
	CommandThawAccount    Command = 11
	CommandTransferChecked Command = 12

	CommandInitializeMintCloseAuthority Command = 25
	CommandTransferFeeExtension         Command = 26
	CommandDefaultAccountStateExtension Command = 28
	CommandInitializePermanentDelegate  Command = 35
	CommandMetadataPointerExtension     Command = 39
)

// Sub-commands of CommandTransferFeeExtension.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/transfer_fee/instruction.rs
const (
	transferFeeInitialize byte = iota
	transferFeeTransferCheckedWithFee
	transferFeeWithdrawWithheldTokensFromMint
	transferFeeWithdrawWithheldTokensFromAccounts
	transferFeeHarvestWithheldTokensToMint
	transferFeeSetTransferFee
)

const (
	metadataPointerInitialize byte = iota
	metadataPointerUpdate
)

const (
	defaultAccountStateInitialize byte = iota
	defaultAccountStateUpdate
)

// AccountState is the frozen/unfrozen status a token account carries.
type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

type AuthorityType byte

const (
	AuthorityTypeMintTokens AuthorityType = iota
	AuthorityTypeFreezeAccount
	AuthorityTypeAccountHolder
	AuthorityTypeCloseAccount
	AuthorityTypeTransferFeeConfig
	AuthorityTypeWithheldWithdraw
	AuthorityTypeCloseMint
)

const AuthorityTypeMetadataPointer AuthorityType = 13

// appendOptionalKey appends a 1-byte presence tag, then the key when set.
func appendOptionalKey(data []byte, key ed25519.PublicKey) []byte {
	if len(key) == 0 {
		return append(data, 0)
	}
	data = append(data, 1)
	return append(data, key...)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/transfer_fee/instruction.rs#L37-L52
func InitializeTransferFeeConfig(mint, configAuthority, withdrawAuthority ed25519.PublicKey, rateBps uint16, cap uint64) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := []byte{byte(CommandTransferFeeExtension), transferFeeInitialize}
	data = appendOptionalKey(data, configAuthority)
	data = appendOptionalKey(data, withdrawAuthority)
	data = binary.LittleEndian.AppendUint16(data, rateBps)
	data = binary.LittleEndian.AppendUint64(data, cap)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/transfer_fee/instruction.rs#L54-L78
func TransferCheckedWithFee(source, mint, dest, owner ed25519.PublicKey, amount uint64, decimals byte, fee uint64) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The source account.
	//   1. `[]` The token mint.
	//   2. `[writable]` The destination account.
	//   3. `[signer]` The source account's owner/delegate.
	data := []byte{byte(CommandTransferFeeExtension), transferFeeTransferCheckedWithFee}
	data = binary.LittleEndian.AppendUint64(data, amount)
	data = append(data, decimals)
	data = binary.LittleEndian.AppendUint64(data, fee)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(source, false),
		ledger.NewReadonlyAccountMeta(mint, false),
		ledger.NewAccountMeta(dest, false),
		ledger.NewReadonlyAccountMeta(owner, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/transfer_fee/instruction.rs#L80-L96
func WithdrawWithheldTokensFromMint(mint, dest, withdrawAuthority ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The token mint.
	//   1. `[writable]` The fee receiver account.
	//   2. `[signer]` The mint's withdraw withheld authority.
	return ledger.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandTransferFeeExtension), transferFeeWithdrawWithheldTokensFromMint},
		ledger.NewAccountMeta(mint, false),
		ledger.NewAccountMeta(dest, false),
		ledger.NewReadonlyAccountMeta(withdrawAuthority, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/transfer_fee/instruction.rs#L98-L122
func WithdrawWithheldTokensFromAccounts(mint, dest, withdrawAuthority ed25519.PublicKey, accounts ...ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The token mint.
	//   1. `[writable]` The fee receiver account.
	//   2. `[signer]` The mint's withdraw withheld authority.
	//   3. ..3+N. `[writable]` The source accounts to withdraw from.
	metas := make([]ledger.AccountMeta, 3+len(accounts))
	metas[0] = ledger.NewAccountMeta(mint, false)
	metas[1] = ledger.NewAccountMeta(dest, false)
	metas[2] = ledger.NewReadonlyAccountMeta(withdrawAuthority, true)
	for i, account := range accounts {
		metas[3+i] = ledger.NewAccountMeta(account, false)
	}

	return ledger.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandTransferFeeExtension), transferFeeWithdrawWithheldTokensFromAccounts, byte(len(accounts))},
		metas...,
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/transfer_fee/instruction.rs#L124-L138
func HarvestWithheldTokensToMint(mint ed25519.PublicKey, accounts ...ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The token mint.
	//   1. ..1+N. `[writable]` The source accounts to harvest from.
	//
	// Permissionless: anyone may fold withheld account balances back into
	// the mint.
	metas := make([]ledger.AccountMeta, 1+len(accounts))
	metas[0] = ledger.NewAccountMeta(mint, false)
	for i, account := range accounts {
		metas[1+i] = ledger.NewAccountMeta(account, false)
	}

	return ledger.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandTransferFeeExtension), transferFeeHarvestWithheldTokensToMint},
		metas...,
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/transfer_fee/instruction.rs#L140-L152
func SetTransferFee(mint, configAuthority ed25519.PublicKey, rateBps uint16, cap uint64) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The token mint.
	//   1. `[signer]` The mint's transfer fee config authority.
	data := []byte{byte(CommandTransferFeeExtension), transferFeeSetTransferFee}
	data = binary.LittleEndian.AppendUint16(data, rateBps)
	data = binary.LittleEndian.AppendUint64(data, cap)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(mint, false),
		ledger.NewReadonlyAccountMeta(configAuthority, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/metadata_pointer/instruction.rs
func InitializeMetadataPointer(mint, authority, metadataAddress ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := []byte{byte(CommandMetadataPointerExtension), metadataPointerInitialize}
	data = appendOptionalKey(data, authority)
	data = appendOptionalKey(data, metadataAddress)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/metadata_pointer/instruction.rs
func UpdateMetadataPointer(mint, authority, metadataAddress ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint.
	//   1. `[signer]` The metadata pointer authority.
	data := []byte{byte(CommandMetadataPointerExtension), metadataPointerUpdate}
	data = appendOptionalKey(data, metadataAddress)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(mint, false),
		ledger.NewReadonlyAccountMeta(authority, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/default_account_state/instruction.rs
func InitializeDefaultAccountState(mint ed25519.PublicKey, state AccountState) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	return ledger.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandDefaultAccountStateExtension), defaultAccountStateInitialize, byte(state)},
		ledger.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/default_account_state/instruction.rs
func UpdateDefaultAccountState(mint, freezeAuthority ed25519.PublicKey, state AccountState) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint.
	//   1. `[signer]` The mint's freeze authority.
	return ledger.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandDefaultAccountStateExtension), defaultAccountStateUpdate, byte(state)},
		ledger.NewAccountMeta(mint, false),
		ledger.NewReadonlyAccountMeta(freezeAuthority, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs
func InitializeMintCloseAuthority(mint, closeAuthority ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := []byte{byte(CommandInitializeMintCloseAuthority)}
	data = appendOptionalKey(data, closeAuthority)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs
func InitializePermanentDelegate(mint, delegate ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 1+32)
	data[0] = byte(CommandInitializePermanentDelegate)
	copy(data[1:], delegate)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(mint, false),
	)
}

// InitializeMint finalizes the mint. Every extension initialization must
// run before this; the program rejects extension initialization on an
// already-initialized mint.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L46-L61
func InitializeMint(mint ed25519.PublicKey, decimals byte, mintAuthority, freezeAuthority ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	//   1. `[]` Rent sysvar
	data := []byte{byte(CommandInitializeMint), decimals}
	data = append(data, mintAuthority...)
	data = appendOptionalKey(data, freezeAuthority)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(mint, false),
		ledger.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L128-L139
func SetAuthority(account, currentAuthority, newAuthority ed25519.PublicKey, authorityType AuthorityType) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint or account to change the authority of.
	//   1. `[signer]` The current authority of the mint or account.
	data := []byte{byte(CommandSetAuthority), byte(authorityType)}
	data = appendOptionalKey(data, newAuthority)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(account, false),
		ledger.NewReadonlyAccountMeta(currentAuthority, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L215-L237
func TransferChecked(source, mint, dest, owner ed25519.PublicKey, amount uint64, decimals byte) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The source account.
	//   1. `[]` The token mint.
	//   2. `[writable]` The destination account.
	//   3. `[signer]` The source account's owner/delegate.
	data := make([]byte, 1+8+1)
	data[0] = byte(CommandTransferChecked)
	binary.LittleEndian.PutUint64(data[1:], amount)
	data[9] = decimals

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(source, false),
		ledger.NewReadonlyAccountMeta(mint, false),
		ledger.NewAccountMeta(dest, false),
		ledger.NewReadonlyAccountMeta(owner, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L150-L163
func MintTo(mint, dest, mintAuthority ed25519.PublicKey, amount uint64) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint.
	//   1. `[writable]` The account to mint tokens to.
	//   2. `[signer]` The mint's minting authority.
	data := make([]byte, 1+8)
	data[0] = byte(CommandMintTo)
	binary.LittleEndian.PutUint64(data[1:], amount)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(mint, false),
		ledger.NewAccountMeta(dest, false),
		ledger.NewReadonlyAccountMeta(mintAuthority, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L165-L178
func Burn(source, mint, owner ed25519.PublicKey, amount uint64) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The account to burn from.
	//   1. `[writable]` The token mint.
	//   2. `[signer]` The account's owner/delegate.
	data := make([]byte, 1+8)
	data[0] = byte(CommandBurn)
	binary.LittleEndian.PutUint64(data[1:], amount)

	return ledger.NewInstruction(
		ProgramKey,
		data,
		ledger.NewAccountMeta(source, false),
		ledger.NewAccountMeta(mint, false),
		ledger.NewReadonlyAccountMeta(owner, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L183-L197
func FreezeAccount(account, mint, freezeAuthority ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The account to freeze.
	//   1. `[]` The token mint.
	//   2. `[signer]` The mint's freeze authority.
	return ledger.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandFreezeAccount)},
		ledger.NewAccountMeta(account, false),
		ledger.NewReadonlyAccountMeta(mint, false),
		ledger.NewReadonlyAccountMeta(freezeAuthority, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L199-L213
func ThawAccount(account, mint, freezeAuthority ed25519.PublicKey) ledger.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The account to thaw.
	//   1. `[]` The token mint.
	//   2. `[signer]` The mint's freeze authority.
	return ledger.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandThawAccount)},
		ledger.NewAccountMeta(account, false),
		ledger.NewReadonlyAccountMeta(mint, false),
		ledger.NewReadonlyAccountMeta(freezeAuthority, true),
	)
}
