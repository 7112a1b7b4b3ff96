// Package system builds operations for the runtime's native account
// allocation program.
package system

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/tokenworks/mint-server/pkg/ledger"
)

// ProgramKey is the address of the system program (the all-zero key).
var ProgramKey [32]byte

const commandCreateAccount uint32 = 0

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L58-L72
func CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) ledger.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE, SIGNER] New account
	//
	// CreateAccount {
	//   // Number of lamports to transfer to the new account
	//   lamports: u64,
	//   // Number of bytes of memory to allocate
	//   space: u64,
	//
	//   // Address of program that will own the new account
	//   owner: Pubkey,
	// }
	data := make([]byte, 4+2*8+32)
	binary.LittleEndian.PutUint32(data, commandCreateAccount)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[4+8:], size)
	copy(data[4+2*8:], owner)

	return ledger.NewInstruction(
		ProgramKey[:],
		data,
		ledger.NewAccountMeta(funder, true),
		ledger.NewAccountMeta(address, true),
	)
}
