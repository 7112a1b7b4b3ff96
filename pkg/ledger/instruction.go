// Package ledger is the boundary to the external runtime that applies
// state transitions. A batch of ordered operations is submitted as a
// whole; the runtime guarantees all-or-nothing application and verifies
// authorization proofs for every principal the batch marks as required.
package ledger

import (
	"crypto/ed25519"
)

// AccountMeta describes how an operation touches an account, and whether
// the runtime must verify an authorization proof from it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta creates an AccountMeta for a writable account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates an AccountMeta for a readonly account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

// Instruction is a single operation within a batch: one state-machine
// transition or ledger mutation, addressed to a program on the runtime.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Accounts: accounts,
		Data:     data,
	}
}

// Signers returns the distinct principals the runtime must verify proofs
// from for this instruction.
func (i Instruction) Signers() []ed25519.PublicKey {
	var signers []ed25519.PublicKey
	for _, account := range i.Accounts {
		if !account.IsSigner {
			continue
		}

		seen := false
		for _, existing := range signers {
			if string(existing) == string(account.PublicKey) {
				seen = true
				break
			}
		}
		if !seen {
			signers = append(signers, account.PublicKey)
		}
	}
	return signers
}
