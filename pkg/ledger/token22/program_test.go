package token22

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenworks/mint-server/pkg/core/common"
)

func TestProgramKey(t *testing.T) {
	assert.Len(t, ProgramKey, 32)
}

func TestInitializeTransferFeeConfig(t *testing.T) {
	mint := newKey(t)
	configAuthority := newKey(t)
	withdrawAuthority := newKey(t)

	instruction := InitializeTransferFeeConfig(mint, configAuthority, withdrawAuthority, 100, 1_000_000)

	assert.EqualValues(t, ProgramKey, instruction.Program)
	require.Len(t, instruction.Accounts, 1)
	assert.EqualValues(t, mint, instruction.Accounts[0].PublicKey)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)

	require.Len(t, instruction.Data, 2+(1+32)+(1+32)+2+8)
	assert.EqualValues(t, CommandTransferFeeExtension, instruction.Data[0])
	assert.EqualValues(t, transferFeeInitialize, instruction.Data[1])
	assert.EqualValues(t, 1, instruction.Data[2])
	assert.EqualValues(t, configAuthority, instruction.Data[3:35])
	assert.EqualValues(t, 1, instruction.Data[35])
	assert.EqualValues(t, withdrawAuthority, instruction.Data[36:68])
	assert.EqualValues(t, 100, binary.LittleEndian.Uint16(instruction.Data[68:]))
	assert.EqualValues(t, 1_000_000, binary.LittleEndian.Uint64(instruction.Data[70:]))
}

func TestInitializeTransferFeeConfig_NoAuthorities(t *testing.T) {
	mint := newKey(t)

	instruction := InitializeTransferFeeConfig(mint, nil, nil, 50, 10)

	require.Len(t, instruction.Data, 2+1+1+2+8)
	assert.EqualValues(t, 0, instruction.Data[2])
	assert.EqualValues(t, 0, instruction.Data[3])
	assert.EqualValues(t, 50, binary.LittleEndian.Uint16(instruction.Data[4:]))
	assert.EqualValues(t, 10, binary.LittleEndian.Uint64(instruction.Data[6:]))
}

func TestTransferCheckedWithFee(t *testing.T) {
	source := newKey(t)
	mint := newKey(t)
	dest := newKey(t)
	owner := newKey(t)

	instruction := TransferCheckedWithFee(source, mint, dest, owner, 50_000_000, 6, 500_000)

	require.Len(t, instruction.Accounts, 4)
	assert.EqualValues(t, source, instruction.Accounts[0].PublicKey)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.EqualValues(t, mint, instruction.Accounts[1].PublicKey)
	assert.False(t, instruction.Accounts[1].IsWritable)
	assert.EqualValues(t, dest, instruction.Accounts[2].PublicKey)
	assert.True(t, instruction.Accounts[2].IsWritable)
	assert.EqualValues(t, owner, instruction.Accounts[3].PublicKey)
	assert.True(t, instruction.Accounts[3].IsSigner)

	require.Len(t, instruction.Data, 2+8+1+8)
	assert.EqualValues(t, CommandTransferFeeExtension, instruction.Data[0])
	assert.EqualValues(t, transferFeeTransferCheckedWithFee, instruction.Data[1])
	assert.EqualValues(t, 50_000_000, binary.LittleEndian.Uint64(instruction.Data[2:]))
	assert.EqualValues(t, 6, instruction.Data[10])
	assert.EqualValues(t, 500_000, binary.LittleEndian.Uint64(instruction.Data[11:]))
}

func TestWithdrawWithheldTokensFromAccounts(t *testing.T) {
	mint := newKey(t)
	dest := newKey(t)
	authority := newKey(t)
	account1 := newKey(t)
	account2 := newKey(t)

	instruction := WithdrawWithheldTokensFromAccounts(mint, dest, authority, account1, account2)

	require.Len(t, instruction.Accounts, 5)
	assert.EqualValues(t, mint, instruction.Accounts[0].PublicKey)
	assert.EqualValues(t, dest, instruction.Accounts[1].PublicKey)
	assert.EqualValues(t, authority, instruction.Accounts[2].PublicKey)
	assert.True(t, instruction.Accounts[2].IsSigner)
	assert.EqualValues(t, account1, instruction.Accounts[3].PublicKey)
	assert.EqualValues(t, account2, instruction.Accounts[4].PublicKey)

	require.Len(t, instruction.Data, 3)
	assert.EqualValues(t, transferFeeWithdrawWithheldTokensFromAccounts, instruction.Data[1])
	assert.EqualValues(t, 2, instruction.Data[2])
}

func TestHarvestWithheldTokensToMint(t *testing.T) {
	mint := newKey(t)
	account := newKey(t)

	instruction := HarvestWithheldTokensToMint(mint, account)

	require.Len(t, instruction.Accounts, 2)
	assert.EqualValues(t, mint, instruction.Accounts[0].PublicKey)
	assert.EqualValues(t, account, instruction.Accounts[1].PublicKey)

	// No signer anywhere: harvest is permissionless.
	assert.Empty(t, instruction.Signers())
}

func TestInitializeMint(t *testing.T) {
	mint := newKey(t)
	mintAuthority := newKey(t)
	freezeAuthority := newKey(t)

	instruction := InitializeMint(mint, 6, mintAuthority, freezeAuthority)

	require.Len(t, instruction.Accounts, 2)
	assert.EqualValues(t, mint, instruction.Accounts[0].PublicKey)

	require.Len(t, instruction.Data, 1+1+32+1+32)
	assert.EqualValues(t, CommandInitializeMint, instruction.Data[0])
	assert.EqualValues(t, 6, instruction.Data[1])
	assert.EqualValues(t, mintAuthority, instruction.Data[2:34])
	assert.EqualValues(t, 1, instruction.Data[34])
	assert.EqualValues(t, freezeAuthority, instruction.Data[35:])
}

func TestSetAuthority(t *testing.T) {
	mint := newKey(t)
	current := newKey(t)
	next := newKey(t)

	instruction := SetAuthority(mint, current, next, AuthorityTypeTransferFeeConfig)

	require.Len(t, instruction.Data, 2+1+32)
	assert.EqualValues(t, CommandSetAuthority, instruction.Data[0])
	assert.EqualValues(t, AuthorityTypeTransferFeeConfig, instruction.Data[1])
	assert.EqualValues(t, 1, instruction.Data[2])
	assert.EqualValues(t, next, instruction.Data[3:])

	cleared := SetAuthority(mint, current, nil, AuthorityTypeWithheldWithdraw)
	require.Len(t, cleared.Data, 3)
	assert.EqualValues(t, 0, cleared.Data[2])
}

func TestMintToAndBurn(t *testing.T) {
	mint := newKey(t)
	account := newKey(t)
	authority := newKey(t)

	mintTo := MintTo(mint, account, authority, 12345)
	require.Len(t, mintTo.Data, 9)
	assert.EqualValues(t, CommandMintTo, mintTo.Data[0])
	assert.EqualValues(t, 12345, binary.LittleEndian.Uint64(mintTo.Data[1:]))

	burn := Burn(account, mint, authority, 54321)
	require.Len(t, burn.Data, 9)
	assert.EqualValues(t, CommandBurn, burn.Data[0])
	assert.EqualValues(t, 54321, binary.LittleEndian.Uint64(burn.Data[1:]))
}

func newKey(t *testing.T) []byte {
	key, err := common.NewRandomKey()
	require.NoError(t, err)
	return key.ToBytes()
}
