package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstruction_SignersDeduped(t *testing.T) {
	program := generateKey(t)
	signer := generateKey(t)
	other := generateKey(t)

	instruction := NewInstruction(
		program,
		[]byte{1, 2, 3},
		NewAccountMeta(signer, true),
		NewReadonlyAccountMeta(other, false),
		NewReadonlyAccountMeta(signer, true),
	)

	signers := instruction.Signers()
	require.Len(t, signers, 1)
	assert.EqualValues(t, signer, signers[0])
}

func TestSubmissionError_Classification(t *testing.T) {
	cause := errors.New("something broke")

	retryable := &SubmissionError{Retryable: true, Cause: cause}
	assert.True(t, IsRetryable(retryable))
	assert.True(t, errors.Is(retryable, cause))

	terminal := &SubmissionError{Cause: cause}
	assert.False(t, IsRetryable(terminal))

	assert.False(t, IsRetryable(cause))

	// Classification survives wrapping.
	assert.True(t, IsRetryable(errors.Wrap(retryable, "wrapped")))
}

func generateKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}
