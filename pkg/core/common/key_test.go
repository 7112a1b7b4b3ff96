package common

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_RoundTrip(t *testing.T) {
	key, err := NewRandomKey()
	require.NoError(t, err)

	fromString, err := NewKeyFromString(key.ToBase58())
	require.NoError(t, err)
	assert.Equal(t, key.ToBytes(), fromString.ToBytes())
	assert.True(t, key.Equals(fromString))

	fromBytes, err := NewKeyFromBytes(key.ToBytes())
	require.NoError(t, err)
	assert.Equal(t, key.ToBase58(), fromBytes.ToBase58())
}

func TestKey_Validate(t *testing.T) {
	_, err := NewKeyFromBytes(make([]byte, ed25519.PublicKeySize-1))
	assert.Error(t, err)

	_, err = NewKeyFromString("not-base58-0OIl")
	assert.Error(t, err)

	var nilKey *Key
	assert.Error(t, nilKey.Validate())
}
