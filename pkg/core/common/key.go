package common

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Key is a verifiable principal, identified by an ed25519 public key. The
// core only ever references principals; proofs of authorization are
// produced and verified by the external runtime, so private key material
// never enters this package.
type Key struct {
	bytesValue  []byte
	stringValue string
}

func NewKeyFromBytes(value []byte) (*Key, error) {
	k := &Key{
		bytesValue:  value,
		stringValue: base58.Encode(value),
	}

	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func NewKeyFromString(value string) (*Key, error) {
	bytesValue, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding string as base58")
	}

	k := &Key{
		bytesValue:  bytesValue,
		stringValue: value,
	}

	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// NewRandomKey generates a new random public key. The corresponding private
// key is discarded, which is fine for the places this is used (tests and
// placeholder principals).
func NewRandomKey() (*Key, error) {
	publicKey, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error generating key")
	}

	return NewKeyFromBytes(publicKey)
}

func (k *Key) ToBytes() []byte {
	return k.bytesValue
}

func (k *Key) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(k.bytesValue)
}

func (k *Key) ToBase58() string {
	return k.stringValue
}

func (k *Key) Equals(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	return bytes.Equal(k.bytesValue, other.bytesValue)
}

func (k *Key) Validate() error {
	if k == nil {
		return errors.New("key is nil")
	}

	if len(k.bytesValue) != ed25519.PublicKeySize {
		return errors.Errorf("key must be %d bytes", ed25519.PublicKeySize)
	}
	return nil
}
