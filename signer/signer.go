// Package signer signs and verifies Data packets with an explicitly constructed
// secp256k1 key chain.
package signer

import (
	"bytes"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/status-im/keycard-go/hexutils"

	"github.com/Fantom-foundation/segpipe/packet"
)

var (
	// ErrBadSignature is returned when a signature does not match the signed portion.
	ErrBadSignature = errors.New("bad signature")
	// ErrUntrustedKey is returned when data is signed by a key that is not trusted.
	ErrUntrustedKey = errors.New("untrusted key")
)

// Signer signs data in place.
type Signer interface {
	Sign(d *packet.Data) error
}

// Verifier checks data signatures.
type Verifier interface {
	Verify(d *packet.Data) error
}

// KeyChain holds one private key and signs with it.
type KeyChain struct {
	key    *ecdsa.PrivateKey
	pubkey []byte
}

// New wraps an existing key.
func New(key *ecdsa.PrivateKey) *KeyChain {
	return &KeyChain{
		key:    key,
		pubkey: crypto.FromECDSAPub(&key.PublicKey),
	}
}

// Generate creates a key chain with a fresh random key.
func Generate() (*KeyChain, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	return New(key), nil
}

// Load reads a hex-encoded key file.
func Load(file string) (*KeyChain, error) {
	key, err := crypto.LoadECDSA(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load key %s", file)
	}
	return New(key), nil
}

// Save writes the key to a file readable by Load.
func (k *KeyChain) Save(file string) error {
	return errors.Wrapf(crypto.SaveECDSA(file, k.key), "save key %s", file)
}

// PublicKey returns the uncompressed public key.
func (k *KeyChain) PublicKey() []byte {
	return k.pubkey
}

// String returns the key fingerprint.
func (k *KeyChain) String() string {
	return hexutils.BytesToHex(crypto.Keccak256(k.pubkey)[:8])
}

// Sign fills d.Signature.
func (k *KeyChain) Sign(d *packet.Data) error {
	digest, err := digestOf(d)
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(digest, k.key)
	if err != nil {
		return errors.Wrap(err, "sign")
	}
	d.Signature = packet.Signature{
		KeyLocator: k.pubkey,
		Value:      sig,
	}
	return nil
}

func digestOf(d *packet.Data) ([]byte, error) {
	signed, err := d.SignedPortion()
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(signed), nil
}

// Validator verifies data against the key in its KeyLocator, optionally restricted
// to a set of trusted keys.
type Validator struct {
	trusted [][]byte
}

// NewValidator returns a validator. With no trusted keys, any correctly signed data passes.
func NewValidator(trusted ...[]byte) *Validator {
	return &Validator{trusted: trusted}
}

// Verify implements Verifier.
func (v *Validator) Verify(d *packet.Data) error {
	if len(v.trusted) != 0 && !v.isTrusted(d.Signature.KeyLocator) {
		return ErrUntrustedKey
	}
	if len(d.Signature.Value) != crypto.SignatureLength {
		return ErrBadSignature
	}
	digest, err := digestOf(d)
	if err != nil {
		return err
	}
	// drop the recovery id
	if !crypto.VerifySignature(d.Signature.KeyLocator, digest, d.Signature.Value[:crypto.RecoveryIDOffset]) {
		return ErrBadSignature
	}
	return nil
}

func (v *Validator) isTrusted(key []byte) bool {
	for _, t := range v.trusted {
		if bytes.Equal(t, key) {
			return true
		}
	}
	return false
}
