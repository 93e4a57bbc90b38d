package shs

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

func hexString(b []byte) string {
	return hex.EncodeToString(b)
}

// SecretKeySeed is the 32 bytes of uniformly random entropy a SecretKey is
// derived from. Persisting the seed (not the derived Ed25519 private key
// bytes) is enough to reconstitute the whole key pair.
type SecretKeySeed [32]byte

func (s SecretKeySeed) String() string {
	return hexString(s[:])
}

// SecretKeySeedFromHex parses the hex encoding produced by
// SecretKeySeed.String.
func SecretKeySeedFromHex(s string) (SecretKeySeed, error) {
	var seed SecretKeySeed
	b, err := hex.DecodeString(s)
	if err != nil {
		return seed, fmt.Errorf("shs: invalid secret key seed hex: %w", err)
	}
	if len(b) != len(seed) {
		return seed, fmt.Errorf("shs: secret key seed must decode to %d bytes, got %d", len(seed), len(b))
	}
	copy(seed[:], b)
	return seed, nil
}

// PublicKey is a 32-byte Ed25519 verification key.
type PublicKey [32]byte

func (k PublicKey) String() string {
	return hexString(k[:])
}

// PublicKeyFromHex parses the hex encoding produced by PublicKey.String.
func PublicKeyFromHex(s string) (PublicKey, error) {
	var k PublicKey
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("shs: invalid public key hex: %w", err)
	}
	if len(b) != len(k) {
		return k, fmt.Errorf("shs: public key must decode to %d bytes, got %d", len(k), len(b))
	}
	copy(k[:], b)
	return k, nil
}

// SecretKey is a long-term Ed25519 signing key pair. Two SecretKeys are
// equal iff their seeds are equal.
type SecretKey struct {
	seed SecretKeySeed
	priv ed25519.PrivateKey
	pub  PublicKey
}

// GenerateSecretKey creates a new SecretKey from cryptographically secure
// randomness.
func GenerateSecretKey() (SecretKey, error) {
	var seed SecretKeySeed
	if _, err := rand.Read(seed[:]); err != nil {
		return SecretKey{}, fmt.Errorf("shs: generating secret key seed: %w", err)
	}
	return SecretKeyFromSeed(seed), nil
}

// SecretKeyFromSeed deterministically reconstitutes a SecretKey from a
// seed previously obtained via SecretKey.Seed.
func SecretKeyFromSeed(seed SecretKeySeed) SecretKey {
	priv := ed25519.NewKeyFromSeed(seed[:])
	var pub PublicKey
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return SecretKey{seed: seed, priv: priv, pub: pub}
}

// PublicKey returns the public half of the key pair.
func (k SecretKey) PublicKey() PublicKey {
	return k.pub
}

// Seed returns the 32-byte seed this key pair was derived from.
func (k SecretKey) Seed() SecretKeySeed {
	return k.seed
}

// Equal reports whether two SecretKeys were derived from the same seed.
func (k SecretKey) Equal(other SecretKey) bool {
	return k.seed == other.seed
}

func (k SecretKey) String() string {
	return "sk-" + hexString(k.seed[:])
}

// signingPrivateKey exposes the underlying Ed25519 private key bytes for
// use by the handshake's signing steps.
func (k SecretKey) signingPrivateKey() ed25519.PrivateKey {
	return k.priv
}

// SessionKey is a 32-byte secret-box symmetric key.
type SessionKey [32]byte

func (k SessionKey) String() string {
	return hexString(k[:])
}
