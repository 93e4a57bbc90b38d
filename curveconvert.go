package shs

import (
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"
)

// ed25519SeedToCurve25519 converts an Ed25519 seed to the Curve25519
// private scalar used for Diffie-Hellman, following the same construction
// libsodium's crypto_sign_ed25519_sk_to_curve25519 uses: the low 32 bytes
// of SHA-512(seed), clamped per RFC 7748.
func ed25519SeedToCurve25519(seed SecretKeySeed) [32]byte {
	h := sha512.Sum512(seed[:])
	var scalar [32]byte
	copy(scalar[:], h[:32])
	clampScalar(&scalar)
	return scalar
}

func clampScalar(s *[32]byte) {
	s[0] &= 248
	s[31] &= 127
	s[31] |= 64
}

// ed25519PublicKeyToCurve25519 converts an Ed25519 public key (an Edwards
// point) to its Curve25519 Montgomery-form public key, via the standard
// birational map u = (1 + y) / (1 - y) between the two curves. Only the
// encoded y coordinate is used; the encoding is not checked to be a point
// on the curve, so a corrupted key still converts to some u value.
func ed25519PublicKeyToCurve25519(pub PublicKey) ([32]byte, error) {
	var out [32]byte
	y, err := new(field.Element).SetBytes(pub[:])
	if err != nil {
		return out, fmt.Errorf("shs: invalid ed25519 public key: %w", err)
	}
	one := new(field.Element).One()
	recip := new(field.Element).Subtract(one, y)
	recip.Invert(recip)
	u := new(field.Element).Add(one, y)
	u.Multiply(u, recip)
	copy(out[:], u.Bytes())
	return out, nil
}

// scalarMult performs a Curve25519 scalar multiplication of a private
// scalar and a peer's Curve25519 public key, i.e. the shared secret each
// side of a Diffie-Hellman exchange computes.
func scalarMult(priv, peerPub [32]byte) ([32]byte, error) {
	var out [32]byte
	shared, err := curve25519.X25519(priv[:], peerPub[:])
	if err != nil {
		return out, fmt.Errorf("shs: curve25519 scalar mult: %w", err)
	}
	copy(out[:], shared)
	return out, nil
}

// curve25519BasePointMult derives the Curve25519 public key for a private
// scalar, i.e. scalar multiplication against the standard base point.
func curve25519BasePointMult(priv [32]byte) ([32]byte, error) {
	var out [32]byte
	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return out, fmt.Errorf("shs: curve25519 base point mult: %w", err)
	}
	copy(out[:], pub)
	return out, nil
}
