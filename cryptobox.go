package shs

import (
	"encoding/binary"

	"golang.org/x/crypto/nacl/secretbox"
)

// Profile selects the wire layout CryptoBox uses for a frame. Both ends of
// a channel must agree on the same Profile; there is no runtime
// negotiation.
type Profile int

const (
	// ProfileCompact is the default: a 2-byte big-endian length header
	// followed by a single secret-box of the cleartext. 18 bytes of
	// overhead per frame.
	ProfileCompact Profile = iota
	// ProfileBoxStreamCompatible splits the frame into a 34-byte header
	// box (carrying the length and the body's MAC) and a separately
	// nonced, MAC-less body. 34 bytes of overhead per frame.
	ProfileBoxStreamCompatible
)

const (
	compactHeaderSize = 2

	// boxStreamHeaderPlainSize is the cleartext size of the header box's
	// payload: a 2-byte length followed by the body's 16-byte MAC.
	boxStreamHeaderPlainSize = 2 + secretbox.Overhead
	// boxStreamHeaderWireSize is the header box's on-wire size, once sealed.
	boxStreamHeaderWireSize = boxStreamHeaderPlainSize + secretbox.Overhead
)

func keyArray(k SessionKey) *[32]byte { return (*[32]byte)(&k) }
func nonceArray(n Nonce) *[24]byte    { return (*[24]byte)(&n) }

// headerCache remembers the result of having opened a box-stream-compatible
// header box, per §4.3: getDecryptedSize must open that header (and
// advance the decryption nonce) to learn the frame's length, and decrypt
// must not redo that work or re-advance the nonce for the same frame.
type headerCache struct {
	valid   bool
	size    int
	bodyMAC [secretbox.Overhead]byte
}

// CryptoBox is a single-message authenticated codec bound to one Session.
// It encrypts with the session's outbound key/nonce and decrypts with the
// inbound key/nonce, advancing whichever nonce it touches on success.
type CryptoBox struct {
	session *Session
	profile Profile
	hdr     headerCache
}

// NewCryptoBox binds a CryptoBox to session using the given wire profile.
// The CryptoBox holds no byte buffers of its own; callers supply them.
func NewCryptoBox(session *Session, profile Profile) *CryptoBox {
	return &CryptoBox{session: session, profile: profile}
}

// EncryptedSize returns the ciphertext length encrypt will produce for a
// cleartext of clearLen bytes, under the box's profile.
func (b *CryptoBox) EncryptedSize(clearLen int) int {
	switch b.profile {
	case ProfileBoxStreamCompatible:
		return boxStreamHeaderWireSize + clearLen
	default:
		return compactHeaderSize + secretbox.Overhead + clearLen
	}
}

// Encrypt seals in as one frame into out, advancing the encryption nonce
// on success. It returns ErrOutTooSmall without mutating any state if out
// is not at least EncryptedSize(len(in)) bytes.
func (b *CryptoBox) Encrypt(out, in []byte) (int, error) {
	need := b.EncryptedSize(len(in))
	if len(out) < need {
		return 0, ErrOutTooSmall
	}

	switch b.profile {
	case ProfileBoxStreamCompatible:
		nonce1 := b.session.EncryptionNonce
		nonce2 := nonce1
		nonce2.increment()

		sealedBody := secretbox.Seal(nil, in, nonceArray(nonce2), keyArray(b.session.EncryptionKey))
		var bodyMAC [secretbox.Overhead]byte
		copy(bodyMAC[:], sealedBody[:secretbox.Overhead])
		cipherBody := sealedBody[secretbox.Overhead:]

		var headerPlain [boxStreamHeaderPlainSize]byte
		binary.BigEndian.PutUint16(headerPlain[:2], uint16(len(in)))
		copy(headerPlain[2:], bodyMAC[:])
		sealedHeader := secretbox.Seal(nil, headerPlain[:], nonceArray(nonce1), keyArray(b.session.EncryptionKey))

		copy(out, sealedHeader)
		copy(out[len(sealedHeader):], cipherBody)

		nonce2.increment()
		b.session.EncryptionNonce = nonce2

	default:
		sealed := secretbox.Seal(nil, in, nonceArray(b.session.EncryptionNonce), keyArray(b.session.EncryptionKey))
		var hdr [compactHeaderSize]byte
		binary.BigEndian.PutUint16(hdr[:], uint16(len(in)))
		copy(out, hdr[:])
		copy(out[compactHeaderSize:], sealed)
		b.session.EncryptionNonce.increment()
	}

	return need, nil
}

// GetDecryptedSize reports the cleartext length of the next frame in
// cipher, without decrypting the body. In the compact profile this reads
// the 2-byte header only. In the box-stream-compatible profile, the
// header is itself a secret-box: opening it is required to learn the
// length, and on success it advances the decryption nonce by one. That
// result is cached so a subsequent call (or Decrypt) for the same frame
// does not reopen the header or re-advance the nonce.
func (b *CryptoBox) GetDecryptedSize(cipher []byte) (int, error) {
	if b.profile == ProfileBoxStreamCompatible && b.hdr.valid {
		return b.hdr.size, nil
	}

	switch b.profile {
	case ProfileBoxStreamCompatible:
		if len(cipher) < boxStreamHeaderWireSize {
			return 0, ErrIncompleteInput
		}
		plain, ok := secretbox.Open(nil, cipher[:boxStreamHeaderWireSize], nonceArray(b.session.DecryptionNonce), keyArray(b.session.DecryptionKey))
		if !ok {
			return 0, ErrCorruptData
		}
		size := int(binary.BigEndian.Uint16(plain[:2]))
		var mac [secretbox.Overhead]byte
		copy(mac[:], plain[2:])
		b.session.DecryptionNonce.increment()
		b.hdr = headerCache{valid: true, size: size, bodyMAC: mac}
		return size, nil
	default:
		if len(cipher) < compactHeaderSize {
			return 0, ErrIncompleteInput
		}
		return int(binary.BigEndian.Uint16(cipher[:compactHeaderSize])), nil
	}
}

// frameSize returns the total on-wire length of the next frame in cipher,
// given its already-known cleartext size.
func (b *CryptoBox) frameSize(clearSize int) int {
	if b.profile == ProfileBoxStreamCompatible {
		return boxStreamHeaderWireSize + clearSize
	}
	return compactHeaderSize + secretbox.Overhead + clearSize
}

// Decrypt opens the next frame in in, writing its cleartext into out and
// returning the cleartext length and the number of input bytes consumed.
// It returns ErrIncompleteInput if in does not yet contain a full frame
// (without mutating state, except for the box-stream-compatible header
// cache side effect documented on GetDecryptedSize), ErrOutTooSmall if out
// cannot hold the cleartext, or ErrCorruptData if a MAC fails to verify.
func (b *CryptoBox) Decrypt(out, in []byte) (n int, consumed int, err error) {
	size, err := b.GetDecryptedSize(in)
	if err != nil {
		return 0, 0, err
	}
	total := b.frameSize(size)
	if len(in) < total {
		return 0, 0, ErrIncompleteInput
	}
	if len(out) < size {
		return 0, 0, ErrOutTooSmall
	}

	switch b.profile {
	case ProfileBoxStreamCompatible:
		reconstructed := make([]byte, 0, secretbox.Overhead+size)
		reconstructed = append(reconstructed, b.hdr.bodyMAC[:]...)
		reconstructed = append(reconstructed, in[boxStreamHeaderWireSize:total]...)
		plain, ok := secretbox.Open(nil, reconstructed, nonceArray(b.session.DecryptionNonce), keyArray(b.session.DecryptionKey))
		if !ok {
			return 0, 0, ErrCorruptData
		}
		copy(out, plain)
		b.session.DecryptionNonce.increment()
		b.hdr = headerCache{}
	default:
		plain, ok := secretbox.Open(nil, in[compactHeaderSize:total], nonceArray(b.session.DecryptionNonce), keyArray(b.session.DecryptionKey))
		if !ok {
			return 0, 0, ErrCorruptData
		}
		copy(out, plain)
		b.session.DecryptionNonce.increment()
	}

	return size, total, nil
}
