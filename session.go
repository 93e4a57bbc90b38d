package shs

// Context bundles the immutable configuration for one participant: the
// shared AppID and the participant's own long-term SecretKey.
type Context struct {
	AppID     AppID
	SecretKey SecretKey
}

// Session is the outcome of a successful handshake: a symmetric key and
// nonce for each direction, plus the peer's authenticated long-term public
// key. After a successful handshake between A and B, A.EncryptionKey ==
// B.DecryptionKey, A.EncryptionNonce == B.DecryptionNonce, and
// symmetrically for the other direction; A.PeerPublicKey ==
// B.SecretKey.PublicKey() and vice versa.
//
// The two nonce counters advance independently as CryptoBox and the
// streams consume them; keys never change after construction.
type Session struct {
	EncryptionKey   SessionKey
	EncryptionNonce Nonce
	DecryptionKey   SessionKey
	DecryptionNonce Nonce
	PeerPublicKey   PublicKey
}

// Wipe zeroes the session's key material. The nonces and peer public key
// are not secret and are left untouched.
func (s *Session) Wipe() {
	wipe(s.EncryptionKey[:])
	wipe(s.DecryptionKey[:])
}
