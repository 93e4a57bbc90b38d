package shs

import "errors"

// These sentinel errors identify the error kinds a caller needs to tell
// apart, per the package's error handling design: IncompleteInput and
// OutTooSmall are recoverable and never mutate state; CorruptData and
// HandshakeFailed are fatal to the instance that returned them.
var (
	// ErrIncompleteInput means not enough bytes are available yet to
	// decrypt a frame or determine its length. Supply more input and
	// retry; no state was mutated, except that in the box-stream-compatible
	// profile a header box that was already opened stays cached (with the
	// decryption nonce advanced past it) so the retry resumes from it.
	ErrIncompleteInput = errors.New("shs: incomplete input")

	// ErrOutTooSmall means the caller-provided output buffer is smaller
	// than the operation requires. Enlarge it and retry; no state was
	// mutated, apart from the same box-stream-compatible header cache.
	ErrOutTooSmall = errors.New("shs: output buffer too small")

	// ErrCorruptData means a MAC or header check failed. This is fatal:
	// the CryptoBox or stream that returned it must be discarded.
	ErrCorruptData = errors.New("shs: corrupt data")

	// ErrHandshakeFailed means an HMAC, box, or signature check failed
	// during the handshake. This is fatal: the handshake becomes
	// terminal and Session is no longer valid.
	ErrHandshakeFailed = errors.New("shs: handshake failed")

	// ErrProtocolMismatch identifies failures that indicate the peer isn't
	// speaking this protocol, or is using a different AppID: an HMAC
	// challenge didn't verify. Every error returned for this failure also
	// wraps ErrHandshakeFailed, so errors.Is against either matches.
	ErrProtocolMismatch = errors.New("shs: protocol mismatch (bad app ID or malformed peer)")

	// ErrAuthRejected identifies failures during the authentication phase:
	// a box failed to open, a signature failed to verify, or a registered
	// ClientAuthorizer rejected the peer. Every error returned for this
	// failure also wraps ErrHandshakeFailed, so errors.Is against either
	// matches.
	ErrAuthRejected = errors.New("shs: authentication rejected")

	// ErrHandshakeNotFinished is returned by Session when called before
	// the handshake has reached the Finished state.
	ErrHandshakeNotFinished = errors.New("shs: handshake has not finished")

	// ErrOutOfSequence is returned by SendCompleted or ReadCompleted when
	// called without a corresponding pending send or read.
	ErrOutOfSequence = errors.New("shs: called out of sequence")
)
