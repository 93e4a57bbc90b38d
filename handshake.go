package shs

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// Wire sizes of the four handshake messages, in order.
const (
	clientHelloSize  = 64
	serverHelloSize  = 64
	clientAuthSize   = 112
	serverAcceptSize = 80
	appIDHMACSize    = 32
)

var zeroNonce [24]byte

// appIDHMAC computes HMAC-SHA-512 with the AppID as key, truncated to its
// first 32 bytes: the 32-byte-key/32-byte-output form the hello exchange
// uses to prove both sides agree on the same AppID.
func appIDHMAC(appID AppID, msg []byte) [32]byte {
	mac := hmac.New(sha512.New, appID[:])
	mac.Write(msg)
	sum := mac.Sum(nil)
	var out [32]byte
	copy(out[:], sum[:32])
	return out
}

// appIDHMACNonce derives a 24-byte stream nonce the same way, truncating
// HMAC-SHA-512 to the nonce length instead.
func appIDHMACNonce(appID AppID, msg []byte) Nonce {
	mac := hmac.New(sha512.New, appID[:])
	mac.Write(msg)
	sum := mac.Sum(nil)
	var out Nonce
	copy(out[:], sum[:len(out)])
	return out
}

func sha256Sum(parts ...[]byte) [32]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// step tracks how many of the four handshake messages have been exchanged.
type step int

const (
	stepHello step = iota
	stepAuth
	stepAccept
	stepDone
	stepFailed
)

// transcript holds the per-handshake secrets that only exist while the
// exchange is in progress. It is zeroed once the handshake finishes, or
// fails.
//
// s1, s2 and s3 are the three Diffie-Hellman shared secrets the protocol
// mixes into its box keys:
//
//	s1 = client-ephemeral x server-ephemeral  (both sides compute it identically)
//	s2 = client-ephemeral x server-long-term  (known to both sides before the auth box)
//	s3 = client-long-term x server-ephemeral  (the server only learns the client's
//	                                           long-term key once it opens the auth box)
type transcript struct {
	ephPriv [32]byte
	ephPub  [32]byte

	peerEphPub [32]byte

	s1 [32]byte
	s2 [32]byte
	s3 [32]byte
}

func (t *transcript) wipe() {
	wipe(t.ephPriv[:])
	wipe(t.s1[:])
	wipe(t.s2[:])
	wipe(t.s3[:])
	*t = transcript{}
}

func (t *transcript) generateEphemeral() error {
	sk, err := GenerateSecretKey()
	if err != nil {
		return fmt.Errorf("shs: generating ephemeral key: %w", err)
	}
	t.ephPriv = ed25519SeedToCurve25519(sk.Seed())
	pub, err := curve25519BasePointMult(t.ephPriv)
	if err != nil {
		return err
	}
	t.ephPub = pub
	return nil
}

// Handshake is implemented by Client and Server. At most one of
// BytesToSend and BytesToRead returns a non-empty slice at any moment: the
// side whose turn it is to act. Both are empty once the handshake has
// finished or failed. Calling SendCompleted or ReadCompleted
// without a corresponding pending send or read returns ErrOutOfSequence
// and leaves state untouched.
type Handshake interface {
	// BytesToSend returns the next outbound message currently queued. A
	// zero-length result means there is nothing to send right now.
	BytesToSend() []byte
	// SendCompleted confirms the bytes returned by BytesToSend have been
	// transmitted, and advances the state machine.
	SendCompleted() error
	// BytesToRead returns a buffer the caller must fill with the exact
	// next inbound message. A zero-length result means nothing is
	// expected right now.
	BytesToRead() []byte
	// ReadCompleted confirms the buffer returned by BytesToRead has been
	// filled, triggering verification and state advance.
	ReadCompleted() error
	// Failed reports whether the handshake has terminated unsuccessfully.
	Failed() bool
	// Finished reports whether the handshake has completed successfully.
	Finished() bool
	// Session returns the derived session. Valid only once Finished
	// returns true.
	Session() (Session, error)
}

// deriveSession computes the two directional keys and nonces from the
// server-accept box key, per §4.2's session derivation: H is the SHA-256
// of that box key, and each direction
// is keyed by hashing H together with the recipient's long-term public
// key, and nonced by an AppID-keyed HMAC of the recipient's ephemeral
// public key.
func deriveSession(appID AppID, boxKeyHash [32]byte, clientEphPub, serverEphPub [32]byte, clientPub, serverPub PublicKey, isServer bool) Session {
	h := sha256Sum(boxKeyHash[:])

	clientToServerKey := sha256Sum(h[:], serverPub[:])
	clientToServerNonce := appIDHMACNonce(appID, serverEphPub[:])

	serverToClientKey := sha256Sum(h[:], clientPub[:])
	serverToClientNonce := appIDHMACNonce(appID, clientEphPub[:])

	if isServer {
		return Session{
			EncryptionKey:   SessionKey(serverToClientKey),
			EncryptionNonce: serverToClientNonce,
			DecryptionKey:   SessionKey(clientToServerKey),
			DecryptionNonce: clientToServerNonce,
			PeerPublicKey:   clientPub,
		}
	}
	return Session{
		EncryptionKey:   SessionKey(clientToServerKey),
		EncryptionNonce: clientToServerNonce,
		DecryptionKey:   SessionKey(serverToClientKey),
		DecryptionNonce: serverToClientNonce,
		PeerPublicKey:   serverPub,
	}
}

// Client is the active (dialing) side of the handshake. It must already
// know the server's long-term public key.
type Client struct {
	ctx       Context
	serverPub PublicKey

	step        step
	pendingSend []byte
	pendingRecv []byte
	err         error
	session     Session
	t           transcript

	sig [ed25519.SignatureSize]byte // the client's own auth signature, retained for the server-accept signature check
}

// NewClient constructs a Client for connecting to a Server identified by
// serverPublicKey. It generates an ephemeral key pair and immediately has
// the client hello message ready to send.
func NewClient(ctx Context, serverPublicKey PublicKey) (*Client, error) {
	c := &Client{ctx: ctx, serverPub: serverPublicKey}
	if err := c.t.generateEphemeral(); err != nil {
		return nil, err
	}
	h := appIDHMAC(c.ctx.AppID, c.t.ephPub[:])
	c.pendingSend = concat(h[:], c.t.ephPub[:])
	return c, nil
}

func (c *Client) BytesToSend() []byte { return c.pendingSend }

func (c *Client) SendCompleted() error {
	if len(c.pendingSend) == 0 {
		return ErrOutOfSequence
	}
	switch c.step {
	case stepHello:
		c.pendingSend = nil
		c.pendingRecv = make([]byte, serverHelloSize)
	case stepAuth:
		c.pendingSend = nil
		c.pendingRecv = make([]byte, serverAcceptSize)
		c.step = stepAccept
	default:
		return ErrOutOfSequence
	}
	return nil
}

func (c *Client) BytesToRead() []byte { return c.pendingRecv }

func (c *Client) ReadCompleted() error {
	if len(c.pendingRecv) == 0 {
		return ErrOutOfSequence
	}
	switch c.step {
	case stepHello:
		return c.handleServerHello()
	case stepAccept:
		return c.handleServerAccept()
	default:
		return ErrOutOfSequence
	}
}

func (c *Client) handleServerHello() error {
	msg := c.pendingRecv
	gotHMAC := msg[:appIDHMACSize]
	peerEphPub := msg[appIDHMACSize:]
	wantHMAC := appIDHMAC(c.ctx.AppID, peerEphPub)
	if subtle.ConstantTimeCompare(gotHMAC, wantHMAC[:]) != 1 {
		return c.fail(fmt.Errorf("%w: %w: server hello HMAC", ErrHandshakeFailed, ErrProtocolMismatch))
	}
	copy(c.t.peerEphPub[:], peerEphPub)

	s1, err := scalarMult(c.t.ephPriv, c.t.peerEphPub)
	if err != nil {
		return c.fail(fmt.Errorf("%s: %w", err, ErrHandshakeFailed))
	}
	c.t.s1 = s1

	serverPubCurve, err := ed25519PublicKeyToCurve25519(c.serverPub)
	if err != nil {
		return c.fail(fmt.Errorf("%s: %w", err, ErrHandshakeFailed))
	}
	s2, err := scalarMult(c.t.ephPriv, serverPubCurve)
	if err != nil {
		return c.fail(fmt.Errorf("%s: %w", err, ErrHandshakeFailed))
	}
	c.t.s2 = s2

	clientLongTermCurve := ed25519SeedToCurve25519(c.ctx.SecretKey.Seed())
	s3, err := scalarMult(clientLongTermCurve, c.t.peerEphPub)
	if err != nil {
		return c.fail(fmt.Errorf("%s: %w", err, ErrHandshakeFailed))
	}
	c.t.s3 = s3

	c.pendingRecv = nil
	c.pendingSend = c.buildClientAuth()
	c.step = stepAuth
	return nil
}

func (c *Client) buildClientAuth() []byte {
	hs1 := sha256Sum(c.t.s1[:])
	toSign := concat(c.ctx.AppID[:], c.serverPub[:], hs1[:])
	sig := ed25519.Sign(c.ctx.SecretKey.signingPrivateKey(), toSign)
	copy(c.sig[:], sig)
	clientPub := c.ctx.SecretKey.PublicKey()
	plaintext := concat(sig, clientPub[:])
	key := sha256Sum(c.ctx.AppID[:], c.t.s1[:], c.t.s2[:])
	box := secretbox.Seal(nil, plaintext, &zeroNonce, &key)
	return box
}

func (c *Client) handleServerAccept() error {
	key := sha256Sum(c.ctx.AppID[:], c.t.s1[:], c.t.s2[:], c.t.s3[:])
	plaintext, ok := secretbox.Open(nil, c.pendingRecv, &zeroNonce, &key)
	if !ok {
		return c.fail(fmt.Errorf("%w: %w: server accept box did not open", ErrHandshakeFailed, ErrAuthRejected))
	}
	clientPub := c.ctx.SecretKey.PublicKey()
	hs1 := sha256Sum(c.t.s1[:])
	toVerify := concat(c.ctx.AppID[:], c.sig[:], clientPub[:], hs1[:])
	if !ed25519.Verify(c.serverPub[:], toVerify, plaintext) {
		return c.fail(fmt.Errorf("%w: %w: server signature did not verify", ErrHandshakeFailed, ErrAuthRejected))
	}

	c.session = deriveSession(c.ctx.AppID, key, c.t.ephPub, c.t.peerEphPub, clientPub, c.serverPub, false)
	c.pendingRecv = nil
	c.step = stepDone
	c.t.wipe()
	return nil
}

func (c *Client) fail(err error) error {
	c.step = stepFailed
	c.pendingSend = nil
	c.pendingRecv = nil
	c.err = err
	c.t.wipe()
	return err
}

func (c *Client) Failed() bool   { return c.step == stepFailed }
func (c *Client) Finished() bool { return c.step == stepDone }

func (c *Client) Session() (Session, error) {
	if !c.Finished() {
		return Session{}, ErrHandshakeNotFinished
	}
	return c.session, nil
}

// ClientAuthorizer decides whether a Server accepts a client's long-term
// public key once it has been authenticated. Returning false aborts the
// handshake with ErrAuthRejected before the server-accept message is sent.
type ClientAuthorizer func(PublicKey) bool

// Server is the passive (listening) side of the handshake.
type Server struct {
	ctx Context

	step        step
	pendingSend []byte
	pendingRecv []byte
	err         error
	session     Session
	t           transcript

	clientPub  PublicKey
	authorizer ClientAuthorizer
}

// NewServer constructs a Server. It generates an ephemeral key pair and
// immediately expects to read the client hello message.
func NewServer(ctx Context) (*Server, error) {
	s := &Server{ctx: ctx}
	if err := s.t.generateEphemeral(); err != nil {
		return nil, err
	}
	s.pendingRecv = make([]byte, clientHelloSize)
	return s, nil
}

// SetClientAuthorizer registers a callback consulted once the client's
// long-term public key has been authenticated, before the server commits
// to the handshake. It must be set before ReadCompleted is called on the
// client auth message. A nil authorizer (the default) accepts every
// authenticated client.
func (s *Server) SetClientAuthorizer(f ClientAuthorizer) {
	s.authorizer = f
}

func (s *Server) BytesToSend() []byte { return s.pendingSend }

func (s *Server) SendCompleted() error {
	if len(s.pendingSend) == 0 {
		return ErrOutOfSequence
	}
	switch s.step {
	case stepHello:
		s.pendingSend = nil
		s.pendingRecv = make([]byte, clientAuthSize)
		s.step = stepAuth
	case stepAccept:
		s.pendingSend = nil
		s.step = stepDone
		s.t.wipe()
	default:
		return ErrOutOfSequence
	}
	return nil
}

func (s *Server) BytesToRead() []byte { return s.pendingRecv }

func (s *Server) ReadCompleted() error {
	if len(s.pendingRecv) == 0 {
		return ErrOutOfSequence
	}
	switch s.step {
	case stepHello:
		return s.handleClientHello()
	case stepAuth:
		return s.handleClientAuth()
	default:
		return ErrOutOfSequence
	}
}

func (s *Server) handleClientHello() error {
	msg := s.pendingRecv
	gotHMAC := msg[:appIDHMACSize]
	peerEphPub := msg[appIDHMACSize:]
	wantHMAC := appIDHMAC(s.ctx.AppID, peerEphPub)
	if subtle.ConstantTimeCompare(gotHMAC, wantHMAC[:]) != 1 {
		return s.fail(fmt.Errorf("%w: %w: client hello HMAC", ErrHandshakeFailed, ErrProtocolMismatch))
	}
	copy(s.t.peerEphPub[:], peerEphPub)

	s1, err := scalarMult(s.t.ephPriv, s.t.peerEphPub)
	if err != nil {
		return s.fail(fmt.Errorf("%s: %w", err, ErrHandshakeFailed))
	}
	s.t.s1 = s1

	serverLongTermCurve := ed25519SeedToCurve25519(s.ctx.SecretKey.Seed())
	s2, err := scalarMult(serverLongTermCurve, s.t.peerEphPub)
	if err != nil {
		return s.fail(fmt.Errorf("%s: %w", err, ErrHandshakeFailed))
	}
	s.t.s2 = s2

	s.pendingRecv = nil
	h := appIDHMAC(s.ctx.AppID, s.t.ephPub[:])
	s.pendingSend = concat(h[:], s.t.ephPub[:])
	return nil
}

func (s *Server) handleClientAuth() error {
	authBox := s.pendingRecv
	key := sha256Sum(s.ctx.AppID[:], s.t.s1[:], s.t.s2[:])
	plaintext, ok := secretbox.Open(nil, authBox, &zeroNonce, &key)
	if !ok {
		return s.fail(fmt.Errorf("%w: %w: client auth box did not open", ErrHandshakeFailed, ErrAuthRejected))
	}
	sig := plaintext[:ed25519.SignatureSize]
	var clientPub PublicKey
	copy(clientPub[:], plaintext[ed25519.SignatureSize:])

	serverPub := s.ctx.SecretKey.PublicKey()
	hs1 := sha256Sum(s.t.s1[:])
	toVerify := concat(s.ctx.AppID[:], serverPub[:], hs1[:])
	if !ed25519.Verify(clientPub[:], toVerify, sig) {
		return s.fail(fmt.Errorf("%w: %w: client signature did not verify", ErrHandshakeFailed, ErrAuthRejected))
	}
	if s.authorizer != nil && !s.authorizer(clientPub) {
		return s.fail(fmt.Errorf("%w: %w: client public key rejected by authorizer", ErrHandshakeFailed, ErrAuthRejected))
	}
	s.clientPub = clientPub

	clientPubCurve, err := ed25519PublicKeyToCurve25519(clientPub)
	if err != nil {
		return s.fail(fmt.Errorf("%s: %w", err, ErrHandshakeFailed))
	}
	s3, err := scalarMult(s.t.ephPriv, clientPubCurve)
	if err != nil {
		return s.fail(fmt.Errorf("%s: %w", err, ErrHandshakeFailed))
	}
	s.t.s3 = s3

	ackKey := sha256Sum(s.ctx.AppID[:], s.t.s1[:], s.t.s2[:], s.t.s3[:])
	toSign := concat(s.ctx.AppID[:], sig, clientPub[:], hs1[:])
	ackSig := ed25519.Sign(s.ctx.SecretKey.signingPrivateKey(), toSign)
	box := secretbox.Seal(nil, ackSig, &zeroNonce, &ackKey)

	s.session = deriveSession(s.ctx.AppID, ackKey, s.t.peerEphPub, s.t.ephPub, clientPub, serverPub, true)
	s.pendingRecv = nil
	s.pendingSend = box
	s.step = stepAccept
	return nil
}

func (s *Server) fail(err error) error {
	s.step = stepFailed
	s.pendingSend = nil
	s.pendingRecv = nil
	s.err = err
	s.t.wipe()
	return err
}

func (s *Server) Failed() bool   { return s.step == stepFailed }
func (s *Server) Finished() bool { return s.step == stepDone }

// PeerPublicKey returns the authenticated client public key. Valid once
// the client auth message has been processed, i.e. from the moment the
// server accept message becomes available to send.
func (s *Server) PeerPublicKey() (PublicKey, bool) {
	return s.clientPub, s.step == stepAccept || s.step == stepDone
}

func (s *Server) Session() (Session, error) {
	if !s.Finished() {
		return Session{}, ErrHandshakeNotFinished
	}
	return s.session, nil
}

var (
	_ Handshake = (*Client)(nil)
	_ Handshake = (*Server)(nil)
)
