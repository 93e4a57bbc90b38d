package shs

import (
	"fmt"
	"net"
	"time"
)

// Conn is a net.Conn that frames and encrypts everything written to it,
// and decrypts and unframes everything read from it, using the Session
// produced by a completed handshake. It is not part of the core codec —
// the core never touches a socket — but is offered as the glue a caller
// driving a real net.Conn would otherwise have to write by hand.
type Conn struct {
	conn    net.Conn
	session Session
	enc     *EncryptionStream
	dec     *DecryptionStream

	recvFrame []byte
}

func (c *Conn) Close() error         { return c.conn.Close() }
func (c *Conn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *Conn) SetDeadline(t time.Time) error      { return c.conn.SetDeadline(t) }
func (c *Conn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }

// Session returns the session this connection was established with.
func (c *Conn) Session() Session { return c.session }

// Read decrypts one frame's worth of application data at a time off the
// underlying connection, copying it into b. If b is smaller than the
// frame, the remainder is buffered and returned by subsequent Reads
// before any new frame is read.
func (c *Conn) Read(b []byte) (int, error) {
	if len(c.recvFrame) == 0 {
		frame, err := c.readFrame()
		if err != nil {
			return 0, err
		}
		c.recvFrame = frame
	}
	n := copy(b, c.recvFrame)
	c.recvFrame = c.recvFrame[n:]
	return n, nil
}

// readFrame blocks until one full frame has arrived, decrypts it, and
// returns its cleartext.
func (c *Conn) readFrame() ([]byte, error) {
	probe := make([]byte, 1)
	for c.dec.BytesAvailable() == 0 {
		n, err := c.conn.Read(probe)
		if n > 0 {
			if !c.dec.Push(probe[:n]) {
				return nil, fmt.Errorf("shs: %w", ErrCorruptData)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	out := make([]byte, c.dec.BytesAvailable())
	c.dec.Pull(out)
	return out, nil
}

// Write seals b as exactly one frame and sends it to the other side.
func (c *Conn) Write(b []byte) (int, error) {
	if err := c.enc.Push(b); err != nil {
		return 0, err
	}
	out := make([]byte, c.enc.BytesAvailable())
	c.enc.Pull(out)
	if _, err := c.conn.Write(out); err != nil {
		return 0, err
	}
	return len(b), nil
}

// driveHandshake runs hs to completion over conn, alternating blocking
// writes and reads exactly per the Handshake's own bytesToSend/bytesToRead
// contract: the core has no I/O of its own, so a host loop like this one
// is required to supply it.
func driveHandshake(conn net.Conn, hs Handshake) error {
	for !hs.Finished() && !hs.Failed() {
		if out := hs.BytesToSend(); len(out) > 0 {
			if _, err := conn.Write(out); err != nil {
				return err
			}
			if err := hs.SendCompleted(); err != nil {
				return err
			}
			continue
		}
		if in := hs.BytesToRead(); len(in) > 0 {
			if _, err := readFull(conn, in); err != nil {
				return err
			}
			if err := hs.ReadCompleted(); err != nil {
				return err
			}
			continue
		}
		break
	}
	if hs.Failed() {
		return ErrHandshakeFailed
	}
	return nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WrapClient drives the client side of a handshake over conn, then
// returns a Conn that frames and encrypts traffic under profile using the
// resulting Session.
//
// Lifecycle: if WrapClient returns an error, conn has already been
// closed. If you read from or write to conn directly after a successful
// return, instead of through the returned Conn, your data will be sent
// in plaintext and the peer will become confused.
func WrapClient(conn net.Conn, ctx Context, serverPublicKey PublicKey, profile Profile) (*Conn, error) {
	bail := func(e error) (*Conn, error) {
		conn.Close()
		return nil, e
	}

	hs, err := NewClient(ctx, serverPublicKey)
	if err != nil {
		return bail(err)
	}
	if err := driveHandshake(conn, hs); err != nil {
		return bail(err)
	}
	session, err := hs.Session()
	if err != nil {
		return bail(err)
	}

	c := &Conn{conn: conn, session: session}
	c.enc = NewEncryptionStream(&c.session, profile)
	c.dec = NewDecryptionStream(&c.session, profile)
	return c, nil
}

// WrapServer drives the server side of a handshake over conn, consulting
// authorizer (which may be nil to accept every authenticated client) once
// the peer's long-term public key is known, then returns a Conn that
// frames and encrypts traffic under profile using the resulting Session.
//
// Lifecycle: if WrapServer returns an error, conn has already been
// closed.
func WrapServer(conn net.Conn, ctx Context, profile Profile, authorizer ClientAuthorizer) (*Conn, error) {
	bail := func(e error) (*Conn, error) {
		conn.Close()
		return nil, e
	}

	hs, err := NewServer(ctx)
	if err != nil {
		return bail(err)
	}
	hs.SetClientAuthorizer(authorizer)
	if err := driveHandshake(conn, hs); err != nil {
		return bail(err)
	}
	session, err := hs.Session()
	if err != nil {
		return bail(err)
	}

	c := &Conn{conn: conn, session: session}
	c.enc = NewEncryptionStream(&c.session, profile)
	c.dec = NewDecryptionStream(&c.session, profile)
	return c, nil
}

var _ net.Conn = (*Conn)(nil)
