package shs

// AppID is an arbitrary 32-byte value identifying the higher-level
// application protocol. Client and server must agree on the same AppID to
// complete a handshake; it keys the initial HMAC challenge exchange and so
// doubles as a lightweight protocol-version discriminator.
type AppID [32]byte

// AppIDFromString derives an AppID from a caller-supplied string: up to the
// first 32 bytes of s are copied in, and the remainder is zero-padded.
// Strings longer than 32 bytes are truncated without error.
func AppIDFromString(s string) AppID {
	var id AppID
	copy(id[:], s)
	return id
}

func (id AppID) String() string {
	return hexString(id[:])
}
