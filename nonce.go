package shs

import "encoding/hex"

// Nonce is a 24-byte counter, treated as a big-endian integer, unique per
// (key, direction). It must never repeat for a given SessionKey.
type Nonce [24]byte

// increment adds 1 to the nonce, treating it as a 192-bit big-endian
// integer. A wraparound after 2^192 consumptions is undefined behavior at
// the protocol level, per the package's design notes, and is not guarded
// against here.
func (n *Nonce) increment() {
	for i := len(n) - 1; i >= 0; i-- {
		n[i]++
		if n[i] != 0 {
			return
		}
	}
}

func (n Nonce) String() string {
	return hex.EncodeToString(n[:])
}
