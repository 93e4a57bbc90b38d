package shs

import "runtime"

// wipe overwrites b with zeros. It is written defensively against
// dead-store elimination: a plain `for i := range b { b[i] = 0 }` can be
// optimized away by the compiler once it proves b is never read again,
// which is exactly the case right before a value goes out of scope.
//
//go:noinline
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b)
}
