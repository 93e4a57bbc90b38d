package shs

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func mirroredStreamSessions(t *testing.T, profile Profile) (*EncryptionStream, *DecryptionStream) {
	t.Helper()
	sessionA, sessionB := mirroredSessions(t)
	return NewEncryptionStream(sessionA, profile), NewDecryptionStream(sessionB, profile)
}

// TestStreamScenario6 reproduces the literal push/flush/transfer/pull
// choreography of scenario 6, including its exact byte counts.
func TestStreamScenario6(t *testing.T) {
	enc, dec := mirroredStreamSessions(t, ProfileCompact)

	enc.PushPartial([]byte("Hel"))
	enc.PushPartial([]byte("lo"))
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %s", err)
	}

	overhead := compactHeaderSize + 16 // secretbox.Overhead, duplicated here to avoid importing the package
	wantAvailable := 5 + overhead
	if enc.BytesAvailable() != wantAvailable {
		t.Fatalf("BytesAvailable after flush = %d, want %d", enc.BytesAvailable(), wantAvailable)
	}

	full := make([]byte, enc.BytesAvailable())
	enc.Pull(full)

	// Transfer the first 10 bytes: not a complete frame yet.
	firstChunk := full[:10]
	dec.Push(firstChunk)
	if dec.BytesAvailable() != 0 {
		t.Fatalf("BytesAvailable after partial transfer = %d, want 0", dec.BytesAvailable())
	}

	// Transfer the remainder: the frame completes.
	remainder := full[10:]
	dec.Push(remainder)
	if dec.BytesAvailable() != 5 {
		t.Fatalf("BytesAvailable after full transfer = %d, want 5", dec.BytesAvailable())
	}

	got3 := make([]byte, 3)
	dec.Pull(got3)
	if string(got3) != "Hel" {
		t.Fatalf("first partial pull = %q, want %q", got3, "Hel")
	}

	enc.Push([]byte(" there"))
	enc.PushPartial([]byte(", world"))
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %s", err)
	}
	cipher2 := make([]byte, enc.BytesAvailable())
	enc.Pull(cipher2)
	dec.Push(cipher2)

	rest := make([]byte, dec.BytesAvailable())
	dec.Pull(rest)

	final := append(got3, rest...)
	want := "Hello there, world"
	if string(final) != want {
		t.Fatalf("final cleartext = %q, want %q", final, want)
	}
	if len(final) != 18 {
		t.Errorf("final cleartext length = %d, want 18", len(final))
	}
}

// TestStreamPartitionInvariant covers invariant 7: any partition of the
// ciphertext into Push calls yields the same cleartext, and any partition
// of Pull sizes yields the same concatenated cleartext.
func TestStreamPartitionInvariant(t *testing.T) {
	testBothProfiles(t, func(t *testing.T, profile Profile) {
		messages := [][]byte{
			[]byte("first frame"),
			[]byte(""),
			[]byte("a rather longer second frame, to mix up sizes a bit"),
			[]byte("x"),
		}

		sessionA, sessionB := mirroredSessions(t)
		enc := NewEncryptionStream(sessionA, profile)
		for _, m := range messages {
			if err := enc.Push(m); err != nil {
				t.Fatalf("Push: %s", err)
			}
		}
		cipher := make([]byte, enc.BytesAvailable())
		enc.Pull(cipher)

		var want bytes.Buffer
		for _, m := range messages {
			want.Write(m)
		}

		partitions := [][]int{
			{len(cipher)},
			splitEvenly(len(cipher), 3),
			splitEvenly(len(cipher), 7),
			onesAndRemainder(len(cipher)),
		}

		for _, sizes := range partitions {
			decSession := *sessionB
			dec := NewDecryptionStream(&decSession, profile)
			offset := 0
			for _, n := range sizes {
				if n == 0 {
					continue
				}
				if !dec.Push(cipher[offset : offset+n]) {
					t.Fatalf("Push chunk of %d bytes was rejected as poisoned", n)
				}
				offset += n
			}
			if offset != len(cipher) {
				t.Fatalf("test fixture bug: partition sums to %d, want %d", offset, len(cipher))
			}

			got := make([]byte, 0, want.Len())
			for _, pullSize := range pullPartitionsFor(want.Len()) {
				buf := make([]byte, pullSize)
				n := dec.Pull(buf)
				got = append(got, buf[:n]...)
			}
			for dec.BytesAvailable() > 0 {
				buf := make([]byte, dec.BytesAvailable())
				n := dec.Pull(buf)
				got = append(got, buf[:n]...)
			}

			if !bytes.Equal(got, want.Bytes()) {
				t.Fatalf("partition %v: got %q, want %q", sizes, got, want.Bytes())
			}
		}
	})
}

func splitEvenly(total, parts int) []int {
	if parts <= 0 || total == 0 {
		return []int{total}
	}
	chunk := total / parts
	if chunk == 0 {
		chunk = 1
	}
	var sizes []int
	remaining := total
	for remaining > chunk {
		sizes = append(sizes, chunk)
		remaining -= chunk
	}
	sizes = append(sizes, remaining)
	return sizes
}

func onesAndRemainder(total int) []int {
	if total == 0 {
		return nil
	}
	sizes := make([]int, 0, total)
	for i := 0; i < total-1 && i < 5; i++ {
		sizes = append(sizes, 1)
	}
	consumed := len(sizes)
	sizes = append(sizes, total-consumed)
	return sizes
}

func pullPartitionsFor(total int) []int {
	if total == 0 {
		return nil
	}
	first := total / 2
	if first == 0 {
		return []int{total}
	}
	return []int{first, total - first}
}

// TestStreamBytesAvailableExact covers invariant 8: BytesAvailable always
// equals exactly what the next unbounded Pull would return.
func TestStreamBytesAvailableExact(t *testing.T) {
	testBothProfiles(t, func(t *testing.T, profile Profile) {
		enc, dec := mirroredStreamSessions(t, profile)

		payload := make([]byte, 97)
		if _, err := rand.Read(payload); err != nil {
			t.Fatalf("rand: %s", err)
		}
		if err := enc.Push(payload); err != nil {
			t.Fatalf("Push: %s", err)
		}
		if got := enc.BytesAvailable(); got != enc.BytesAvailable() {
			t.Fatalf("BytesAvailable not stable across calls")
		}

		cipher := make([]byte, enc.BytesAvailable())
		gotEncN := enc.Pull(cipher)
		if gotEncN != len(cipher) {
			t.Fatalf("EncryptionStream.Pull returned %d, want %d", gotEncN, len(cipher))
		}
		if enc.BytesAvailable() != 0 {
			t.Fatalf("EncryptionStream.BytesAvailable after full pull = %d, want 0", enc.BytesAvailable())
		}

		dec.Push(cipher)
		avail := dec.BytesAvailable()
		buf := make([]byte, avail)
		n := dec.Pull(buf)
		if n != avail {
			t.Fatalf("Pull(buf) = %d, want BytesAvailable() = %d", n, avail)
		}
		if dec.BytesAvailable() != 0 {
			t.Fatalf("BytesAvailable after draining = %d, want 0", dec.BytesAvailable())
		}
		if !bytes.Equal(buf, payload) {
			t.Fatal("drained cleartext does not match the original payload")
		}
	})
}

// TestDecryptionStreamPoisons ensures a corrupted frame poisons the stream
// permanently, per design note (c).
func TestDecryptionStreamPoisons(t *testing.T) {
	enc, dec := mirroredStreamSessions(t, ProfileCompact)

	if err := enc.Push([]byte("legitimate frame")); err != nil {
		t.Fatalf("Push: %s", err)
	}
	cipher := make([]byte, enc.BytesAvailable())
	enc.Pull(cipher)
	cipher[len(cipher)-1] ^= 0xFF

	if dec.Push(cipher) {
		t.Fatal("Push of a corrupted frame should return false")
	}
	if !dec.Poisoned() {
		t.Fatal("stream should be poisoned after a corrupt frame")
	}
	if dec.Push([]byte("more data")) {
		t.Fatal("a poisoned stream must reject further Push calls")
	}
	if dec.Pull(make([]byte, 10)) != 0 {
		t.Fatal("a poisoned stream must yield nothing from Pull")
	}
}

// TestEncryptionStreamFlushEmpty documents the resolved open question: a
// Flush on an empty accumulator is legal and produces a zero-length frame.
func TestEncryptionStreamFlushEmpty(t *testing.T) {
	enc, dec := mirroredStreamSessions(t, ProfileCompact)

	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush on an empty accumulator: %s", err)
	}
	cipher := make([]byte, enc.BytesAvailable())
	enc.Pull(cipher)

	dec.Push(cipher)
	if dec.BytesAvailable() != 0 {
		t.Fatalf("BytesAvailable after an empty frame = %d, want 0", dec.BytesAvailable())
	}
}
