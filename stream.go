package shs

// EncryptionStream buffers cleartext, packages it into frames at
// caller-chosen boundaries via flush, and emits ciphertext lazily. It owns
// the Session exclusively on the encryption side.
type EncryptionStream struct {
	box   *CryptoBox
	clear []byte // pending cleartext accumulator, not yet flushed
	out   []byte // ciphertext ring, ready to pull
}

// NewEncryptionStream builds an EncryptionStream bound to session under
// the given profile.
func NewEncryptionStream(session *Session, profile Profile) *EncryptionStream {
	return &EncryptionStream{box: NewCryptoBox(session, profile)}
}

// PushPartial appends b to the cleartext accumulator without framing it.
// BytesAvailable is unaffected until Flush is called.
func (s *EncryptionStream) PushPartial(b []byte) {
	s.clear = append(s.clear, b...)
}

// Push is equivalent to PushPartial(b) followed by Flush.
func (s *EncryptionStream) Push(b []byte) error {
	s.PushPartial(b)
	return s.Flush()
}

// Flush seals the current accumulator into exactly one frame and appends
// its ciphertext to the output ring, emptying the cleartext accumulator.
// Flushing an empty accumulator is permitted; it produces a legal
// zero-length frame.
func (s *EncryptionStream) Flush() error {
	need := s.box.EncryptedSize(len(s.clear))
	frame := make([]byte, need)
	n, err := s.box.Encrypt(frame, s.clear)
	if err != nil {
		return err
	}
	s.out = append(s.out, frame[:n]...)
	s.clear = s.clear[:0]
	return nil
}

// BytesAvailable returns the number of ciphertext bytes currently ready
// to emit via Pull.
func (s *EncryptionStream) BytesAvailable() int {
	return len(s.out)
}

// Pull copies up to min(len(buf), BytesAvailable()) ciphertext bytes into
// buf, consuming them, and returns the count copied.
func (s *EncryptionStream) Pull(buf []byte) int {
	n := copy(buf, s.out)
	s.out = s.out[n:]
	return n
}

// DecryptionStream consumes ciphertext pushed in arbitrary byte ranges,
// reassembles frames as soon as they're complete, decrypts them, and
// yields cleartext on demand. A detected MAC or header failure poisons
// the stream permanently.
type DecryptionStream struct {
	box      *CryptoBox
	cipher   []byte // ciphertext accumulator, not yet fully decrypted
	clear    []byte // cleartext ring, ready to pull
	poisoned bool
}

// NewDecryptionStream builds a DecryptionStream bound to session under the
// given profile.
func NewDecryptionStream(session *Session, profile Profile) *DecryptionStream {
	return &DecryptionStream{box: NewCryptoBox(session, profile)}
}

// Push appends b to the ciphertext accumulator and decrypts as many
// complete frames as are now available. It returns false if a frame's
// header or MAC fails to verify, after which the stream is poisoned and
// every subsequent Push/Pull call is a no-op.
func (s *DecryptionStream) Push(b []byte) bool {
	if s.poisoned {
		return false
	}
	s.cipher = append(s.cipher, b...)

	for {
		size, err := s.box.GetDecryptedSize(s.cipher)
		if err == ErrIncompleteInput {
			return true
		}
		if err != nil {
			s.poisoned = true
			return false
		}
		total := s.box.frameSize(size)
		if len(s.cipher) < total {
			return true
		}
		frame := make([]byte, size)
		n, _, err := s.box.Decrypt(frame, s.cipher)
		if err != nil {
			s.poisoned = true
			return false
		}
		s.clear = append(s.clear, frame[:n]...)
		s.cipher = s.cipher[total:]
	}
}

// BytesAvailable returns the number of cleartext bytes currently ready to
// emit via Pull.
func (s *DecryptionStream) BytesAvailable() int {
	return len(s.clear)
}

// Pull copies up to min(len(buf), BytesAvailable()) cleartext bytes into
// buf, consuming them, and returns the count copied. It may span the
// concatenated cleartexts of multiple frames.
func (s *DecryptionStream) Pull(buf []byte) int {
	if s.poisoned {
		return 0
	}
	n := copy(buf, s.clear)
	s.clear = s.clear[n:]
	return n
}

// Poisoned reports whether a prior Push detected corrupt or malformed
// data. Once true it never reverts.
func (s *DecryptionStream) Poisoned() bool {
	return s.poisoned
}
