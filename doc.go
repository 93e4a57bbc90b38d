/* Package shs implements the Secret Handshake mutual-authentication
key-agreement protocol (Tarr et al.) and the box-stream framed-encryption
channel that runs over the session keys it produces.

Usage instructions
------------------

The general implementor's instructions go as follows:

* Generate a long-term SecretKey for your side, persisting the seed to disk
  if you want to, so you can later reconstitute it with SecretKeyFromSeed.
* Distribute, however you see fit, the public key of the server to its
  clients. Clients need to know it before they can dial.
* Agree with your peer on an AppID (via AppIDFromString or a raw 32-byte
  value), shared out of band.
* Construct a Server with NewServer, or a Client with NewClient and the
  server's public key.
* Drive the handshake with BytesToSend / SendCompleted and BytesToRead /
  ReadCompleted, exchanging exactly the four wire messages described below,
  over whatever transport you like: this package never touches a socket.
* Once Finished returns true, call Session to obtain the derived
  encryption/decryption keys and nonces, and use them to construct an
  EncryptionStream and a DecryptionStream (or a CryptoBox, for
  single-message framing) to carry on an authenticated, confidential
  conversation with the peer.

Congratulations, at this point you have an authenticated, encrypted
channel between two peers who share nothing but an AppID and the server's
long-term public key.

Goals and motivations
----------------------

This package does not open sockets, retry connections, or manage identity
directories: it is a codec and a state machine, driven entirely by a host
that supplies I/O. That keeps it usable over any transport (TCP, a Unix
pipe, an in-memory test harness) and trivially testable without a network.

Technical / compatibility information
--------------------------------------

The four-message handshake and its key derivation follow the Secret
Handshake design described at
https://github.com/auditdrivencrypto/secret-handshake and implemented by
the Scuttlebutt community's `secret-handshake` and `secretstream`
packages. Two framing profiles are supported: a compact profile with 18
bytes of overhead per frame, and a box-stream-compatible profile whose
34 bytes of overhead keep the frame's plaintext length and body MAC behind
their own secretbox, at the cost of an extra secretbox per frame.

Any deviations from those references, or interoperability problems with
implementations that follow them, are bugs and should be reported.

Three example programs (a key generator and a ping-pong server/client
pair), and a small chat-style CLI, are included in the cmd/ directory of
this package.
*/
package shs
