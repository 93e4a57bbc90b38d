package main

import (
	"log"
	"net"
	"os"

	"github.com/inlet-labs/shs"
)

// handshakeOverConn drives hs to completion, since shs.Handshake has no
// I/O of its own: the host supplies the little bytesToSend/write/
// bytesToRead/read/readCompleted loop the state machine expects.
func handshakeOverConn(conn net.Conn, hs shs.Handshake) error {
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
			total := 0
			for total < len(in) {
				n, err := conn.Read(in[total:])
				total += n
				if err != nil {
					return err
				}
			}
			if err := hs.ReadCompleted(); err != nil {
				return err
			}
			continue
		}
		break
	}
	return nil
}

func main() {
	if len(os.Args) != 4 {
		log.Fatalf("usage: shs-pingpong-server <IP:port> <server secret key seed hex> <app id>")
	}
	bind := os.Args[1]
	seedHex := os.Args[2]
	appID := shs.AppIDFromString(os.Args[3])

	seed, err := shs.SecretKeySeedFromHex(seedHex)
	if err != nil {
		log.Fatalf("Server: failed to parse secret key seed: %s", err)
	}
	serverKey := shs.SecretKeyFromSeed(seed)
	ctx := shs.Context{AppID: appID, SecretKey: serverKey}

	listener, err := net.Listen("tcp4", bind)
	if err != nil {
		log.Fatalf("Server: could not run server: %s", err)
	}

	conn, err := listener.Accept()
	if err != nil {
		log.Fatalf("Server: failed to accept socket: %s", err)
	}

	hs, err := shs.NewServer(ctx)
	if err != nil {
		log.Fatalf("Server: failed to construct handshake: %s", err)
	}
	if err := handshakeOverConn(conn, hs); err != nil {
		log.Fatalf("Server: handshake I/O failed: %s", err)
	}
	if hs.Failed() {
		log.Fatalf("Server: handshake rejected the client")
	}
	clientPub, _ := hs.PeerPublicKey()
	log.Printf("Server: client's public key is %s", clientPub)

	session, err := hs.Session()
	if err != nil {
		log.Fatalf("Server: %s", err)
	}

	enc := shs.NewEncryptionStream(&session, shs.ProfileCompact)
	dec := shs.NewDecryptionStream(&session, shs.ProfileCompact)

	readFrame := func() []byte {
		probe := make([]byte, 1)
		for dec.BytesAvailable() == 0 {
			n, err := conn.Read(probe)
			if n > 0 && !dec.Push(probe[:n]) {
				log.Fatalf("Server: decryption stream poisoned")
			}
			if err != nil {
				log.Fatalf("Server: failed to read from socket: %s", err)
			}
		}
		out := make([]byte, dec.BytesAvailable())
		dec.Pull(out)
		return out
	}
	writeFrame := func(b []byte) {
		if err := enc.Push(b); err != nil {
			log.Fatalf("Server: failed to seal frame: %s", err)
		}
		out := make([]byte, enc.BytesAvailable())
		enc.Pull(out)
		if _, err := conn.Write(out); err != nil {
			log.Fatalf("Server: failed to write to socket: %s", err)
		}
	}

	packet := readFrame()
	log.Printf("Server: the first received packet is %s", packet)

	writeFrame([]byte("abc def"))
	log.Printf("Server: wrote abc def")

	packet = readFrame()
	log.Printf("Server: the second received packet is %s", packet)

	writeFrame([]byte("ABC DEF MNO PQR"))
	log.Printf("Server: wrote ABC DEF MNO PQR")

	if err := conn.Close(); err != nil {
		log.Fatalf("Server: failed to close socket: %s", err)
	}
}
