package main

import (
	"log"
	"net"
	"os"

	"github.com/inlet-labs/shs"
)

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
	if len(os.Args) != 5 {
		log.Fatalf("usage: shs-pingpong-client <IP:port> <client secret key seed hex> <server public key hex> <app id>")
	}
	connect := os.Args[1]
	seedHex := os.Args[2]
	serverPubHex := os.Args[3]
	appID := shs.AppIDFromString(os.Args[4])

	seed, err := shs.SecretKeySeedFromHex(seedHex)
	if err != nil {
		log.Fatalf("Client: failed to parse client secret key seed: %s", err)
	}
	clientKey := shs.SecretKeyFromSeed(seed)
	serverPub, err := shs.PublicKeyFromHex(serverPubHex)
	if err != nil {
		log.Fatalf("Client: failed to parse server public key: %s", err)
	}
	ctx := shs.Context{AppID: appID, SecretKey: clientKey}

	conn, err := net.Dial("tcp4", connect)
	if err != nil {
		log.Fatalf("Client: failed to connect to socket: %s", err)
	}

	hs, err := shs.NewClient(ctx, serverPub)
	if err != nil {
		log.Fatalf("Client: failed to construct handshake: %s", err)
	}
	if err := handshakeOverConn(conn, hs); err != nil {
		log.Fatalf("Client: handshake I/O failed: %s", err)
	}
	if hs.Failed() {
		log.Fatalf("Client: handshake failed; wrong server public key?")
	}

	session, err := hs.Session()
	if err != nil {
		log.Fatalf("Client: %s", err)
	}

	enc := shs.NewEncryptionStream(&session, shs.ProfileCompact)
	dec := shs.NewDecryptionStream(&session, shs.ProfileCompact)

	readFrame := func() []byte {
		probe := make([]byte, 1)
		for dec.BytesAvailable() == 0 {
			n, err := conn.Read(probe)
			if n > 0 && !dec.Push(probe[:n]) {
				log.Fatalf("Client: decryption stream poisoned")
			}
			if err != nil {
				log.Fatalf("Client: failed to read from socket: %s", err)
			}
		}
		out := make([]byte, dec.BytesAvailable())
		dec.Pull(out)
		return out
	}
	writeFrame := func(b []byte) {
		if err := enc.Push(b); err != nil {
			log.Fatalf("Client: failed to seal frame: %s", err)
		}
		out := make([]byte, enc.BytesAvailable())
		enc.Pull(out)
		if _, err := conn.Write(out); err != nil {
			log.Fatalf("Client: failed to write to socket: %s", err)
		}
	}

	writeFrame([]byte("ghi jkl"))
	log.Printf("Client: wrote ghi jkl")

	packet := readFrame()
	log.Printf("Client: the first received packet is %s", packet)

	writeFrame([]byte("GHI JKL STU VWX"))
	log.Printf("Client: wrote GHI JKL STU VWX")

	packet = readFrame()
	log.Printf("Client: the second received packet is %s", packet)

	if err := conn.Close(); err != nil {
		log.Fatalf("Client: failed to close socket: %s", err)
	}
}
