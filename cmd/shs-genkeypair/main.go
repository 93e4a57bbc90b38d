package main

import (
	"fmt"
	"log"

	"github.com/inlet-labs/shs"
)

func main() {
	sk, err := shs.GenerateSecretKey()
	if err != nil {
		log.Fatalf("Could not generate keypair: %s", err)
	}
	fmt.Printf("Secret key seed: %s\n", sk)
	fmt.Printf("Public key:      %s\n", sk.PublicKey())
	fmt.Println("Tip:             Keys are printed as hex; the secret key is prefixed with sk-")
}
