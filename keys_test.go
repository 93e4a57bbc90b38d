package shs

import "testing"

func TestSecretKeySeedRoundTrip(t *testing.T) {
	sk, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey: %s", err)
	}

	reconstituted := SecretKeyFromSeed(sk.Seed())
	if !sk.Equal(reconstituted) {
		t.Fatal("SecretKeyFromSeed(sk.Seed()) did not reproduce the original key")
	}
	if sk.PublicKey() != reconstituted.PublicKey() {
		t.Fatal("reconstituted key has a different public key")
	}
}

func TestSecretKeySeedFromHexRoundTrip(t *testing.T) {
	sk, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey: %s", err)
	}

	seed, err := SecretKeySeedFromHex(sk.Seed().String())
	if err != nil {
		t.Fatalf("SecretKeySeedFromHex: %s", err)
	}
	if seed != sk.Seed() {
		t.Fatal("SecretKeySeedFromHex did not round-trip")
	}
}

func TestSecretKeySeedFromHexErrors(t *testing.T) {
	if _, err := SecretKeySeedFromHex("not hex at all!!"); err == nil {
		t.Error("expected an error for invalid hex")
	}
	if _, err := SecretKeySeedFromHex("aabb"); err == nil {
		t.Error("expected an error for a too-short seed")
	}
}

func TestPublicKeyFromHexRoundTrip(t *testing.T) {
	sk, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey: %s", err)
	}

	pub, err := PublicKeyFromHex(sk.PublicKey().String())
	if err != nil {
		t.Fatalf("PublicKeyFromHex: %s", err)
	}
	if pub != sk.PublicKey() {
		t.Fatal("PublicKeyFromHex did not round-trip")
	}
}

func TestPublicKeyFromHexErrors(t *testing.T) {
	if _, err := PublicKeyFromHex("zz"); err == nil {
		t.Error("expected an error for invalid hex")
	}
	if _, err := PublicKeyFromHex("aabb"); err == nil {
		t.Error("expected an error for a too-short key")
	}
}

func TestTwoGeneratedKeysDiffer(t *testing.T) {
	a, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey: %s", err)
	}
	b, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey: %s", err)
	}
	if a.Equal(b) {
		t.Fatal("two independently generated keys were equal")
	}
}
