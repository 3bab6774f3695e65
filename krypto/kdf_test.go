package krypto

import (
	"bytes"
	"testing"
)

func TestDeriveKeyIsDeterministic(t *testing.T) {
	salt, err := NewRandomSalt()
	if err != nil {
		t.Fatalf("NewRandomSalt: %v", err)
	}

	k1, err := DeriveKey("correct-horse-battery", salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := DeriveKey("correct-horse-battery", salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}

	if !bytes.Equal(k1, k2) {
		t.Fatal("same passphrase and salt produced different keys")
	}
	if len(k1) != KeyLen {
		t.Fatalf("key length = %d, want %d", len(k1), KeyLen)
	}
}

func TestDeriveKeyDiffersAcrossSalts(t *testing.T) {
	s1, err := NewRandomSalt()
	if err != nil {
		t.Fatalf("NewRandomSalt: %v", err)
	}
	s2, err := NewRandomSalt()
	if err != nil {
		t.Fatalf("NewRandomSalt: %v", err)
	}
	if bytes.Equal(s1, s2) {
		t.Fatal("two random salts are identical")
	}

	k1, err := DeriveKey("correct-horse-battery", s1)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := DeriveKey("correct-horse-battery", s2)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if bytes.Equal(k1, k2) {
		t.Fatal("different salts produced the same key")
	}
}

func TestDeriveKeyRejectsMalformedInputs(t *testing.T) {
	if _, err := DeriveKey("", make([]byte, SaltLen)); err == nil {
		t.Fatal("expected error for empty passphrase")
	}
	if _, err := DeriveKey("passphrase", make([]byte, 16)); err == nil {
		t.Fatal("expected error for short salt")
	}
}

func TestZeroize(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	Zeroize(buf)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
}
