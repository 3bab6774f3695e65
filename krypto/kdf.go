package krypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KDFIterations is the fixed PBKDF2 iteration count. It is deliberately
	// not configurable so that a vault created on one machine unlocks on any
	// other. 600k iterations of HMAC-SHA256 follows the OWASP 2023 guidance.
	KDFIterations = 600_000

	// SaltLen is the enforced vault salt length in bytes.
	SaltLen = 32

	// KeyLen is the derived symmetric key length in bytes (AES-256).
	KeyLen = 32
)

// DeriveKey stretches a master passphrase into a 256-bit vault key using
// PBKDF2-HMAC-SHA256. Same passphrase and salt always produce the same key.
// Derivation itself cannot tell a wrong passphrase from a right one; only
// an authenticated decrypt of the vault blob can.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("salt must be %d bytes", SaltLen)
	}
	return pbkdf2.Key([]byte(passphrase), salt, KDFIterations, KeyLen, sha256.New), nil
}

// NewRandomSalt returns SaltLen bytes of cryptographically secure randomness.
func NewRandomSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Zeroize overwrites sensitive byte slices in place to reduce their lifetime
// in memory.
func Zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
