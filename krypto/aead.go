package krypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const gcmNonceSize = 12

// ErrAuthFailed signals that a blob was sealed under a different key or was
// tampered with. It is the only way a wrong passphrase manifests.
var ErrAuthFailed = errors.New("ciphertext authentication failed")

// Seal encrypts plaintext with AES-256-GCM under key and returns a single
// opaque blob of nonce||ciphertext||tag. The nonce is fresh randomness per
// call, so sealing the same plaintext twice yields different blobs.
func Seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal. A wrong key or any modification of
// the blob fails with ErrAuthFailed, never with garbled plaintext.
func Open(key, blob []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(blob) <= gcmNonceSize {
		return nil, fmt.Errorf("%w: blob too short", ErrAuthFailed)
	}

	nonce := blob[:gcmNonceSize]
	ciphertext := blob[gcmNonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("aes-gcm requires a %d-byte key", KeyLen)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
