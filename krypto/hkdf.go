package krypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
)

// HKDFSHA256 derives key material using HKDF (RFC 5869) with SHA-256.
// It is used to turn an operator-supplied secret string into a fixed-length
// key for the identities store, keeping that key independent of the vault's
// passphrase-derived key.
func HKDFSHA256(secret, salt, info []byte, outLen int) ([]byte, error) {
	if outLen <= 0 || outLen > 255*sha256.Size {
		return nil, errors.New("invalid hkdf output length")
	}

	if len(salt) == 0 {
		salt = make([]byte, sha256.Size)
	}
	extract := hmac.New(sha256.New, salt)
	extract.Write(secret)
	prk := extract.Sum(nil)

	var out, block []byte
	for counter := byte(1); len(out) < outLen; counter++ {
		expand := hmac.New(sha256.New, prk)
		expand.Write(block)
		expand.Write(info)
		expand.Write([]byte{counter})
		block = expand.Sum(nil)
		out = append(out, block...)
	}
	return out[:outLen], nil
}
