package store

import (
	"fmt"
	"os"

	"github.com/mkaram/opseckit/krypto"
)

// CreateSalt generates a fresh vault salt and writes it to path. The file is
// opened with O_EXCL so that two processes initializing the same vault path
// cannot race to produce two different salts: the second creator fails with
// fs.ErrExist instead of silently overwriting, which would invalidate every
// key derived from the first salt.
func CreateSalt(path string) ([]byte, error) {
	salt, err := krypto.NewRandomSalt()
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}

	if _, err := f.Write(salt); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write salt: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("sync salt: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close salt: %w", err)
	}

	return salt, nil
}

// ReadSalt returns the exact stored salt bytes. It never regenerates: a salt
// that silently changed would make the vault permanently undecryptable.
func ReadSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(salt) != krypto.SaltLen {
		return nil, fmt.Errorf("salt file is %d bytes, want %d", len(salt), krypto.SaltLen)
	}
	return salt, nil
}
