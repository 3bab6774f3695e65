package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	saltFilename       = "vault.salt"
	vaultFilename      = "vault.enc"
	identitiesFilename = "identities.json"
)

// Paths locates vault artifacts inside a caller-supplied directory.
type Paths struct {
	Dir string
}

// SaltPath resolves the raw 32-byte salt file.
func (p Paths) SaltPath() string {
	return filepath.Join(p.Dir, saltFilename)
}

// VaultPath resolves the encrypted vault blob.
func (p Paths) VaultPath() string {
	return filepath.Join(p.Dir, vaultFilename)
}

// IdentitiesPath resolves the identities store file.
func (p Paths) IdentitiesPath() string {
	return filepath.Join(p.Dir, identitiesFilename)
}

// EnsureDir creates the vault directory with owner-only permissions.
func (p Paths) EnsureDir() error {
	if p.Dir == "" {
		return errors.New("vault directory not specified")
	}
	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}
	return nil
}
