package vault

import "errors"

var (
	// ErrNotInitialized means no salt/blob pair exists at the vault path yet.
	ErrNotInitialized = errors.New("vault not initialized")

	// ErrAlreadyInitialized means a salt and blob already exist; initializing
	// again would silently destroy the existing vault.
	ErrAlreadyInitialized = errors.New("vault already initialized")

	// ErrInvalidPassphrase is returned when the derived key fails to
	// authenticate and decode the stored blob. There is no separate password
	// hash: this failure is the definition of a wrong passphrase.
	ErrInvalidPassphrase = errors.New("invalid master passphrase")

	// ErrLocked is returned by operations that require an unlocked session.
	ErrLocked = errors.New("vault is locked")

	// ErrNotFound is returned for unknown credential ids, services, or
	// identity names.
	ErrNotFound = errors.New("record not found")

	// ErrImportFailed wraps any decode or decrypt failure during import.
	// Imports never partially apply.
	ErrImportFailed = errors.New("vault import failed")
)
