package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveBlob writes data to path through a sibling temporary file: write,
// chmod 0600, fsync, close, then atomically rename over the destination.
// A crash at any point leaves either the previous committed file or the new
// one on disk, never a partial write.
func SaveBlob(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	return nil
}

// LoadBlob reads the committed blob at path. Absence of the file surfaces as
// fs.ErrNotExist so callers can distinguish "not initialized" from a decrypt
// failure.
func LoadBlob(path string) ([]byte, error) {
	return os.ReadFile(path)
}
