package store

import (
	"crypto/rand"
	"errors"
	"io"
	"io/fs"
	"os"
)

const eraseChunkSize = 1 << 20

// SecureErase overwrites the file at path with random bytes, truncates it to
// zero length and unlinks it. Each overwrite pass is forced to stable storage
// before the next step. If any overwrite step fails the unlink is still
// attempted.
//
// This is best effort only: flash translation layers, copy-on-write
// filesystems, snapshots and backups can all retain recoverable copies of the
// old content regardless of what is written here. Callers must not treat a
// nil return as guaranteed destruction.
func SecureErase(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if info.Size() > 0 {
		if err := overwriteExtent(path, info.Size()); err != nil {
			// Overwrite failed; still remove the file below.
			os.Remove(path)
			return err
		}
	}

	return os.Remove(path)
}

func overwriteExtent(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	chunk := make([]byte, eraseChunkSize)
	var written int64
	for written < size {
		n := int64(len(chunk))
		if remaining := size - written; remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(rand.Reader, chunk[:n]); err != nil {
			return err
		}
		if _, err := f.WriteAt(chunk[:n], written); err != nil {
			return err
		}
		written += n
	}
	if err := f.Sync(); err != nil {
		return err
	}

	if err := f.Truncate(0); err != nil {
		return err
	}
	return f.Sync()
}
