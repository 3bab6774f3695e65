package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/mkaram/opseckit/internal/config"
	"github.com/mkaram/opseckit/krypto"
	"github.com/mkaram/opseckit/store"
)

// EncryptionMode states whether the identities file is protected at rest.
type EncryptionMode string

const (
	// EncryptionNone means the store writes plaintext JSON. This is a
	// degraded mode; callers should surface it to the operator.
	EncryptionNone EncryptionMode = "none"
	// EncryptionConfigured means a key is present and the file is sealed
	// with the same authenticated cipher as the vault blob.
	EncryptionConfigured EncryptionMode = "configured"
)

var hkdfInfo = []byte("identities-key-v1")

// Store persists the identity map, encrypted when a secret is configured.
type Store struct {
	path   string
	key    []byte // nil in EncryptionNone
	legacy []byte // fallback decrypt key, may be nil
	logger *log.Logger
}

// Status reports the store's at-rest protection so callers can warn loudly
// about plaintext mode instead of discovering it after a disk forensics
// exercise.
type Status struct {
	Path   string
	Mode   EncryptionMode
	Exists bool
}

// NewStore builds an identities store at path. The primary key is derived
// from cfg.Secret, the fallback key from cfg.LegacySecret; with neither
// configured the store runs in plaintext mode unless EnforceEncryption makes
// that a hard error.
func NewStore(path string, cfg config.IdentitiesConfig, logger *log.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}

	if cfg.Secret != "" {
		key, err := krypto.HKDFSHA256([]byte(cfg.Secret), nil, hkdfInfo, krypto.KeyLen)
		if err != nil {
			return nil, fmt.Errorf("derive identities key: %w", err)
		}
		s.key = key
	}
	if cfg.LegacySecret != "" {
		key, err := krypto.HKDFSHA256([]byte(cfg.LegacySecret), nil, hkdfInfo, krypto.KeyLen)
		if err != nil {
			return nil, fmt.Errorf("derive legacy identities key: %w", err)
		}
		if s.key == nil {
			s.key = key
		} else {
			s.legacy = key
		}
	}

	if cfg.EnforceEncryption && s.key == nil {
		return nil, errors.New("encryption enforced but no identities secret configured")
	}
	if s.key == nil && logger != nil {
		logger.Printf("identities store at %s has no key configured; records will be stored as plaintext JSON", path)
	}
	return s, nil
}

// Status returns the current at-rest protection state.
func (s *Store) Status() Status {
	st := Status{Path: s.path, Mode: EncryptionNone}
	if s.key != nil {
		st.Mode = EncryptionConfigured
	}
	if _, err := os.Stat(s.path); err == nil {
		st.Exists = true
	}
	return st
}

// decryptCandidate is one strategy for turning file bytes into the identity
// map. Candidates are pure: they either decode fully or fail, and the load
// path tries them strictly in order.
type decryptCandidate struct {
	name string
	open func(data []byte) (map[string]*Identity, error)
}

func (s *Store) candidates() []decryptCandidate {
	var out []decryptCandidate
	if s.key != nil {
		out = append(out, decryptCandidate{"configured-key", s.openWithKey(s.key)})
	}
	if s.legacy != nil {
		out = append(out, decryptCandidate{"legacy-key", s.openWithKey(s.legacy)})
	}
	out = append(out, decryptCandidate{"plaintext", openPlaintext})
	return out
}

func (s *Store) openWithKey(key []byte) func([]byte) (map[string]*Identity, error) {
	return func(data []byte) (map[string]*Identity, error) {
		plaintext, err := krypto.Open(key, data)
		if err != nil {
			return nil, err
		}
		return decodeIdentities(plaintext)
	}
}

func openPlaintext(data []byte) (map[string]*Identity, error) {
	return decodeIdentities(data)
}

func decodeIdentities(data []byte) (map[string]*Identity, error) {
	identities := make(map[string]*Identity)
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, err
	}
	return identities, nil
}

// Load reads the identity map. A missing file is an empty store. Stored
// data is tried against each decrypt candidate in order, so a store written
// before encryption was configured still loads (and is re-sealed on the
// next Save).
func (s *Store) Load() (map[string]*Identity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]*Identity), nil
		}
		return nil, fmt.Errorf("read identities: %w", err)
	}

	var lastErr error
	for _, cand := range s.candidates() {
		identities, err := cand.open(data)
		if err == nil {
			return identities, nil
		}
		lastErr = fmt.Errorf("%s: %w", cand.name, err)
	}
	return nil, fmt.Errorf("decode identities: %w", lastErr)
}

// Save writes the identity map atomically, sealed when a key is configured.
func (s *Store) Save(identities map[string]*Identity) error {
	data, err := json.MarshalIndent(identities, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identities: %w", err)
	}

	if s.key != nil {
		sealed, err := krypto.Seal(s.key, data)
		if err != nil {
			return err
		}
		data = sealed
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create identities directory: %w", err)
	}
	return store.SaveBlob(s.path, data)
}

// Erase securely destroys the identities file and any stale temp files the
// atomic writer may have left behind. Best effort by nature.
func (s *Store) Erase() error {
	dir := filepath.Dir(s.path)
	base := filepath.Base(s.path)
	if matches, err := filepath.Glob(filepath.Join(dir, base+"-*.tmp")); err == nil {
		for _, m := range matches {
			if err := store.SecureErase(m); err != nil && s.logger != nil {
				s.logger.Printf("secure erase of %s failed: %v", m, err)
			}
		}
	}
	return store.SecureErase(s.path)
}
