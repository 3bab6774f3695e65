package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mkaram/opseckit/auth"
	"github.com/mkaram/opseckit/krypto"
	"github.com/mkaram/opseckit/store"
)

// Session is the locked/unlocked state machine over one on-disk vault.
// A session holds at most one derived key and decrypts the document on
// demand; every mutation re-commits the whole document through an atomic
// replace. The session is not internally thread-safe: a multi-threaded
// caller must serialize access with its own mutex.
type Session struct {
	paths store.Paths
	key   []byte
}

// NewSession binds a session to a vault directory. The directory may not
// exist yet; Initialize creates it.
func NewSession(dir string) *Session {
	return &Session{paths: store.Paths{Dir: dir}}
}

// Paths exposes the on-disk layout, mainly for the CLI and tests.
func (s *Session) Paths() store.Paths { return s.paths }

// Initialized reports whether both the salt and the encrypted blob exist.
func (s *Session) Initialized() bool {
	if _, err := os.Stat(s.paths.SaltPath()); err != nil {
		return false
	}
	if _, err := os.Stat(s.paths.VaultPath()); err != nil {
		return false
	}
	return true
}

// Unlocked reports whether the session currently holds a derived key.
func (s *Session) Unlocked() bool { return s.key != nil }

// Initialize creates a brand-new vault: fresh salt, key derived from the
// passphrase, and an encrypted empty document. The session ends unlocked.
// Valid only when no vault exists at the path yet.
func (s *Session) Initialize(passphrase string) error {
	if s.Initialized() {
		return ErrAlreadyInitialized
	}
	if err := auth.ValidateMasterPassphrase(passphrase); err != nil {
		return err
	}
	if err := s.paths.EnsureDir(); err != nil {
		return err
	}

	salt, err := store.CreateSalt(s.paths.SaltPath())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrAlreadyInitialized
		}
		return fmt.Errorf("create salt: %w", err)
	}

	key, err := krypto.DeriveKey(passphrase, salt)
	if err != nil {
		os.Remove(s.paths.SaltPath())
		return err
	}

	if err := s.saveDocumentWithKey(key, NewDocument()); err != nil {
		// Leave no half-initialized state behind: a salt without a blob
		// would block the next Initialize.
		krypto.Zeroize(key)
		os.Remove(s.paths.SaltPath())
		return err
	}

	s.key = key
	return nil
}

// Unlock derives a key from the stored salt and verifies the passphrase by
// decrypting the persisted blob. There is no other correctness check. On
// failure the session stays locked and the caller may simply try again.
func (s *Session) Unlock(passphrase string) error {
	if !s.Initialized() {
		return ErrNotInitialized
	}

	salt, err := store.ReadSalt(s.paths.SaltPath())
	if err != nil {
		return fmt.Errorf("read salt: %w", err)
	}

	key, err := krypto.DeriveKey(passphrase, salt)
	if err != nil {
		return err
	}

	if _, err := s.loadDocumentWithKey(key); err != nil {
		if errors.Is(err, ErrInvalidPassphrase) {
			// The committed blob may predate an interrupted master-password
			// change; a staged blob for this key completes that change.
			if s.recoverStagedBlob(key) {
				s.key = key
				return nil
			}
			krypto.Zeroize(key)
			return ErrInvalidPassphrase
		}
		krypto.Zeroize(key)
		return err
	}

	s.key = key
	return nil
}

// Lock discards the in-memory key. Calling Lock on an already locked
// session is a no-op.
func (s *Session) Lock() {
	krypto.Zeroize(s.key)
	s.key = nil
}

// Burn destroys the whole store: salt and blob are securely erased and the
// session is locked. Ordinary lock/unlock never touches the files.
func (s *Session) Burn() error {
	s.Lock()
	blobErr := store.SecureErase(s.paths.VaultPath())
	saltErr := store.SecureErase(s.paths.SaltPath())
	stagedErr := store.SecureErase(s.stagedBlobPath())
	if blobErr != nil {
		return blobErr
	}
	if saltErr != nil {
		return saltErr
	}
	return stagedErr
}

// AddCredential stores a credential under an identity name. The id and
// timestamps are assigned here and never change afterwards.
func (s *Session) AddCredential(identityName string, c Credential) (Credential, error) {
	if identityName == "" {
		return Credential{}, errors.New("identity name is required")
	}
	if c.Service == "" {
		return Credential{}, errors.New("service is required")
	}

	doc, err := s.loadDocument()
	if err != nil {
		return Credential{}, err
	}

	id, err := newCredentialID()
	if err != nil {
		return Credential{}, err
	}

	now := time.Now().UTC()
	c.ID = id
	c.Created = now
	c.Modified = now

	doc.Credentials[identityName] = append(doc.Credentials[identityName], c)

	if err := s.saveDocument(doc); err != nil {
		return Credential{}, err
	}
	return c, nil
}

// Credentials returns all credentials stored under an identity name. An
// unknown identity yields an empty slice, matching a vault that simply has
// nothing filed under that name yet.
func (s *Session) Credentials(identityName string) ([]Credential, error) {
	doc, err := s.loadDocument()
	if err != nil {
		return nil, err
	}
	creds := doc.Credentials[identityName]
	out := make([]Credential, len(creds))
	copy(out, creds)
	return out, nil
}

// CredentialByService finds a credential under an identity by service name.
// The match is case-insensitive.
func (s *Session) CredentialByService(identityName, service string) (Credential, error) {
	doc, err := s.loadDocument()
	if err != nil {
		return Credential{}, err
	}
	for _, c := range doc.Credentials[identityName] {
		if strings.EqualFold(c.Service, service) {
			return c, nil
		}
	}
	return Credential{}, fmt.Errorf("%w: no credential for service %q", ErrNotFound, service)
}

// CredentialUpdate carries the mutable credential fields. Nil pointers leave
// the stored value untouched; id and created are immutable by design.
type CredentialUpdate struct {
	Service     *string
	Username    *string
	Password    *string
	Email       *string
	Notes       *string
	ExtraFields map[string]string
}

// UpdateCredential applies updates to the credential with the given id under
// an identity and bumps its modified timestamp.
func (s *Session) UpdateCredential(identityName, credentialID string, u CredentialUpdate) error {
	doc, err := s.loadDocument()
	if err != nil {
		return err
	}

	creds := doc.Credentials[identityName]
	for i := range creds {
		if creds[i].ID != credentialID {
			continue
		}
		applyUpdate(&creds[i], u)
		creds[i].Modified = time.Now().UTC()
		return s.saveDocument(doc)
	}
	return fmt.Errorf("%w: credential %q", ErrNotFound, credentialID)
}

func applyUpdate(c *Credential, u CredentialUpdate) {
	if u.Service != nil {
		c.Service = *u.Service
	}
	if u.Username != nil {
		c.Username = *u.Username
	}
	if u.Password != nil {
		c.Password = *u.Password
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.Notes != nil {
		c.Notes = *u.Notes
	}
	if u.ExtraFields != nil {
		c.ExtraFields = u.ExtraFields
	}
}

// DeleteCredential removes a single credential by id.
func (s *Session) DeleteCredential(identityName, credentialID string) error {
	doc, err := s.loadDocument()
	if err != nil {
		return err
	}

	creds := doc.Credentials[identityName]
	for i := range creds {
		if creds[i].ID != credentialID {
			continue
		}
		doc.Credentials[identityName] = append(creds[:i], creds[i+1:]...)
		return s.saveDocument(doc)
	}
	return fmt.Errorf("%w: credential %q", ErrNotFound, credentialID)
}

// DeleteIdentityCredentials removes every credential filed under an identity
// and returns how many were removed.
func (s *Session) DeleteIdentityCredentials(identityName string) (int, error) {
	doc, err := s.loadDocument()
	if err != nil {
		return 0, err
	}

	creds, ok := doc.Credentials[identityName]
	if !ok {
		return 0, fmt.Errorf("%w: no credentials for identity %q", ErrNotFound, identityName)
	}

	delete(doc.Credentials, identityName)
	if err := s.saveDocument(doc); err != nil {
		return 0, err
	}
	return len(creds), nil
}

// ListIdentities returns the identity names that have credentials, sorted.
func (s *Session) ListIdentities() ([]string, error) {
	doc, err := s.loadDocument()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Credentials))
	for name := range doc.Credentials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CredentialSummary is a credential row without its secret fields.
type CredentialSummary struct {
	ID       string    `json:"id"`
	Service  string    `json:"service"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	Created  time.Time `json:"created"`
}

// ListAllCredentials returns a password-free summary of the whole vault.
func (s *Session) ListAllCredentials() (map[string][]CredentialSummary, error) {
	doc, err := s.loadDocument()
	if err != nil {
		return nil, err
	}

	summary := make(map[string][]CredentialSummary, len(doc.Credentials))
	for name, creds := range doc.Credentials {
		rows := make([]CredentialSummary, len(creds))
		for i, c := range creds {
			rows[i] = CredentialSummary{
				ID:       c.ID,
				Service:  c.Service,
				Username: c.Username,
				Email:    c.Email,
				Created:  c.Created,
			}
		}
		summary[name] = rows
	}
	return summary, nil
}

// Stats summarizes the vault contents.
type Stats struct {
	Created          time.Time `json:"created"`
	Version          string    `json:"version"`
	TotalIdentities  int       `json:"total_identities"`
	TotalCredentials int       `json:"total_credentials"`
	UniqueServices   int       `json:"unique_services"`
	Services         []string  `json:"services"`
}

// Stats computes vault statistics. Service names are lowercased before
// counting so that "Reddit" and "reddit" are one service.
func (s *Session) Stats() (Stats, error) {
	doc, err := s.loadDocument()
	if err != nil {
		return Stats{}, err
	}

	var total int
	services := make(map[string]struct{})
	for _, creds := range doc.Credentials {
		total += len(creds)
		for _, c := range creds {
			services[strings.ToLower(c.Service)] = struct{}{}
		}
	}

	names := make([]string, 0, len(services))
	for svc := range services {
		names = append(names, svc)
	}
	sort.Strings(names)

	return Stats{
		Created:          doc.Created,
		Version:          doc.Version,
		TotalIdentities:  len(doc.Credentials),
		TotalCredentials: total,
		UniqueServices:   len(names),
		Services:         names,
	}, nil
}

// ChangeMasterPassphrase re-encrypts the vault under a key derived from a
// brand-new salt. The current passphrase is verified through the normal
// unlock check first. Commit order: the re-encrypted blob is staged under a
// sibling name, the salt file is atomically replaced, then the staged blob
// is renamed over the live one. If the process dies between the last two
// steps, Unlock with the new passphrase finds the staged blob and completes
// the commit; until the salt is replaced, the old pair remains fully valid.
func (s *Session) ChangeMasterPassphrase(current, next string) error {
	if !s.Initialized() {
		return ErrNotInitialized
	}
	if err := auth.ValidateMasterPassphrase(next); err != nil {
		return err
	}

	oldSalt, err := store.ReadSalt(s.paths.SaltPath())
	if err != nil {
		return fmt.Errorf("read salt: %w", err)
	}
	oldKey, err := krypto.DeriveKey(current, oldSalt)
	if err != nil {
		return err
	}
	defer krypto.Zeroize(oldKey)

	doc, err := s.loadDocumentWithKey(oldKey)
	if err != nil {
		return err
	}

	newSalt, err := krypto.NewRandomSalt()
	if err != nil {
		return err
	}
	newKey, err := krypto.DeriveKey(next, newSalt)
	if err != nil {
		return err
	}

	blob, err := sealDocument(newKey, doc)
	if err != nil {
		krypto.Zeroize(newKey)
		return err
	}

	staged := s.stagedBlobPath()
	if err := store.SaveBlob(staged, blob); err != nil {
		krypto.Zeroize(newKey)
		return err
	}
	if err := store.SaveBlob(s.paths.SaltPath(), newSalt); err != nil {
		krypto.Zeroize(newKey)
		os.Remove(staged)
		return err
	}
	if err := os.Rename(staged, s.paths.VaultPath()); err != nil {
		// Roll the salt back so the old passphrase keeps working.
		krypto.Zeroize(newKey)
		if rb := store.SaveBlob(s.paths.SaltPath(), oldSalt); rb != nil {
			return fmt.Errorf("commit new blob: %w (salt rollback also failed: %v)", err, rb)
		}
		os.Remove(staged)
		return fmt.Errorf("commit new blob: %w", err)
	}

	s.Lock()
	s.key = newKey
	return nil
}

func (s *Session) stagedBlobPath() string {
	return s.paths.VaultPath() + ".new"
}

// recoverStagedBlob finishes a master-password change that was interrupted
// after the salt replace. It returns true when the staged blob opens under
// key and has been promoted to the live blob.
func (s *Session) recoverStagedBlob(key []byte) bool {
	staged := s.stagedBlobPath()
	blob, err := store.LoadBlob(staged)
	if err != nil {
		return false
	}
	if _, err := openDocument(key, blob); err != nil {
		return false
	}
	return os.Rename(staged, s.paths.VaultPath()) == nil
}

func (s *Session) loadDocument() (*Document, error) {
	if !s.Unlocked() {
		return nil, ErrLocked
	}
	return s.loadDocumentWithKey(s.key)
}

func (s *Session) loadDocumentWithKey(key []byte) (*Document, error) {
	blob, err := store.LoadBlob(s.paths.VaultPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("read vault blob: %w", err)
	}
	return openDocument(key, blob)
}

func (s *Session) saveDocument(doc *Document) error {
	if !s.Unlocked() {
		return ErrLocked
	}
	return s.saveDocumentWithKey(s.key, doc)
}

func (s *Session) saveDocumentWithKey(key []byte, doc *Document) error {
	blob, err := sealDocument(key, doc)
	if err != nil {
		return err
	}
	return store.SaveBlob(s.paths.VaultPath(), blob)
}

// openDocument is the sole passphrase-correctness check: the key is right
// exactly when the blob authenticates and decodes into a document.
func openDocument(key, blob []byte) (*Document, error) {
	plaintext, err := krypto.Open(key, blob)
	if err != nil {
		return nil, ErrInvalidPassphrase
	}

	var doc Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, ErrInvalidPassphrase
	}
	doc.normalize()
	return &doc, nil
}

func sealDocument(key []byte, doc *Document) ([]byte, error) {
	plaintext, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode vault document: %w", err)
	}
	return krypto.Seal(key, plaintext)
}
