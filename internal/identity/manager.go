package identity

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mkaram/opseckit/internal/passgen"
)

// ErrNotFound is returned for unknown identity names.
var ErrNotFound = errors.New("identity not found")

// Manager owns the identity map and its persistence. Every mutation writes
// the whole map back through the store's atomic save.
type Manager struct {
	mu         sync.Mutex
	store      *Store
	identities map[string]*Identity
}

// NewManager loads the identity map from the store.
func NewManager(store *Store) (*Manager, error) {
	identities, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Manager{store: store, identities: identities}, nil
}

// StoreStatus exposes the backing store's at-rest protection state.
func (m *Manager) StoreStatus() Status {
	return m.store.Status()
}

// CreateOptions controls identity creation. The zero value gets sensible
// defaults applied: auto-rotation on, a generated 20-character password, no
// passphrase.
type CreateOptions struct {
	Purpose            string
	AutoRotate         *bool
	GeneratePassword   *bool
	PasswordLength     int
	GeneratePassphrase bool
	PassphraseWords    int
}

// Create builds a new identity with a generated alias and email prefix.
// Creating a name that already exists replaces the old record.
func (m *Manager) Create(name string, opts CreateOptions) (*Identity, error) {
	if name == "" {
		return nil, errors.New("identity name is required")
	}

	alias, err := GenerateAlias(StyleWordCombo)
	if err != nil {
		return nil, err
	}
	emailPrefix, err := GenerateEmailPrefix()
	if err != nil {
		return nil, err
	}

	autoRotate := true
	if opts.AutoRotate != nil {
		autoRotate = *opts.AutoRotate
	}

	id := &Identity{
		Name:        name,
		Purpose:     opts.Purpose,
		Alias:       alias,
		EmailPrefix: emailPrefix,
		Created:     time.Now().UTC(),
		AutoRotate:  autoRotate,
		Notes:       []Note{},
	}

	generatePassword := true
	if opts.GeneratePassword != nil {
		generatePassword = *opts.GeneratePassword
	}
	if generatePassword {
		length := opts.PasswordLength
		if length <= 0 {
			length = 20
		}
		pwOpts := passgen.DefaultOptions()
		pwOpts.Length = length
		password, err := passgen.Password(pwOpts)
		if err != nil {
			return nil, err
		}
		strength := passgen.Rate(password)
		id.Password = password
		id.PasswordStrength = &strength
	}
	if opts.GeneratePassphrase {
		passphrase, err := passgen.Passphrase(opts.PassphraseWords, "-", false)
		if err != nil {
			return nil, err
		}
		id.Passphrase = passphrase
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[name] = id
	if err := m.store.Save(m.identities); err != nil {
		return nil, err
	}
	return id.clone(), nil
}

// Get returns an identity by name. With incrementUse the read is counted:
// last_used is stamped and use_count bumped, and the map is persisted. This
// is the only path that ever increases use_count.
func (m *Manager) Get(name string, incrementUse bool) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if incrementUse {
		now := time.Now().UTC()
		id.LastUsed = &now
		id.UseCount++
		if err := m.store.Save(m.identities); err != nil {
			return nil, err
		}
	}
	return id.clone(), nil
}

// Rotate replaces the alias and email prefix, appending the superseded alias
// to the history. With rotatePassword and a password present, a new password
// is generated and the old one appended to previous_passwords. A passphrase,
// if present, is regenerated too. Rotation never deletes history and never
// touches use_count.
func (m *Manager) Rotate(name string, rotatePassword bool) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	alias, err := GenerateAlias(StyleWordCombo)
	if err != nil {
		return nil, err
	}
	emailPrefix, err := GenerateEmailPrefix()
	if err != nil {
		return nil, err
	}

	id.PreviousAliases = append(id.PreviousAliases, id.Alias)
	id.Alias = alias
	id.EmailPrefix = emailPrefix
	now := time.Now().UTC()
	id.LastRotated = &now

	if rotatePassword && id.Password != "" {
		password, err := passgen.Password(passgen.DefaultOptions())
		if err != nil {
			return nil, err
		}
		id.PreviousPasswords = append(id.PreviousPasswords, id.Password)
		id.Password = password
		strength := passgen.Rate(password)
		id.PasswordStrength = &strength
		id.RotatedPasswordsCount++
	}
	if id.Passphrase != "" {
		passphrase, err := passgen.Passphrase(0, "-", false)
		if err != nil {
			return nil, err
		}
		id.Passphrase = passphrase
	}

	if err := m.store.Save(m.identities); err != nil {
		return nil, err
	}
	return id.clone(), nil
}

// RegeneratePassword replaces the password without rotating the alias.
func (m *Manager) RegeneratePassword(name string, length int) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if length <= 0 {
		length = 20
	}
	pwOpts := passgen.DefaultOptions()
	pwOpts.Length = length
	password, err := passgen.Password(pwOpts)
	if err != nil {
		return nil, err
	}

	id.Password = password
	strength := passgen.Rate(password)
	id.PasswordStrength = &strength
	now := time.Now().UTC()
	id.PasswordRegenerated = &now

	if err := m.store.Save(m.identities); err != nil {
		return nil, err
	}
	return id.clone(), nil
}

// AddPassphrase attaches a generated passphrase to an identity.
func (m *Manager) AddPassphrase(name string, words int) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	passphrase, err := passgen.Passphrase(words, "-", false)
	if err != nil {
		return nil, err
	}
	id.Passphrase = passphrase

	if err := m.store.Save(m.identities); err != nil {
		return nil, err
	}
	return id.clone(), nil
}

// AddNote appends a timestamped note to an identity.
func (m *Manager) AddNote(name, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	id.Notes = append(id.Notes, Note{Text: text, Added: time.Now().UTC()})
	return m.store.Save(m.identities)
}

// UpdatePurpose replaces the identity's purpose text.
func (m *Manager) UpdatePurpose(name, purpose string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	id.Purpose = purpose
	return m.store.Save(m.identities)
}

// Burn hard-deletes an identity: the record is dropped, the old store file
// (which still contains it) is securely erased along with any stale temp
// files, and the remaining map is written fresh. Erase failures are
// best-effort and do not block the rewrite.
func (m *Manager) Burn(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.identities[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(m.identities, name)

	_ = m.store.Erase()
	return m.store.Save(m.identities)
}

// List returns all identity names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.identities))
	for name := range m.identities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IdentitySummary is the per-identity slice of Stats.
type IdentitySummary struct {
	UseCount      int        `json:"use_count"`
	Created       time.Time  `json:"created"`
	LastUsed      *time.Time `json:"last_used"`
	HasPassword   bool       `json:"has_password"`
	HasPassphrase bool       `json:"has_passphrase"`
}

// ManagerStats aggregates usage over all identities.
type ManagerStats struct {
	Total      int                        `json:"total"`
	TotalUses  int                        `json:"total_uses"`
	Identities map[string]IdentitySummary `json:"identities"`
}

// Stats summarizes the identity store without exposing any secrets.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := ManagerStats{
		Total:      len(m.identities),
		Identities: make(map[string]IdentitySummary, len(m.identities)),
	}
	for name, id := range m.identities {
		stats.TotalUses += id.UseCount
		stats.Identities[name] = IdentitySummary{
			UseCount:      id.UseCount,
			Created:       id.Created,
			LastUsed:      id.LastUsed,
			HasPassword:   id.Password != "",
			HasPassphrase: id.Passphrase != "",
		}
	}
	return stats
}
