package identity

import (
	"time"

	"github.com/mkaram/opseckit/internal/passgen"
)

// Note is a timestamped free-form annotation on an identity.
type Note struct {
	Text  string    `json:"text"`
	Added time.Time `json:"added"`
}

// Identity is a named pseudonymous profile. Rotation appends superseded
// aliases and passwords to the history lists instead of discarding them;
// only Burn removes a record outright.
type Identity struct {
	Name        string     `json:"name"`
	Purpose     string     `json:"purpose"`
	Alias       string     `json:"alias"`
	EmailPrefix string     `json:"email_prefix"`
	Created     time.Time  `json:"created"`
	LastUsed    *time.Time `json:"last_used"`
	UseCount    int        `json:"use_count"`
	AutoRotate  bool       `json:"auto_rotate"`
	Notes       []Note     `json:"notes"`

	Password         string            `json:"password,omitempty"`
	PasswordStrength *passgen.Strength `json:"password_strength,omitempty"`
	Passphrase       string            `json:"passphrase,omitempty"`

	LastRotated           *time.Time `json:"last_rotated,omitempty"`
	PreviousAliases       []string   `json:"previous_aliases,omitempty"`
	PreviousPasswords     []string   `json:"previous_passwords,omitempty"`
	RotatedPasswordsCount int        `json:"rotated_passwords_count,omitempty"`
	PasswordRegenerated   *time.Time `json:"password_regenerated,omitempty"`
}

// clone returns a deep copy so callers cannot mutate the stored record.
func (id *Identity) clone() *Identity {
	out := *id
	if id.LastUsed != nil {
		t := *id.LastUsed
		out.LastUsed = &t
	}
	if id.LastRotated != nil {
		t := *id.LastRotated
		out.LastRotated = &t
	}
	if id.PasswordRegenerated != nil {
		t := *id.PasswordRegenerated
		out.PasswordRegenerated = &t
	}
	if id.PasswordStrength != nil {
		s := *id.PasswordStrength
		out.PasswordStrength = &s
	}
	out.Notes = append([]Note(nil), id.Notes...)
	out.PreviousAliases = append([]string(nil), id.PreviousAliases...)
	out.PreviousPasswords = append([]string(nil), id.PreviousPasswords...)
	return &out
}
