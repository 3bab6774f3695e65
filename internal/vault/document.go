package vault

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// documentVersion tags the serialized document layout.
const documentVersion = "1.0"

// Credential is a single stored service credential. The JSON field names are
// the on-disk (pre-encryption) wire format and must stay stable.
type Credential struct {
	ID          string            `json:"id"`
	Service     string            `json:"service"`
	Username    string            `json:"username,omitempty"`
	Password    string            `json:"password,omitempty"`
	Email       string            `json:"email,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	ExtraFields map[string]string `json:"extra_fields,omitempty"`
	Created     time.Time         `json:"created"`
	Modified    time.Time         `json:"modified"`
}

// Document is the plaintext logical content of the vault. It exists only
// transiently in memory between decrypt and re-encrypt; it is never written
// to disk unencrypted.
type Document struct {
	Created     time.Time               `json:"created"`
	Version     string                  `json:"version"`
	Credentials map[string][]Credential `json:"credentials"`
}

// NewDocument returns an empty vault document.
func NewDocument() *Document {
	return &Document{
		Created:     time.Now().UTC(),
		Version:     documentVersion,
		Credentials: make(map[string][]Credential),
	}
}

// normalize repairs a decoded document so lookups never hit a nil map.
func (d *Document) normalize() {
	if d.Credentials == nil {
		d.Credentials = make(map[string][]Credential)
	}
}

// newCredentialID returns a random 16-hex-char id, unique across the whole
// document for any practical vault size.
func newCredentialID() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate credential id: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
