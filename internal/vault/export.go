package vault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mkaram/opseckit/krypto"
	"github.com/mkaram/opseckit/store"
)

// exportEnvelope is the password-protected export format: a JSON object
// carrying its own base64 salt plus the base64 ciphertext of the document.
// Its presence (versus raw ciphertext bytes) is how Import tells the two
// export formats apart without guessing from content.
type exportEnvelope struct {
	Salt string `json:"salt"`
	Data string `json:"data"`
}

// Export writes the vault document to outputPath. With a non-empty
// exportPassword the payload gets a fresh, independent salt and key — the
// live vault's salt and key are never reused for an export that leaves the
// machine. With an empty password the raw blob is re-encrypted under the
// live session key and is only importable into a vault context holding that
// same key.
func (s *Session) Export(outputPath, exportPassword string) error {
	doc, err := s.loadDocument()
	if err != nil {
		return err
	}

	if exportPassword == "" {
		blob, err := sealDocument(s.key, doc)
		if err != nil {
			return err
		}
		return store.SaveBlob(outputPath, blob)
	}

	salt, err := krypto.NewRandomSalt()
	if err != nil {
		return err
	}
	key, err := krypto.DeriveKey(exportPassword, salt)
	if err != nil {
		return err
	}
	defer krypto.Zeroize(key)

	blob, err := sealDocument(key, doc)
	if err != nil {
		return err
	}

	env := exportEnvelope{
		Salt: base64.StdEncoding.EncodeToString(salt),
		Data: base64.StdEncoding.EncodeToString(blob),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode export envelope: %w", err)
	}
	return store.SaveBlob(outputPath, data)
}

// Import reads an export file and either replaces the current document
// wholesale (merge=false) or appends the imported credential lists after the
// existing ones per identity (merge=true). Merging never deduplicates by id
// or service; duplicate entries are left for the operator to curate. Any
// decode or decrypt failure surfaces as ErrImportFailed and nothing is
// applied.
func (s *Session) Import(path, importPassword string, merge bool) error {
	if !s.Unlocked() {
		return ErrLocked
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	imported, err := s.decodeImport(content, importPassword)
	if err != nil {
		return err
	}

	if !merge {
		return s.saveDocument(imported)
	}

	doc, err := s.loadDocument()
	if err != nil {
		return err
	}
	for name, creds := range imported.Credentials {
		doc.Credentials[name] = append(doc.Credentials[name], creds...)
	}
	return s.saveDocument(doc)
}

func (s *Session) decodeImport(content []byte, importPassword string) (*Document, error) {
	var env exportEnvelope
	if err := json.Unmarshal(content, &env); err == nil && env.Salt != "" && env.Data != "" {
		if importPassword == "" {
			return nil, fmt.Errorf("%w: import password required for this export file", ErrImportFailed)
		}

		salt, err := base64.StdEncoding.DecodeString(env.Salt)
		if err != nil {
			return nil, fmt.Errorf("%w: decode salt: %v", ErrImportFailed, err)
		}
		blob, err := base64.StdEncoding.DecodeString(env.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: decode payload: %v", ErrImportFailed, err)
		}
		key, err := krypto.DeriveKey(importPassword, salt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
		}
		defer krypto.Zeroize(key)

		doc, err := openDocument(key, blob)
		if err != nil {
			return nil, fmt.Errorf("%w: wrong import password or corrupted file", ErrImportFailed)
		}
		return doc, nil
	}

	// Raw export: ciphertext under the live vault key, no embedded salt.
	doc, err := openDocument(s.key, content)
	if err != nil {
		return nil, fmt.Errorf("%w: file is not importable with the current vault key", ErrImportFailed)
	}
	return doc, nil
}
