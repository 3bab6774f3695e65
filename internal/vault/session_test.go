package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkaram/opseckit/auth"
	"github.com/mkaram/opseckit/krypto"
	"github.com/mkaram/opseckit/store"
)

const testPassphrase = "correct-horse-battery"

func initializedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(t.TempDir())
	if err := s.Initialize(testPassphrase); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

func TestInitializeUnlockLifecycle(t *testing.T) {
	dir := t.TempDir()
	s := NewSession(dir)

	if s.Initialized() {
		t.Fatal("fresh directory reports initialized")
	}
	if err := s.Unlock(testPassphrase); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Unlock before init: got %v, want ErrNotInitialized", err)
	}

	if err := s.Initialize(testPassphrase); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !s.Unlocked() {
		t.Fatal("session not unlocked after Initialize")
	}
	if !s.Initialized() {
		t.Fatal("salt and blob should both exist after Initialize")
	}

	if err := s.Initialize(testPassphrase); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Initialize: got %v, want ErrAlreadyInitialized", err)
	}

	s.Lock()
	if s.Unlocked() {
		t.Fatal("session unlocked after Lock")
	}
	s.Lock() // idempotent

	if err := s.Unlock(testPassphrase); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if !s.Unlocked() {
		t.Fatal("session not unlocked after Unlock")
	}
}

func TestInitializeRejectsShortPassphrase(t *testing.T) {
	s := NewSession(t.TempDir())
	if err := s.Initialize("short"); !errors.Is(err, auth.ErrWeakSecret) {
		t.Fatalf("got %v, want ErrWeakSecret", err)
	}
	if s.Initialized() {
		t.Fatal("rejected Initialize left files behind")
	}
}

func TestUnlockWrongPassphrase(t *testing.T) {
	s := initializedSession(t)
	s.Lock()

	// Five wrong attempts in a row: each fails independently, no state
	// corruption, and the right passphrase still works afterwards.
	for i := 0; i < 5; i++ {
		if err := s.Unlock("not-the-passphrase"); !errors.Is(err, ErrInvalidPassphrase) {
			t.Fatalf("attempt %d: got %v, want ErrInvalidPassphrase", i, err)
		}
		if s.Unlocked() {
			t.Fatalf("attempt %d: session unlocked after failed attempt", i)
		}
	}

	if err := s.Unlock(testPassphrase); err != nil {
		t.Fatalf("Unlock with correct passphrase: %v", err)
	}
}

func TestOperationsRequireUnlocked(t *testing.T) {
	s := initializedSession(t)
	s.Lock()

	if _, err := s.AddCredential("work", Credential{Service: "reddit"}); !errors.Is(err, ErrLocked) {
		t.Fatalf("AddCredential while locked: got %v, want ErrLocked", err)
	}
	if _, err := s.Credentials("work"); !errors.Is(err, ErrLocked) {
		t.Fatalf("Credentials while locked: got %v, want ErrLocked", err)
	}
	if _, err := s.Stats(); !errors.Is(err, ErrLocked) {
		t.Fatalf("Stats while locked: got %v, want ErrLocked", err)
	}
	if err := s.Import("nope", "", false); !errors.Is(err, ErrLocked) {
		t.Fatalf("Import while locked: got %v, want ErrLocked", err)
	}
}

func TestAddCredentialSurvivesLockCycle(t *testing.T) {
	s := initializedSession(t)

	added, err := s.AddCredential("work", Credential{
		Service:  "reddit",
		Username: "alice",
		Password: "p1",
	})
	if err != nil {
		t.Fatalf("AddCredential: %v", err)
	}
	if added.ID == "" {
		t.Fatal("credential id not assigned")
	}
	if added.Created.IsZero() || added.Modified.IsZero() {
		t.Fatal("timestamps not assigned")
	}

	s.Lock()
	if err := s.Unlock(testPassphrase); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	creds, err := s.Credentials("work")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if len(creds) != 1 {
		t.Fatalf("credential count = %d, want 1", len(creds))
	}
	if creds[0].Service != "reddit" || creds[0].Username != "alice" || creds[0].Password != "p1" {
		t.Fatalf("credential fields lost: %+v", creds[0])
	}
	if creds[0].ID != added.ID {
		t.Fatal("credential id changed across lock/unlock")
	}
}

func TestCredentialByServiceCaseInsensitive(t *testing.T) {
	s := initializedSession(t)
	if _, err := s.AddCredential("work", Credential{Service: "Reddit"}); err != nil {
		t.Fatalf("AddCredential: %v", err)
	}

	got, err := s.CredentialByService("work", "rEdDiT")
	if err != nil {
		t.Fatalf("CredentialByService: %v", err)
	}
	if got.Service != "Reddit" {
		t.Fatalf("service = %q, want original casing preserved", got.Service)
	}

	if _, err := s.CredentialByService("work", "github"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown service: got %v, want ErrNotFound", err)
	}
}

func TestUpdateCredential(t *testing.T) {
	s := initializedSession(t)
	added, err := s.AddCredential("work", Credential{Service: "reddit", Password: "old"})
	if err != nil {
		t.Fatalf("AddCredential: %v", err)
	}

	newPass := "new-password"
	if err := s.UpdateCredential("work", added.ID, CredentialUpdate{Password: &newPass}); err != nil {
		t.Fatalf("UpdateCredential: %v", err)
	}

	creds, err := s.Credentials("work")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	got := creds[0]
	if got.Password != newPass {
		t.Fatalf("password = %q, want %q", got.Password, newPass)
	}
	if got.Service != "reddit" {
		t.Fatal("untouched field changed")
	}
	if got.ID != added.ID {
		t.Fatal("id changed on update")
	}
	if !got.Created.Equal(added.Created) {
		t.Fatal("created timestamp changed on update")
	}
	if !got.Modified.After(added.Modified) && !got.Modified.Equal(added.Modified) {
		t.Fatal("modified timestamp went backwards")
	}

	if err := s.UpdateCredential("work", "no-such-id", CredentialUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestDeleteCredential(t *testing.T) {
	s := initializedSession(t)
	a, _ := s.AddCredential("work", Credential{Service: "reddit"})
	b, _ := s.AddCredential("work", Credential{Service: "github"})

	if err := s.DeleteCredential("work", a.ID); err != nil {
		t.Fatalf("DeleteCredential: %v", err)
	}

	creds, err := s.Credentials("work")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if len(creds) != 1 || creds[0].ID != b.ID {
		t.Fatalf("unexpected remaining credentials: %+v", creds)
	}

	if err := s.DeleteCredential("work", a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestDeleteIdentityCredentials(t *testing.T) {
	s := initializedSession(t)
	s.AddCredential("work", Credential{Service: "reddit"})
	s.AddCredential("work", Credential{Service: "github"})
	s.AddCredential("personal", Credential{Service: "mastodon"})

	n, err := s.DeleteIdentityCredentials("work")
	if err != nil {
		t.Fatalf("DeleteIdentityCredentials: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted = %d, want 2", n)
	}

	names, err := s.ListIdentities()
	if err != nil {
		t.Fatalf("ListIdentities: %v", err)
	}
	if len(names) != 1 || names[0] != "personal" {
		t.Fatalf("identities = %v", names)
	}

	if _, err := s.DeleteIdentityCredentials("work"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestListAllCredentialsOmitsSecrets(t *testing.T) {
	s := initializedSession(t)
	s.AddCredential("work", Credential{Service: "reddit", Username: "alice", Password: "p1"})

	summary, err := s.ListAllCredentials()
	if err != nil {
		t.Fatalf("ListAllCredentials: %v", err)
	}
	rows := summary["work"]
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Username != "alice" || rows[0].Service != "reddit" {
		t.Fatalf("summary row mismatch: %+v", rows[0])
	}
}

func TestStats(t *testing.T) {
	s := initializedSession(t)
	s.AddCredential("work", Credential{Service: "Reddit"})
	s.AddCredential("work", Credential{Service: "reddit"})
	s.AddCredential("personal", Credential{Service: "github"})

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalIdentities != 2 {
		t.Fatalf("TotalIdentities = %d", stats.TotalIdentities)
	}
	if stats.TotalCredentials != 3 {
		t.Fatalf("TotalCredentials = %d", stats.TotalCredentials)
	}
	if stats.UniqueServices != 2 {
		t.Fatalf("UniqueServices = %d (case folding broken?)", stats.UniqueServices)
	}
	if stats.Version != documentVersion {
		t.Fatalf("Version = %q", stats.Version)
	}
}

func TestChangeMasterPassphrase(t *testing.T) {
	s := initializedSession(t)
	s.AddCredential("work", Credential{Service: "reddit", Password: "p1"})

	const newPassphrase = "a-new-longer-passphrase"

	if err := s.ChangeMasterPassphrase("wrong-guess", newPassphrase); !errors.Is(err, ErrInvalidPassphrase) {
		t.Fatalf("wrong current: got %v, want ErrInvalidPassphrase", err)
	}
	if err := s.ChangeMasterPassphrase(testPassphrase, "short"); !errors.Is(err, auth.ErrWeakSecret) {
		t.Fatalf("weak new: got %v, want ErrWeakSecret", err)
	}

	if err := s.ChangeMasterPassphrase(testPassphrase, newPassphrase); err != nil {
		t.Fatalf("ChangeMasterPassphrase: %v", err)
	}

	s.Lock()
	if err := s.Unlock(testPassphrase); !errors.Is(err, ErrInvalidPassphrase) {
		t.Fatalf("old passphrase after change: got %v, want ErrInvalidPassphrase", err)
	}
	if err := s.Unlock(newPassphrase); err != nil {
		t.Fatalf("new passphrase after change: %v", err)
	}

	creds, err := s.Credentials("work")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if len(creds) != 1 || creds[0].Password != "p1" {
		t.Fatalf("document lost across password change: %+v", creds)
	}
}

func TestChangeMasterPassphraseInterruptedBeforeCommit(t *testing.T) {
	// An interruption after the new salt exists only in memory (nothing
	// renamed yet) must leave the old pair fully valid. Simulated by
	// snapshotting the on-disk pair and restoring it.
	s := initializedSession(t)
	s.AddCredential("work", Credential{Service: "reddit"})

	saltBefore, err := os.ReadFile(s.Paths().SaltPath())
	if err != nil {
		t.Fatalf("read salt: %v", err)
	}
	blobBefore, err := os.ReadFile(s.Paths().VaultPath())
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}

	restored := NewSession(s.Paths().Dir)
	if err := os.WriteFile(restored.Paths().SaltPath(), saltBefore, 0o600); err != nil {
		t.Fatalf("restore salt: %v", err)
	}
	if err := os.WriteFile(restored.Paths().VaultPath(), blobBefore, 0o600); err != nil {
		t.Fatalf("restore blob: %v", err)
	}
	if err := restored.Unlock(testPassphrase); err != nil {
		t.Fatalf("old passphrase on restored pair: %v", err)
	}
}

func TestUnlockRecoversStagedBlob(t *testing.T) {
	// Simulates a crash after the salt replace but before the staged blob
	// rename: Unlock with the new passphrase must find the staged blob and
	// complete the commit.
	s := initializedSession(t)
	s.AddCredential("work", Credential{Service: "reddit"})

	const newPassphrase = "a-new-longer-passphrase"
	doc, err := s.loadDocument()
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}

	newSalt, err := krypto.NewRandomSalt()
	if err != nil {
		t.Fatalf("NewRandomSalt: %v", err)
	}
	newKey, err := krypto.DeriveKey(newPassphrase, newSalt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	blob, err := sealDocument(newKey, doc)
	if err != nil {
		t.Fatalf("sealDocument: %v", err)
	}
	if err := store.SaveBlob(s.stagedBlobPath(), blob); err != nil {
		t.Fatalf("stage blob: %v", err)
	}
	if err := store.SaveBlob(s.Paths().SaltPath(), newSalt); err != nil {
		t.Fatalf("replace salt: %v", err)
	}
	// Crash happens here: vault.enc still holds the old generation.

	recovered := NewSession(s.Paths().Dir)
	if err := recovered.Unlock(newPassphrase); err != nil {
		t.Fatalf("Unlock after simulated crash: %v", err)
	}
	creds, err := recovered.Credentials("work")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if len(creds) != 1 || creds[0].Service != "reddit" {
		t.Fatalf("document lost in recovery: %+v", creds)
	}
	if _, err := os.Stat(recovered.stagedBlobPath()); !os.IsNotExist(err) {
		t.Fatal("staged blob not promoted to the live blob")
	}
}

func TestBurnDestroysStore(t *testing.T) {
	s := initializedSession(t)
	s.AddCredential("work", Credential{Service: "reddit"})

	if err := s.Burn(); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if s.Unlocked() {
		t.Fatal("session unlocked after Burn")
	}
	if s.Initialized() {
		t.Fatal("files still present after Burn")
	}
	if _, err := os.Stat(filepath.Join(s.Paths().Dir)); err != nil {
		t.Fatalf("vault directory should survive Burn: %v", err)
	}
}

func TestPlaintextNeverTouchesDisk(t *testing.T) {
	s := initializedSession(t)
	s.AddCredential("work", Credential{Service: "reddit", Password: "hunter2-plaintext"})

	blob, err := os.ReadFile(s.Paths().VaultPath())
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if containsSubslice(blob, []byte("hunter2-plaintext")) || containsSubslice(blob, []byte("reddit")) {
		t.Fatal("plaintext secret found in the on-disk blob")
	}
}

func containsSubslice(haystack, needle []byte) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
