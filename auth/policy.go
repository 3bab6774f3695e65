package auth

import (
	"errors"
	"fmt"

	"github.com/nbutton23/zxcvbn-go"
)

// MinPassphraseLength is the floor for master passphrases. Anything shorter
// is rejected before any key derivation happens.
const MinPassphraseLength = 8

// ErrWeakSecret indicates a passphrase that fails the minimum policy.
var ErrWeakSecret = errors.New("weak secret")

// ValidateMasterPassphrase applies the master passphrase policy.
func ValidateMasterPassphrase(pw string) error {
	if len(pw) < MinPassphraseLength {
		return fmt.Errorf("%w: passphrase must be at least %d characters", ErrWeakSecret, MinPassphraseLength)
	}
	return nil
}

// PassphraseScore rates a passphrase 0 (trivially guessed) to 4 (strong)
// using zxcvbn's estimator. The vault core never blocks on this score; the
// CLI uses it to warn the operator before a weak master passphrase is
// committed to.
func PassphraseScore(pw string) int {
	return zxcvbn.PasswordStrength(pw, nil).Score
}
