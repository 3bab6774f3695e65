package passgen

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/nbutton23/zxcvbn-go"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"
	symbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	ambiguousChars = "0O1lI"
)

// Options controls the character classes used by Password.
type Options struct {
	Length           int
	Uppercase        bool
	Lowercase        bool
	Numbers          bool
	Symbols          bool
	ExcludeAmbiguous bool
}

// DefaultOptions enables every character class at a 20-character length and
// drops ambiguous glyphs (0, O, 1, l, I).
func DefaultOptions() Options {
	return Options{
		Length:           20,
		Uppercase:        true,
		Lowercase:        true,
		Numbers:          true,
		Symbols:          true,
		ExcludeAmbiguous: true,
	}
}

// Password generates a random password from the configured character set.
func Password(opts Options) (string, error) {
	if opts.Length <= 0 {
		opts.Length = DefaultOptions().Length
	}

	var chars string
	if opts.Lowercase {
		chars += lowercaseChars
	}
	if opts.Uppercase {
		chars += uppercaseChars
	}
	if opts.Numbers {
		chars += digitChars
	}
	if opts.Symbols {
		chars += symbolChars
	}
	if opts.ExcludeAmbiguous {
		var b strings.Builder
		for _, c := range chars {
			if !strings.ContainsRune(ambiguousChars, c) {
				b.WriteRune(c)
			}
		}
		chars = b.String()
	}
	if chars == "" {
		chars = lowercaseChars + uppercaseChars + digitChars
	}

	out := make([]byte, opts.Length)
	for i := range out {
		idx, err := randIndex(len(chars))
		if err != nil {
			return "", err
		}
		out[i] = chars[idx]
	}
	return string(out), nil
}

// Passphrase joins randomly chosen wordlist words with separator. A words
// count below one falls back to five words.
func Passphrase(words int, separator string, capitalize bool) (string, error) {
	if words <= 0 {
		words = 5
	}
	if separator == "" {
		separator = "-"
	}

	picked := make([]string, words)
	for i := range picked {
		idx, err := randIndex(len(wordlist))
		if err != nil {
			return "", err
		}
		w := wordlist[idx]
		if capitalize {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		picked[i] = w
	}
	return strings.Join(picked, separator), nil
}

// PIN generates a numeric PIN of the given length (default 6).
func PIN(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	out := make([]byte, length)
	for i := range out {
		idx, err := randIndex(len(digitChars))
		if err != nil {
			return "", err
		}
		out[i] = digitChars[idx]
	}
	return string(out), nil
}

// Entropy estimates password entropy in bits from the character classes the
// password actually uses.
func Entropy(password string) float64 {
	if password == "" {
		return 0
	}

	var charsetSize int
	if strings.ContainsAny(password, lowercaseChars) {
		charsetSize += 26
	}
	if strings.ContainsAny(password, uppercaseChars) {
		charsetSize += 26
	}
	if strings.ContainsAny(password, digitChars) {
		charsetSize += 10
	}
	if strings.ContainsAny(password, "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~") {
		charsetSize += 32
	}
	if charsetSize == 0 {
		return 0
	}

	entropy := float64(len(password)) * math.Log2(float64(charsetSize))
	return math.Round(entropy*100) / 100
}

// Strength is a password strength report persisted alongside identity
// passwords.
type Strength struct {
	PasswordLength int     `json:"password_length"`
	EntropyBits    float64 `json:"entropy_bits"`
	Rating         string  `json:"rating"`
	Description    string  `json:"description"`
	Score          int     `json:"score"`
}

// Rate classifies a password by charset entropy bands and attaches zxcvbn's
// 0-4 guessability score, which also catches dictionary words and patterns
// that raw entropy misses.
func Rate(password string) Strength {
	entropy := Entropy(password)

	var rating, description string
	switch {
	case entropy < 28:
		rating, description = "very_weak", "Very Weak - Easy to crack"
	case entropy < 36:
		rating, description = "weak", "Weak - Could be cracked quickly"
	case entropy < 60:
		rating, description = "reasonable", "Reasonable - Moderate protection"
	case entropy < 128:
		rating, description = "strong", "Strong - Good protection"
	default:
		rating, description = "very_strong", "Very Strong - Excellent protection"
	}

	return Strength{
		PasswordLength: len(password),
		EntropyBits:    entropy,
		Rating:         rating,
		Description:    description,
		Score:          zxcvbn.PasswordStrength(password, nil).Score,
	}
}

func randIndex(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("empty choice set")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read randomness: %w", err)
	}
	return int(v.Int64()), nil
}
