package identity

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Word lists for generating plausible-looking aliases.
var aliasAdjectives = []string{
	"Swift", "Shadow", "Silent", "Dark", "Bright", "Cold", "Wild", "Lone",
	"Ghost", "Cyber", "Neon", "Void", "Storm", "Frost", "Iron", "Steel",
	"Crimson", "Azure", "Onyx", "Silver", "Golden", "Raven", "Wolf", "Hawk",
	"Night", "Dawn", "Dusk", "Cosmic", "Quantum", "Nova", "Pixel", "Binary",
	"Stealth", "Phantom", "Mystic", "Cryptic", "Hidden", "Masked", "Veiled",
	"Rapid", "Apex", "Prime", "Alpha", "Omega", "Zero", "Null",
	"Electric", "Thunder", "Lightning", "Blaze", "Ember", "Ash", "Smoke",
}

var aliasNouns = []string{
	"Wolf", "Fox", "Hawk", "Raven", "Phoenix", "Dragon", "Tiger", "Panther",
	"Viper", "Cobra", "Falcon", "Eagle", "Bear", "Lion", "Shark", "Lynx",
	"Knight", "Ninja", "Samurai", "Ronin", "Hunter", "Ranger", "Scout", "Agent",
	"Cipher", "Code", "Byte", "Node", "Proxy", "Vector", "Matrix", "Core",
	"Blade", "Edge", "Storm", "Pulse", "Wave", "Flux", "Spark", "Bolt",
	"Specter", "Wraith", "Shade", "Spirit", "Ghost", "Reaper", "Walker", "Runner",
	"Mind", "Soul", "Heart", "Eye", "Hand", "Fist", "Claw", "Wing",
}

const aliasCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// AliasStyle selects how GenerateAlias builds a name.
type AliasStyle string

const (
	// StyleWordCombo joins a random adjective and noun, optionally with a
	// number, in one of several layouts.
	StyleWordCombo AliasStyle = "word_combo"
	// StyleSimple is a single lowercase noun plus a number.
	StyleSimple AliasStyle = "simple"
	// StyleRandom is 12 random lowercase/digit characters.
	StyleRandom AliasStyle = "random"
)

// GenerateAlias builds a fresh alias using cryptographic randomness.
func GenerateAlias(style AliasStyle) (string, error) {
	switch style {
	case StyleWordCombo, "":
		adjective, err := pick(aliasAdjectives)
		if err != nil {
			return "", err
		}
		noun, err := pick(aliasNouns)
		if err != nil {
			return "", err
		}
		number, err := randBelow(1000)
		if err != nil {
			return "", err
		}
		layouts := []string{
			fmt.Sprintf("%s%s%d", adjective, noun, number),
			fmt.Sprintf("%s_%s%d", adjective, noun, number),
			fmt.Sprintf("%s%s_%d", adjective, noun, number),
			fmt.Sprintf("%s%s%d", strings.ToLower(adjective), noun, number),
			fmt.Sprintf("%s%s%d", adjective, strings.ToLower(noun), number),
		}
		return pick(layouts)
	case StyleSimple:
		noun, err := pick(aliasNouns)
		if err != nil {
			return "", err
		}
		number, err := randBelow(1000)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%d", strings.ToLower(noun), number), nil
	default:
		return randomChars(12)
	}
}

// GenerateEmailPrefix returns a short random mailbox-safe prefix.
func GenerateEmailPrefix() (string, error) {
	return randomChars(8)
}

func randomChars(n int) (string, error) {
	out := make([]byte, n)
	for i := range out {
		idx, err := randBelow(len(aliasCharset))
		if err != nil {
			return "", err
		}
		out[i] = aliasCharset[idx]
	}
	return string(out), nil
}

func pick(choices []string) (string, error) {
	idx, err := randBelow(len(choices))
	if err != nil {
		return "", err
	}
	return choices[idx], nil
}

func randBelow(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read randomness: %w", err)
	}
	return int(v.Int64()), nil
}
