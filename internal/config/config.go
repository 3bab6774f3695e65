package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures the operator-facing settings for the secret core.
type Config struct {
	// DataDir is the directory holding vault.salt, vault.enc and the
	// identities store.
	DataDir string `yaml:"dataDir"`

	Identities IdentitiesConfig `yaml:"identities"`
}

// IdentitiesConfig controls at-rest encryption of the identities store.
type IdentitiesConfig struct {
	// Secret is the primary at-rest secret for the identities store. Empty
	// means the store runs unencrypted and must say so loudly in its status.
	Secret string `yaml:"secret"`

	// LegacySecret is tried as a decryption fallback for stores written
	// before Secret was configured.
	LegacySecret string `yaml:"legacySecret"`

	// EnforceEncryption makes a missing Secret a hard construction error
	// rather than a degraded plaintext mode.
	EnforceEncryption bool `yaml:"enforceEncryption"`
}

// Default returns the built-in configuration: everything under ~/.opseckit,
// identities unencrypted until a secret is configured.
func Default() Config {
	dataDir := ".opseckit"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".opseckit")
	}
	return Config{DataDir: dataDir}
}

// Load reads configuration from configPath (or the default candidate
// locations when empty), then applies environment overrides. A missing or
// unparseable file falls back to defaults; environment variables always win.
func Load(configPath string) Config {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		if env := os.Getenv("OPSECKIT_CONFIG"); env != "" {
			candidates = append(candidates, env)
		}
		candidates = append(candidates, filepath.Join(cfg.DataDir, "config.yaml"))
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}

		merge(&cfg, parsed)
		break
	}

	applyEnvOverrides(&cfg)
	return cfg
}

func merge(dst *Config, src Config) {
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.Identities.Secret != "" {
		dst.Identities.Secret = src.Identities.Secret
	}
	if src.Identities.LegacySecret != "" {
		dst.Identities.LegacySecret = src.Identities.LegacySecret
	}
	if src.Identities.EnforceEncryption {
		dst.Identities.EnforceEncryption = true
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("OPSECKIT_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("IDENTITIES_KEY")); v != "" {
		cfg.Identities.Secret = v
	}
	if v := strings.TrimSpace(os.Getenv("SECRET_KEY")); v != "" {
		cfg.Identities.LegacySecret = v
	}
	if v := strings.TrimSpace(os.Getenv("ENFORCE_ENCRYPTION")); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			cfg.Identities.EnforceEncryption = true
		}
	}
}
