// Package config loads the wallet's on-disk configuration: the wallet
// root directory and the chain adapter's connection parameters.
// Follows a create-with-defaults-on-first-run load/save idiom, using
// gopkg.in/yaml.v3 for the wire format.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name inside the wallet root.
const FileName = "config.yaml"

// DefaultWalletDir is appended to $HOME when no explicit wallet
// directory is given.
const DefaultWalletDir = ".solwall"

// EnvVar is the environment variable fallback for the wallet
// directory when no -w flag is given.
const EnvVar = "SOLDID_CONFIG"

// ErrSolanaConfigMissing is returned when the wallet directory cannot
// be discovered by any means: no -w flag, no SOLDID_CONFIG, and no
// $HOME to fall back to.
var ErrSolanaConfigMissing = errors.New("solana adapter configuration missing: set -w, set SOLDID_CONFIG, or ensure $HOME is set")

// AdapterConfig parameterizes the chain adapter: the cluster URL, the
// ledger program identifier, and the logging level.
type AdapterConfig struct {
	URL       string `yaml:"url"`
	ProgramID string `yaml:"program_id"`
	LogLevel  string `yaml:"log_level"`
}

// Config is the wallet's full on-disk configuration.
type Config struct {
	WalletDir string        `yaml:"wallet_dir"`
	Adapter   AdapterConfig `yaml:"adapter"`
}

// Default returns a configuration with sane defaults: a local
// in-process simulated chain (no real cluster URL) and info-level
// logging.
func Default(walletDir string) *Config {
	return &Config{
		WalletDir: walletDir,
		Adapter: AdapterConfig{
			URL:       "sim://local",
			ProgramID: "",
			LogLevel:  "info",
		},
	}
}

// HomeWalletDir returns $HOME/.solwall, or an error if $HOME is unset.
func HomeWalletDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultWalletDir), nil
}

// ResolveWalletDir discovers the wallet directory: an explicit
// flagValue wins, then the SOLDID_CONFIG environment variable, then
// $HOME/.solwall. ErrSolanaConfigMissing is returned when none of
// these resolve to a directory.
func ResolveWalletDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(EnvVar); v != "" {
		return v, nil
	}
	home, err := HomeWalletDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSolanaConfigMissing, err)
	}
	return home, nil
}

// Load reads <walletDir>/config.yaml, writing a default file first if
// one does not yet exist.
func Load(walletDir string) (*Config, error) {
	if err := os.MkdirAll(walletDir, 0o755); err != nil {
		return nil, fmt.Errorf("create wallet directory: %w", err)
	}

	path := filepath.Join(walletDir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default(walletDir)
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default(walletDir)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
