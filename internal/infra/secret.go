package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecretConfig matches the structure of secrets/wallet.yaml.
// It keeps credential material out of the main config file.
type SecretConfig struct {
	Wallet struct {
		Address   string `yaml:"address"`
		Token     string `yaml:"token"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"wallet"`
}

// LoadSecretConfig loads wallet credentials from a separate yaml file.
// It returns an error if the file is missing (fail fast).
func LoadSecretConfig(path string) (*SecretConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret config: %w", err)
	}

	var sc SecretConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse secret config: %w", err)
	}

	return &sc, nil
}

// MergeSecrets fills credential gaps in the config from the secrets
// file. Values already set (file or environment) win.
func (c *Config) MergeSecrets(sc *SecretConfig) {
	if c.Wallet.Address == "" {
		c.Wallet.Address = sc.Wallet.Address
	}
	if c.Wallet.Token == "" {
		c.Wallet.Token = sc.Wallet.Token
	}
	if c.Wallet.SecretKey == "" {
		c.Wallet.SecretKey = sc.Wallet.SecretKey
	}
}
