package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyPathEnv names the environment variable the Lambda entrypoints read
// to locate a bundled policy file.
const PolicyPathEnv = "POLICY_PATH"

// LoadPolicy reads and parses a netwarden.yaml policy file.
func LoadPolicy(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("policy file %s: unsupported version %d; must be 1", path, cfg.Version)
	}

	if cfg.Rules == nil {
		cfg.Rules = make(map[string]RuleConfig)
	}

	return &cfg, nil
}

// LoadFromEnv loads the policy named by POLICY_PATH. An unset variable means
// no policy: the caller gets a nil Config, which behaves as all-defaults.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(PolicyPathEnv)
	if path == "" {
		return nil, nil
	}
	return LoadPolicy(path)
}
