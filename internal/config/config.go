package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name in a project directory.
const FileName = "ledgersync.yaml"

// Config represents the top-level ledgersync.yaml configuration.
type Config struct {
	Ledger     LedgerConfig     `yaml:"ledger"`
	Statements StatementsConfig `yaml:"statements"`
	Rules      RulesConfig      `yaml:"rules"`
	Accounts   []AccountMapping `yaml:"accounts,omitempty"`
}

// LedgerConfig locates the target workbook and where updated copies go.
type LedgerConfig struct {
	Workbook  string `yaml:"workbook"`
	OutputDir string `yaml:"output_dir"`
}

// StatementsConfig locates bank statement exports. Files live in monthly
// subfolders named YYYY-MM.
type StatementsConfig struct {
	Dir string `yaml:"dir"`
}

// RulesConfig points at the classification rule file. An empty path means
// the built-in default rule set.
type RulesConfig struct {
	File string `yaml:"file,omitempty"`
}

// AccountMapping binds a source account to its ledger sheet and column
// layout. Layout is one of "bmo", "rbc", "cibc".
type AccountMapping struct {
	Account string `yaml:"account"`
	Sheet   string `yaml:"sheet"`
	Layout  string `yaml:"layout"`
}

// Load reads a ledgersync.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Workbook:  "ledger/accounts.xlsx",
			OutputDir: "output",
		},
		Statements: StatementsConfig{
			Dir: "statements",
		},
	}
}
