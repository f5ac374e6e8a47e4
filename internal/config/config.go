package config

import (
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/keyvault/internal/policy"
)

// Config holds runtime settings for the keyvault CLI.
//
// File names are joined onto DataDir unless they are absolute.
type Config struct {
	DataDir   string
	VaultFile string
	SaltFile  string
	AuditFile string
	LogLevel  string

	MinPasswordLength int
	SecretLength      int

	// AuditRetentionDays bounds the age of audit events; older ones are
	// purged at startup. Zero keeps everything.
	AuditRetentionDays int
}

func (c *Config) LoadDefaults() {
	c.DataDir = "."
	c.VaultFile = "passwords.json"
	c.SaltFile = "salt.key"
	c.AuditFile = "audit.db"
	c.LogLevel = "warn"
	c.MinPasswordLength = policy.DefaultMinLength
	c.SecretLength = policy.DefaultSecretLength
	c.AuditRetentionDays = 90
}

// Validate rejects settings the vault cannot run with.
func (c *Config) Validate() error {
	if c.VaultFile == "" || c.SaltFile == "" || c.AuditFile == "" {
		return fmt.Errorf("config: vault, salt and audit file names are required")
	}
	if err := c.checkDistinctPaths(); err != nil {
		return err
	}
	if c.MinPasswordLength < 1 {
		return fmt.Errorf("config: min_password_length must be positive, got %d", c.MinPasswordLength)
	}
	if c.SecretLength < policy.MinSecretLength {
		return fmt.Errorf("config: secret_length must be at least %d, got %d", policy.MinSecretLength, c.SecretLength)
	}
	if c.AuditRetentionDays < 0 {
		return fmt.Errorf("config: audit_retention_days must not be negative, got %d", c.AuditRetentionDays)
	}
	return nil
}

// checkDistinctPaths fails when two of the vault, salt and audit files
// resolve to the same location.
func (c *Config) checkDistinctPaths() error {
	files := []struct{ name, path string }{
		{"vault", c.VaultPath()},
		{"salt", c.SaltPath()},
		{"audit", c.AuditPath()},
	}
	seen := make(map[string]string, len(files))
	for _, f := range files {
		p := f.path
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if other, ok := seen[p]; ok {
			return fmt.Errorf("config: %s and %s files both resolve to %s", other, f.name, p)
		}
		seen[p] = f.name
	}
	return nil
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func (c *Config) VaultPath() string { return c.resolve(c.VaultFile) }
func (c *Config) SaltPath() string  { return c.resolve(c.SaltFile) }
func (c *Config) AuditPath() string { return c.resolve(c.AuditFile) }

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
