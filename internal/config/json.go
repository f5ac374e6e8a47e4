package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/keyvault/internal/flagx"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// an absent key apart from a zero value.
type JsonConfig struct {
	DataDir           *string `json:"data_dir"`
	VaultFile         *string `json:"vault_file"`
	SaltFile          *string `json:"salt_file"`
	AuditFile         *string `json:"audit_file"`
	LogLevel          *string `json:"log_level"`
	MinPasswordLength *int    `json:"min_password_length"`
	SecretLength      *int    `json:"secret_length"`

	AuditRetentionDays *int `json:"audit_retention_days"`
}

func overlay[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays cfg with the file named by -c/-config. Without the
// flag nothing changes. Read and unmarshal errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.DataDir, jc.DataDir)
	overlay(&cfg.VaultFile, jc.VaultFile)
	overlay(&cfg.SaltFile, jc.SaltFile)
	overlay(&cfg.AuditFile, jc.AuditFile)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.MinPasswordLength, jc.MinPasswordLength)
	overlay(&cfg.SecretLength, jc.SecretLength)
	overlay(&cfg.AuditRetentionDays, jc.AuditRetentionDays)
}
