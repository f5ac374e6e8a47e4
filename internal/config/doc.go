// Package config loads runtime configuration for the keyvault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   directory holding the vault, salt and audit files
//	-l string   log level: debug, info, warn or error
//
// # JSON schema
//
// Every key is optional; absent keys keep the value from the defaults:
//
//	{
//	  "data_dir": "/home/me/.keyvault",
//	  "vault_file": "passwords.json",
//	  "salt_file": "salt.key",
//	  "audit_file": "audit.db",
//	  "log_level": "info",
//	  "min_password_length": 12,
//	  "secret_length": 20,
//	  "audit_retention_days": 30
//	}
//
// Read, parse and validation errors panic; the binary is expected to fail
// fast on a bad configuration.
package config
