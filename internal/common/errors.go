// Package common defines sentinel errors and small helpers shared by the
// vault core and the CLI shell. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"strings"
)

var (
	// ErrCorrupt is returned when persisted vault data is present but cannot
	// be parsed. The vault must not be reinitialized over it.
	ErrCorrupt = errors.New("vault data is corrupt")

	// ErrAuth is returned when a master password candidate does not match.
	ErrAuth = errors.New("incorrect master password")

	// ErrDecrypt is the only error authenticated decryption ever reports.
	ErrDecrypt = errors.New("decryption failed")

	// ErrValidation marks a policy violation on a candidate secret or identifier.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned by lookups that match nothing.
	ErrNotFound = errors.New("not found")

	// session lifecycle errors
	ErrInvalidState = errors.New("operation not permitted in current session state")

	// store errors
	ErrSaltMismatch = errors.New("salt differs from the persisted salt")
)

// ValidationError carries the complete list of rules a candidate violated.
type ValidationError struct {
	Rules []string
}

func (e *ValidationError) Error() string {
	if len(e.Rules) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Rules, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
