// Package cryptox implements the vault's key derivation and per-field
// authenticated encryption.
package cryptox

import (
	"crypto/sha256"
	"fmt"

	"github.com/dmitrijs2005/keyvault/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the vault salt in bytes.
	SaltSize = 16

	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// MinIterations is the lowest PBKDF2 round count a KDF accepts.
	MinIterations = 100_000

	// DefaultIterations follows the OWASP recommendation for PBKDF2-SHA256.
	DefaultIterations = 600_000
)

// Key is a derived symmetric key. It lives only in memory.
type Key [KeySize]byte

// Wipe zeroes the key in place.
func (k *Key) Wipe() {
	common.WipeByteArray(k[:])
}

// KDF stretches a master password into a Key with PBKDF2-HMAC-SHA256.
type KDF struct {
	Iterations int
}

// DefaultKDF is the only KDF the shell uses. The vault file does not record
// the round count, so a vault is readable only with the KDF it was set up with.
var DefaultKDF = KDF{Iterations: DefaultIterations}

// DeriveKey derives a key from password and salt. Same inputs always give the
// same key. A salt that is not SaltSize bytes long, or a round count below
// MinIterations, is a programming error and panics.
func (k KDF) DeriveKey(password string, salt []byte) Key {
	if len(salt) != SaltSize {
		panic(fmt.Sprintf("cryptox: salt must be %d bytes, got %d", SaltSize, len(salt)))
	}
	if k.Iterations < MinIterations {
		panic(fmt.Sprintf("cryptox: %d iterations is below the minimum of %d", k.Iterations, MinIterations))
	}

	raw := pbkdf2.Key([]byte(password), salt, k.Iterations, KeySize, sha256.New)
	defer common.WipeByteArray(raw)

	var key Key
	copy(key[:], raw)
	return key
}

// DeriveKey is shorthand for DefaultKDF.DeriveKey.
func DeriveKey(password string, salt []byte) Key {
	return DefaultKDF.DeriveKey(password, salt)
}

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}
