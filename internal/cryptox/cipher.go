package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"

	"github.com/dmitrijs2005/keyvault/internal/common"
)

// Blob is an opaque authenticated ciphertext as stored in the vault file.
type Blob string

const (
	blobVersion = 0x01
	nonceSize   = 12
)

var blobEncoding = base64.RawURLEncoding.Strict()

func newGCM(key *Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under key with AES-256-GCM.
//
// A new random 12-byte nonce is generated for every call, so encrypting the
// same plaintext twice yields different blobs. Layout before encoding:
//
//	version(1) || nonce(12) || ciphertext || tag(16)
//
// The version byte is authenticated as additional data.
func Encrypt(plaintext string, key Key) (Blob, error) {
	aead, err := newGCM(&key)
	if err != nil {
		return "", err
	}

	header := make([]byte, 1, 1+nonceSize)
	header[0] = blobVersion
	nonce := common.GenerateRandByteArray(nonceSize)
	header = append(header, nonce...)

	out := aead.Seal(header, nonce, []byte(plaintext), []byte{blobVersion})
	return Blob(blobEncoding.EncodeToString(out)), nil
}

// Decrypt opens a blob produced by Encrypt.
//
// Any failure, whether a wrong key, a truncated or modified blob, or an
// encoding error, returns common.ErrDecrypt and nothing else.
func Decrypt(blob Blob, key Key) (string, error) {
	raw, err := blobEncoding.DecodeString(string(blob))
	if err != nil {
		return "", common.ErrDecrypt
	}

	aead, err := newGCM(&key)
	if err != nil {
		return "", common.ErrDecrypt
	}

	if len(raw) < 1+nonceSize+aead.Overhead() || raw[0] != blobVersion {
		return "", common.ErrDecrypt
	}

	nonce := raw[1 : 1+nonceSize]
	plaintext, err := aead.Open(nil, nonce, raw[1+nonceSize:], []byte{blobVersion})
	if err != nil {
		return "", common.ErrDecrypt
	}
	return string(plaintext), nil
}
