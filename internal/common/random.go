package common

import (
	"crypto/rand"
	"io"
)

// GenerateRandByteArray returns size bytes read from crypto/rand.
//
// crypto/rand.Read never returns an error on supported platforms, so a
// failure here means the process cannot do any cryptography and it panics.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
