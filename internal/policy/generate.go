package policy

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/keyvault/internal/common"
)

// DefaultSecretLength is the length of generated secrets when none is configured.
const DefaultSecretLength = 16

// MinSecretLength is the shortest secret that can hold one character of
// every class.
const MinSecretLength = 4

const (
	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars = "0123456789"
	allChars   = lowerChars + upperChars + digitChars + Punctuation
)

var classes = []string{lowerChars, upperChars, digitChars, Punctuation}

func randIndex(n int) (int, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(idx.Int64()), nil
}

// GenerateSecret returns a random secret of the given length drawn from
// crypto/rand. It always contains at least one lowercase letter, uppercase
// letter, digit and symbol; the remaining characters are uniform over the
// whole alphabet and the result is shuffled.
func GenerateSecret(length int) (string, error) {
	if length < MinSecretLength {
		return "", fmt.Errorf("%w: secret length must be at least %d", common.ErrValidation, MinSecretLength)
	}

	secret := make([]byte, length)
	for i, class := range classes {
		idx, err := randIndex(len(class))
		if err != nil {
			return "", err
		}
		secret[i] = class[idx]
	}
	for i := len(classes); i < length; i++ {
		idx, err := randIndex(len(allChars))
		if err != nil {
			return "", err
		}
		secret[i] = allChars[idx]
	}

	// Fisher–Yates
	for i := length - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return "", err
		}
		secret[i], secret[j] = secret[j], secret[i]
	}

	return string(secret), nil
}
