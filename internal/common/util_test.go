package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}
}

func TestGenerateRandByteArray_EntropyHint(t *testing.T) {
	const n = 32
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)
	require.NotEqual(t, a, b, "two 32-byte random buffers must differ")
}

// ---------- ValidationError ----------

func TestValidationError_IsErrValidation(t *testing.T) {
	var err error = &ValidationError{Rules: []string{"too short", "needs a digit"}}

	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, "validation error: too short; needs a digit", err.Error())

	wrapped := fmt.Errorf("save account: %w", err)
	var ve *ValidationError
	require.True(t, errors.As(wrapped, &ve))
	require.Len(t, ve.Rules, 2)
}

func TestValidationError_NoRules(t *testing.T) {
	err := &ValidationError{}
	require.Equal(t, "validation error", err.Error())
}
