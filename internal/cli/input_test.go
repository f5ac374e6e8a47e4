package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func stubTerminal(t *testing.T, terminal bool, read func(int) ([]byte, error)) {
	t.Helper()
	origTerm, origRead := isTerminal, readPassword
	isTerminal = func(int) bool { return terminal }
	if read != nil {
		readPassword = read
	}
	t.Cleanup(func() {
		isTerminal, readPassword = origTerm, origRead
	})
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleText_LastLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)
}

func TestGetSimpleText_EOF(t *testing.T) {
	var out bytes.Buffer
	_, err := GetSimpleText(rdr(""), "Name?", &out)
	require.ErrorIs(t, err, io.EOF)
}

func TestGetPassword_Terminal(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return []byte("s3cret"), nil })

	var out bytes.Buffer
	pw, err := GetPassword(rdr("ignored\n"), "Enter password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Equal(t, "Enter password: \n", out.String())
}

func TestGetPassword_TerminalError(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return nil, errors.New("boom") })

	var out bytes.Buffer
	_, err := GetPassword(rdr(""), "Enter password", &out)
	require.Error(t, err)
}

func TestGetPassword_PipedInput(t *testing.T) {
	stubTerminal(t, false, func(int) ([]byte, error) {
		t.Fatal("terminal read on piped input")
		return nil, nil
	})

	var out bytes.Buffer
	pw, err := GetPassword(rdr("pa ss\r\n"), "Enter password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("pa ss"), pw)
}
