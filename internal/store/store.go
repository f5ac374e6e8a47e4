// Package store persists the vault: a JSON document holding the master
// verifier and the accounts, and a separate file holding the raw salt.
//
// Both files exist together or not at all. Neither present is a fresh vault;
// one without the other, or unparseable content, is reported as
// common.ErrCorrupt and must never be silently reinitialized. The salt file
// is created once and never overwritten.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/keyvault/internal/common"
	"github.com/dmitrijs2005/keyvault/internal/cryptox"
	"github.com/dmitrijs2005/keyvault/internal/filex"
	"github.com/dmitrijs2005/keyvault/internal/models"
)

const fileMode = 0o600

// createSaltFile is a test seam for the one-time salt write.
var createSaltFile = filex.CreateFileExclusive

// Store is what the session needs from persistence.
type Store interface {
	Load() (*models.Vault, error)
	Save(v *models.Vault) error
}

// FileStore keeps the vault in two files on the local filesystem.
type FileStore struct {
	vaultPath string
	saltPath  string
}

func New(vaultPath, saltPath string) *FileStore {
	return &FileStore{vaultPath: vaultPath, saltPath: saltPath}
}

func (s *FileStore) VaultPath() string { return s.vaultPath }
func (s *FileStore) SaltPath() string  { return s.saltPath }

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrCorrupt, fmt.Sprintf(format, args...))
}

func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

// Load reads the vault. A missing pair of files yields an empty,
// uninitialized vault.
func (s *FileStore) Load() (*models.Vault, error) {
	data, haveVault, err := readOptional(s.vaultPath)
	if err != nil {
		return nil, err
	}
	salt, haveSalt, err := readOptional(s.saltPath)
	if err != nil {
		return nil, err
	}

	switch {
	case !haveVault && !haveSalt:
		return &models.Vault{}, nil
	case !haveSalt:
		return nil, corrupt("salt file %s is missing", s.saltPath)
	case !haveVault:
		return nil, corrupt("vault file %s is missing but salt exists", s.vaultPath)
	}

	if len(salt) != cryptox.SaltSize {
		return nil, corrupt("salt is %d bytes, want %d", len(salt), cryptox.SaltSize)
	}

	var v models.Vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, corrupt("parse %s: %v", s.vaultPath, err)
	}
	if !v.Initialized() {
		return nil, corrupt("vault file %s has no master verifier", s.vaultPath)
	}
	if err := v.Validate(); err != nil {
		return nil, corrupt("%v", err)
	}

	v.Salt = salt
	return &v, nil
}

// Save persists v. The salt file is written first and only when absent;
// the vault document is then atomically replaced. If that replacement fails
// on the call that created the salt file, the salt file is removed again so
// the store is left as it was.
func (s *FileStore) Save(v *models.Vault) error {
	if len(v.Salt) != cryptox.SaltSize {
		return fmt.Errorf("save vault: salt is %d bytes, want %d", len(v.Salt), cryptox.SaltSize)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("save vault: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}

	created, err := s.ensureSalt(v.Salt)
	if err != nil {
		return err
	}

	if err := filex.WriteFileAtomic(s.vaultPath, data, fileMode); err != nil {
		err = fmt.Errorf("write vault: %w", err)
		if created {
			if rmErr := os.Remove(s.saltPath); rmErr != nil {
				return errors.Join(err, fmt.Errorf("remove new salt: %w", rmErr))
			}
		}
		return err
	}
	return nil
}

// ensureSalt creates the salt file when it is absent, or checks that the
// existing one matches. It reports whether this call created the file.
func (s *FileStore) ensureSalt(salt []byte) (bool, error) {
	present, err := filex.Exists(s.saltPath)
	if err != nil {
		return false, fmt.Errorf("stat salt: %w", err)
	}
	if !present {
		err := createSaltFile(s.saltPath, salt, fileMode)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, filex.ErrExists) {
			return false, fmt.Errorf("write salt: %w", err)
		}
	}

	existing, err := os.ReadFile(s.saltPath)
	if err != nil {
		return false, fmt.Errorf("read salt: %w", err)
	}
	if !bytes.Equal(existing, salt) {
		return false, common.ErrSaltMismatch
	}
	return false, nil
}
