// Package filex holds the file primitives the vault store relies on:
// directory bootstrap, atomic replacement and exclusive creation.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrExists is returned by CreateFileExclusive when the target is present.
var ErrExists = errors.New("file already exists")

// link is swapped in tests to simulate filesystems without hard links.
var link = os.Link

// EnsureDir creates dir (and parents) with owner-only permissions.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// Exists reports whether path exists. Errors other than "not exist" are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// writeTemp writes data to a synced temp file next to path and returns its name.
func writeTemp(path string, data []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	name := f.Name()

	fail := func(err error) (string, error) {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}

	if err := f.Chmod(perm); err != nil {
		return fail(fmt.Errorf("chmod temp: %w", err))
	}
	if _, err := f.Write(data); err != nil {
		return fail(fmt.Errorf("write temp: %w", err))
	}
	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("sync temp: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close temp: %w", err)
	}
	return name, nil
}

// WriteFileAtomic replaces path with data. Readers see either the old
// content or the new one, never a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := writeTemp(path, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	syncDir(filepath.Dir(path))
	return nil
}

// CreateFileExclusive writes data to path only if path does not exist yet.
// The content is written to a temp file and hard-linked into place, so it
// is complete before it becomes visible under path. Where hard links are
// unavailable it falls back to an O_EXCL create. An existing file is never
// touched and ErrExists is returned.
func CreateFileExclusive(path string, data []byte, perm os.FileMode) error {
	tmp, err := writeTemp(path, data, perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := link(tmp, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrExists
		}
		if err := writeExclusive(path, data, perm); err != nil {
			return err
		}
	}
	syncDir(filepath.Dir(path))
	return nil
}

func writeExclusive(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrExists
		}
		return fmt.Errorf("create %s: %w", path, err)
	}

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// syncDir flushes directory metadata so a rename survives a crash. Not all
// platforms support it; failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
