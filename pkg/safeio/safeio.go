// Package safeio provides path hygiene and all-or-nothing file writes
// for the manifest and export files.
package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CleanUserPath cleans a user-provided path and rejects traversal
// attempts. Returns paths with forward slashes for cross-platform
// consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.Clean(p)
	if strings.Contains(c, "..") {
		return "", errors.New("path traversal detected")
	}
	return filepath.ToSlash(c), nil
}

// WriteFileAtomic writes data to a temporary file in the target's
// directory and renames it into place, so readers never observe a
// half-written file. An existing file keeps its mode.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if st, err := os.Stat(path); err == nil {
		if mode := st.Mode() & 0o777; mode != 0 {
			perm = mode
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// RotateBackups shifts existing backups of path up one slot under
// backupDir (name.1bak .. name.Nbak, oldest last) and moves the current
// file into the first slot. count 0 disables backups entirely.
func RotateBackups(path, backupDir string, count int) error {
	if count <= 0 {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return err
	}

	base := filepath.Join(backupDir, filepath.Base(path))
	slot := func(i int) string { return fmt.Sprintf("%s.%dbak", base, i) }

	if _, err := os.Stat(slot(count)); err == nil {
		if err := os.Remove(slot(count)); err != nil {
			return err
		}
	}
	for i := count - 1; i >= 1; i-- {
		if _, err := os.Stat(slot(i)); err == nil {
			if err := os.Rename(slot(i), slot(i+1)); err != nil {
				return err
			}
		}
	}

	return os.Rename(path, slot(1))
}
