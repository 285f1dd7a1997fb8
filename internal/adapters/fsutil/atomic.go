// Package fsutil holds filesystem helpers shared by the file-backed adapters.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteFileAtomic writes data to path through a temp file in the same directory
// and renames it into place. Readers see the old content or the new one, never
// a partial file; on failure no temp file is left behind.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
		return fmt.Errorf("create directory: %w", mkErr)
	}

	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := f.Write(data); writeErr != nil {
		return errors.Join(fmt.Errorf("write temp file: %w", writeErr), f.Close())
	}
	if syncErr := f.Sync(); syncErr != nil {
		return errors.Join(fmt.Errorf("sync temp file: %w", syncErr), f.Close())
	}
	if closeErr := f.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	if renameErr := os.Rename(tmpPath, path); renameErr != nil {
		return fmt.Errorf("rename into place: %w", renameErr)
	}
	return nil
}
