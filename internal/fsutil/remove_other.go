//go:build !windows

package fsutil

import (
	"errors"
	"os"
)

// RemoveFile removes path. A missing file is not an error.
func RemoveFile(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
