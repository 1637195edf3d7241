//go:build windows

package fsutil

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// RemoveFile removes path. A missing file is not an error.
//
// Editors and sync clients on Windows often leave the read-only attribute
// set or hold a handle for a moment, so the attribute is cleared first and
// removal is retried briefly.
func RemoveFile(path string) error {
	if path == "" {
		return nil
	}

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	if attrs, err := windows.GetFileAttributes(p); err == nil && attrs&windows.FILE_ATTRIBUTE_READONLY != 0 {
		_ = windows.SetFileAttributes(p, attrs&^windows.FILE_ATTRIBUTE_READONLY)
	}

	var lastErr error
	for i := 0; i < 10; i++ {
		err := os.Remove(path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		lastErr = err
		time.Sleep(100 * time.Millisecond)
	}
	return lastErr
}
