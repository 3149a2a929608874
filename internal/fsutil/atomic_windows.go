//go:build windows

// ABOUTME: File writes on Windows, where renameio is unavailable.
// ABOUTME: Falls back to a plain write.
package fsutil

import "os"

// atomicWriteFile writes data to path. Rename-over is not atomic on Windows.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}
