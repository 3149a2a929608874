//go:build !windows

// ABOUTME: Atomic file writes on Unix via renameio.
// ABOUTME: Readers never observe a partially written file.
package fsutil

import (
	"os"

	"github.com/google/renameio/v2"
)

// atomicWriteFile writes data to a temp file and renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(path, data, perm)
}
