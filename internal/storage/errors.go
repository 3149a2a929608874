// ABOUTME: Sentinel error kinds returned by the storage layer.
// ABOUTME: Callers match them with errors.Is.
package storage

import "errors"

var (
	// ErrInit means the initialization sequence failed.
	ErrInit = errors.New("database initialization failed")
	// ErrNotReady means the caller gave up waiting for initialization, or it failed.
	ErrNotReady = errors.New("database not ready")
	// ErrRead wraps a failed query.
	ErrRead = errors.New("database read failed")
	// ErrWrite wraps a failed insert, update, delete or commit.
	ErrWrite = errors.New("database write failed")
	// ErrNotFound means a single-row lookup matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrUnknownTable means a table name outside the fixed schema was used.
	ErrUnknownTable = errors.New("unknown table")
)
