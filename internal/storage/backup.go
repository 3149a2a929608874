// ABOUTME: Whole-database backup operations: export, import and delete.
// ABOUTME: Import and delete close the connection and reset the readiness gate.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/harperreed/gymlog/internal/fsutil"
	"github.com/harperreed/gymlog/internal/metrics"
)

var sqliteHeader = []byte("SQLite format 3\x00")

// Export writes a consistent copy of the database to dst.
func (d *DB) Export(ctx context.Context, dst string) error {
	defer track(metrics.OpExport)()

	q, err := d.conn(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return fmt.Errorf("%w: create backup directory: %w", ErrWrite, err)
	}

	// VACUUM INTO refuses to overwrite, so write beside dst and rename.
	tmp := dst + ".partial"
	_ = os.Remove(tmp)
	if _, err := q.ExecContext(ctx, "VACUUM INTO ?", tmp); err != nil {
		_ = os.Remove(tmp)
		return fail(d, metrics.OpExport, ErrRead, "VACUUM INTO", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: move backup into place: %w", ErrWrite, err)
	}

	d.logger.Info("exported database", "dst", dst)
	return nil
}

// Import replaces the database with the SQLite file at src and re-initializes.
func (d *DB) Import(ctx context.Context, src string) error {
	defer track(metrics.OpImport)()

	if err := checkSQLiteFile(src); err != nil {
		metrics.StorageOpErrors.WithLabelValues(metrics.OpImport).Inc()
		return err
	}

	d.mu.Lock()
	d.gate.Reset()
	err := d.closeLocked()
	if err == nil {
		removeSideFiles(d.path)
		err = fsutil.CopyFile(src, d.path, 0600)
	}
	d.mu.Unlock()
	if err != nil {
		metrics.StorageOpErrors.WithLabelValues(metrics.OpImport).Inc()
		return fmt.Errorf("%w: import %s: %w", ErrWrite, src, err)
	}

	d.logger.Info("imported database", "src", src)
	return d.Init(ctx)
}

// Delete closes and removes the database file. Default exercises are seeded
// again on the next Init.
func (d *DB) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	d.gate.Reset()
	err := d.closeLocked()
	if err == nil {
		err = removeFile(d.path)
		removeSideFiles(d.path)
	}
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: delete database: %w", ErrWrite, err)
	}

	if err := d.prefs.SetExercisesAdded(false); err != nil {
		return fmt.Errorf("reset seeding flag: %w", err)
	}
	d.logger.Info("deleted database", "path", d.path)
	return nil
}

func checkSQLiteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, sqliteHeader) {
		return fmt.Errorf("%s is not a SQLite database", path)
	}
	return nil
}

func removeSideFiles(path string) {
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		_ = removeFile(path + suffix)
	}
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
