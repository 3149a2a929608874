// ABOUTME: Database initialization: open, migrate, seed, then open the gate.
// ABOUTME: Concurrent callers share one in-flight run.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/harperreed/gymlog/internal/metrics"
)

//go:embed migrations/*.sql
var migrations embed.FS

const initKey = "init"

// Init prepares the database and marks it ready. It is idempotent once it
// has succeeded. Callers that arrive while a run is in flight share its
// result; a failed run is forgotten so the next call retries.
func (d *DB) Init(ctx context.Context) error {
	if d.gate.Ready() {
		return nil
	}

	// The shared run must not be cancelled by whichever caller started it.
	runCtx := context.WithoutCancel(ctx)
	ch := d.inflight.DoChan(initKey, func() (any, error) {
		return nil, d.runInit(runCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
	}
}

func (d *DB) runInit(ctx context.Context) error {
	if d.gate.Ready() {
		return nil
	}
	d.initRuns.Add(1)
	metrics.InitRuns.Inc()
	d.logger.Debug("initializing database", "path", d.path)

	conn, err := openSQLite(ctx, d.path)
	if err != nil {
		return d.initFailed(nil, err)
	}
	if err := d.migrate(ctx, conn); err != nil {
		return d.initFailed(conn, fmt.Errorf("migrations: %w", err))
	}
	if err := d.seedDefaults(ctx, conn); err != nil {
		return d.initFailed(conn, fmt.Errorf("seed exercises: %w", err))
	}

	d.mu.Lock()
	if d.db != nil && d.db != conn {
		_ = d.db.Close()
	}
	d.db = conn
	d.mu.Unlock()

	d.gate.MarkReady()
	d.logger.Debug("database ready", "path", d.path)
	return nil
}

func (d *DB) initFailed(conn *sql.DB, err error) error {
	if conn != nil {
		_ = conn.Close()
	}
	d.gate.Reset()
	metrics.StorageOpErrors.WithLabelValues(metrics.OpInit).Inc()
	d.logger.Error("database initialization failed", "path", d.path, "err", err)
	return fmt.Errorf("%w: %w", ErrInit, err)
}

// runMigrations applies embedded SQL migrations using goose.
// fs.Sub strips the "migrations/" prefix so goose sees files at the FS root.
func runMigrations(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("sub fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	_, err = provider.Up(ctx)
	return err
}

const insertExerciseSQL = `
	INSERT INTO exercises (name, counting_type, muscle_group, note, active)
	VALUES (?, ?, ?, ?, ?)
`

// seedDefaults inserts the bundled exercises once per installation.
func (d *DB) seedDefaults(ctx context.Context, conn *sql.DB) error {
	added, err := d.prefs.ExercisesAdded()
	if err != nil {
		return fmt.Errorf("read preferences: %w", err)
	}
	if added {
		return nil
	}

	exercises, err := d.seed()
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, e := range exercises {
		if _, err := tx.ExecContext(ctx, insertExerciseSQL,
			e.Name, string(e.CountingType), e.MuscleGroup, e.Note, e.Active,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %q: %w", e.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if err := d.prefs.SetExercisesAdded(true); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	d.logger.Info("seeded default exercises", "count", len(exercises))
	return nil
}
