// ABOUTME: SQLite database handle and lifecycle management for gymlog.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"github.com/harperreed/gymlog/internal/logging"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/prefs"
	"github.com/harperreed/gymlog/internal/seed"
)

// DBFileName is the database file name inside the data directory.
const DBFileName = "gymlog.db"

// pragmas are applied to every pooled connection.
const pragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// SeedTracker persists whether the default exercises have been inserted.
type SeedTracker interface {
	ExercisesAdded() (bool, error)
	SetExercisesAdded(added bool) error
}

// DB is the gymlog database. Construct it with New, then call Init.
// Every query helper waits on its readiness gate.
type DB struct {
	path    string
	logger  *log.Logger
	prefs   SeedTracker
	seed    func() ([]*models.Exercise, error)
	migrate func(context.Context, *sql.DB) error

	gate     *Gate
	inflight singleflight.Group
	initRuns atomic.Int64

	mu sync.RWMutex
	db *sql.DB
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for storage failures.
func WithLogger(l *log.Logger) Option {
	return func(d *DB) { d.logger = l }
}

// WithPreferences sets where the seeding flag is kept.
func WithPreferences(p SeedTracker) Option {
	return func(d *DB) { d.prefs = p }
}

// WithSeed replaces the bundled default exercise catalog.
func WithSeed(exercises []*models.Exercise) Option {
	return func(d *DB) {
		d.seed = func() ([]*models.Exercise, error) { return exercises, nil }
	}
}

// New creates a DB for the file at path without touching the disk.
// Preferences default to preferences.json next to the database file.
func New(path string, opts ...Option) *DB {
	d := &DB{
		path:    path,
		logger:  logging.Discard(),
		seed:    seed.DefaultExercises,
		migrate: runMigrations,
		gate:    NewGate(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.prefs == nil {
		d.prefs = prefs.New(filepath.Join(filepath.Dir(path), prefs.FileName))
	}
	return d
}

// Open creates a DB and runs Init.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	d := New(path, opts...)
	if err := d.Init(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gymlog")
}

// DefaultDBPath returns the default database path following XDG spec.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), DBFileName)
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Gate returns the readiness gate.
func (d *DB) Gate() *Gate {
	return d.gate
}

// InitRuns returns how many times the initialization sequence has executed.
func (d *DB) InitRuns() int64 {
	return d.initRuns.Load()
}

// Logger returns the storage logger.
func (d *DB) Logger() *log.Logger {
	return d.logger
}

// Close closes the connection. Later queries wait for a new Init.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gate.Reset()
	return d.closeLocked()
}

func (d *DB) closeLocked() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// sqlDB waits for readiness and returns the live connection pool.
func (d *DB) sqlDB(ctx context.Context) (*sql.DB, error) {
	if err := d.gate.Wait(ctx); err != nil {
		if err == ErrNotReady {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return nil, ErrNotReady
	}
	return d.db, nil
}

func (d *DB) conn(ctx context.Context) (querier, error) {
	return d.sqlDB(ctx)
}

func (d *DB) log() *log.Logger {
	return d.logger
}

// openSQLite opens the file with a single connection; SQLite has one writer.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := os.Chmod(path, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}
	return db, nil
}
