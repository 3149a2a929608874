// ABOUTME: Tests for database initialization.
// ABOUTME: Verifies schema creation, shared concurrent runs, failure retry and seeding.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/gymlog/internal/prefs"
)

func TestInitCreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tables := append([]string{"superset_counters", "superset_owners"}, tableNames()...)
	for _, table := range tables {
		n, err := Get(ctx, db, func(s Scanner) (int, error) {
			var c int
			err := s.Scan(&c)
			return c, err
		}, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Errorf("Error checking table %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("Table %s does not exist", table)
		}
	}
}

func tableNames() []string {
	out := make([]string, 0, len(Tables))
	for _, tbl := range Tables {
		out = append(out, string(tbl))
	}
	return out
}

func TestInitCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")
	db := New(dbPath, WithSeed(testCatalog()))
	defer db.Close()

	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 3; i++ {
		if err := db.Init(context.Background()); err != nil {
			t.Fatalf("Init #%d failed: %v", i, err)
		}
	}
	if db.InitRuns() != 1 {
		t.Errorf("InitRuns = %d, want 1", db.InitRuns())
	}
}

func TestInitConcurrentCallersShareOneRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	db := newTestDB(t)
	db.migrate = func(ctx context.Context, conn *sql.DB) error {
		once.Do(func() { close(started) })
		<-release
		return runMigrations(ctx, conn)
	}

	const callers = 10
	errs := make(chan error, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- db.Init(context.Background())
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- db.Init(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Init = %v, want nil", err)
		}
	}
	if db.InitRuns() != 1 {
		t.Errorf("InitRuns = %d, want 1", db.InitRuns())
	}
	if !db.Gate().Ready() {
		t.Error("expected gate to be ready")
	}
}

func TestInitFailurePropagatesAndAllowsRetry(t *testing.T) {
	boom := errors.New("disk on fire")
	fail := true

	db := newTestDB(t)
	db.migrate = func(ctx context.Context, conn *sql.DB) error {
		if fail {
			return boom
		}
		return runMigrations(ctx, conn)
	}

	// A query issued before Init is waiting on the gate.
	waiting := make(chan error, 1)
	go func() {
		_, err := Count(context.Background(), db, TableExercises)
		waiting <- err
	}()
	waitForWaiters(t, db.Gate(), 1)

	err := db.Init(context.Background())
	if !errors.Is(err, ErrInit) || !errors.Is(err, boom) {
		t.Fatalf("Init = %v, want ErrInit wrapping the migration error", err)
	}
	if db.Gate().Ready() {
		t.Error("gate ready after failed Init")
	}

	select {
	case err := <-waiting:
		if !errors.Is(err, ErrNotReady) {
			t.Errorf("waiting query = %v, want ErrNotReady", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiting query was not released by the failed Init")
	}

	fail = false
	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("retry Init failed: %v", err)
	}
	if db.InitRuns() != 2 {
		t.Errorf("InitRuns = %d, want 2", db.InitRuns())
	}
}

func TestInitConcurrentFailureSeenByAll(t *testing.T) {
	release := make(chan struct{})
	db := newTestDB(t)
	db.migrate = func(context.Context, *sql.DB) error {
		<-release
		return errors.New("schema rejected")
	}

	const callers = 5
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() { errs <- db.Init(context.Background()) }()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := 0; i < callers; i++ {
		if err := <-errs; !errors.Is(err, ErrInit) {
			t.Errorf("Init = %v, want ErrInit", err)
		}
	}
}

func TestInitCallerContextCancelled(t *testing.T) {
	release := make(chan struct{})
	db := newTestDB(t)
	db.migrate = func(ctx context.Context, conn *sql.DB) error {
		<-release
		return runMigrations(ctx, conn)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := db.Init(ctx); !errors.Is(err, ErrNotReady) {
		t.Errorf("Init = %v, want ErrNotReady", err)
	}

	// The shared run keeps going and completes for later callers.
	close(release)
	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if db.InitRuns() != 1 {
		t.Errorf("InitRuns = %d, want 1", db.InitRuns())
	}
}

func TestInitSeedsExercisesOnce(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "gym.db")
	store := prefs.New(filepath.Join(dir, prefs.FileName))
	ctx := context.Background()

	db, err := Open(ctx, dbPath, WithSeed(testCatalog()), WithPreferences(store))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	n, err := Count(ctx, db, TableExercises)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("exercise count = %d, want 2", n)
	}
	added, _ := store.ExercisesAdded()
	if !added {
		t.Error("expected exercisesAdded to be persisted")
	}
	db.Close()

	// Reopening the same installation does not seed again.
	db, err = Open(ctx, dbPath, WithSeed(testCatalog()), WithPreferences(store))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	n, _ = Count(ctx, db, TableExercises)
	if n != 2 {
		t.Errorf("exercise count after reopen = %d, want 2", n)
	}
}

func TestQueryWaitsForInit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	result := make(chan error, 1)
	go func() {
		_, err := Select(ctx, db, scanName, "SELECT id, name FROM exercises")
		result <- err
	}()
	waitForWaiters(t, db.Gate(), 1)

	if err := db.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("Select = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Select did not resume after Init")
	}
}

func TestQueryBeforeInitTimesOut(t *testing.T) {
	db := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Select(ctx, db, scanName, "SELECT id, name FROM exercises")
	if !errors.Is(err, ErrNotReady) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Select = %v, want ErrNotReady wrapping DeadlineExceeded", err)
	}
}

func TestDefaultDBPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)

	path := DefaultDBPath()
	expected := filepath.Join(tmpDir, "gymlog", "gymlog.db")
	if path != expected {
		t.Errorf("DefaultDBPath() = %s, want %s", path, expected)
	}
}
