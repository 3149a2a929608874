// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Provides setupTestDB for creating isolated test database instances.
package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harperreed/gymlog/internal/models"
)

func testCatalog() []*models.Exercise {
	return []*models.Exercise{
		models.NewExercise("Bench Press", models.CountingReps).WithMuscleGroup("chest"),
		models.NewExercise("Plank", models.CountingTime),
	}
}

// newTestDB returns a DB in a temp dir that has not been initialized.
func newTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	opts = append([]Option{WithSeed(testCatalog())}, opts...)
	db := New(filepath.Join(t.TempDir(), "test.db"), opts...)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	db := newTestDB(t, opts...)
	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	return db
}

type nameRow struct {
	ID   int64
	Name string
}

func scanName(s Scanner) (nameRow, error) {
	var r nameRow
	err := s.Scan(&r.ID, &r.Name)
	return r, err
}
