// ABOUTME: Tests for database export, import and delete.
// ABOUTME: Round-trips a snapshot through the live database file.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := Insert(ctx, db, "INSERT INTO routines (name) VALUES (?)", "Pull Day"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	backup := filepath.Join(t.TempDir(), "backups", "gym.db")
	if err := db.Export(ctx, backup); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	// Exporting twice to the same path replaces the file.
	if err := db.Export(ctx, backup); err != nil {
		t.Fatalf("second Export failed: %v", err)
	}

	if _, err := Insert(ctx, db, "INSERT INTO routines (name) VALUES (?)", "After Backup"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := db.Import(ctx, backup); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if !db.Gate().Ready() {
		t.Error("expected gate ready after Import")
	}

	rows, err := Select(ctx, db, scanName, "SELECT id, name FROM routines")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Pull Day" {
		t.Errorf("routines after import = %+v, want only Pull Day", rows)
	}
}

func TestImportRejectsNonSQLite(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	bogus := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(bogus, []byte("definitely not a database"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := db.Import(ctx, bogus); err == nil {
		t.Fatal("expected Import to reject a non-SQLite file")
	}
	// The live database is untouched.
	if _, err := Count(ctx, db, TableExercises); err != nil {
		t.Errorf("Count after rejected import failed: %v", err)
	}
}

func TestDeleteRemovesFileAndReseeds(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := Insert(ctx, db, "INSERT INTO routines (name) VALUES (?)", "Gone Soon"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := db.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(db.Path()); !os.IsNotExist(err) {
		t.Errorf("database file still present: %v", err)
	}
	if db.Gate().Ready() {
		t.Error("expected gate not ready after Delete")
	}

	if err := db.Init(ctx); err != nil {
		t.Fatalf("Init after Delete failed: %v", err)
	}
	routines, _ := Count(ctx, db, TableRoutines)
	if routines != 0 {
		t.Errorf("routine count = %d, want 0", routines)
	}
	exercises, _ := Count(ctx, db, TableExercises)
	if exercises != 2 {
		t.Errorf("exercise count = %d, want 2 (reseeded)", exercises)
	}
}
