// ABOUTME: Superset service, including automatic per-workout and per-routine numbering.
// ABOUTME: Numbers come from a high-water mark so they are never reused.
package service

import (
	"context"
	"fmt"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

// Numbering contexts in superset_counters.
const (
	contextWorkout = "workout"
	contextRoutine = "routine"
)

// SupersetService manages supersets.
type SupersetService struct {
	db *storage.DB
}

// Add stores a superset with an explicit number, setting ss.ID.
func (s *SupersetService) Add(ctx context.Context, ss *models.Superset) error {
	if ss.Number < 1 {
		return fmt.Errorf("%w: superset number must be positive", ErrInvalid)
	}
	if err := insertSuperset(ctx, s.db, ss); err != nil {
		return fmt.Errorf("create superset: %w", err)
	}
	return nil
}

func insertSuperset(ctx context.Context, h storage.Handle, ss *models.Superset) error {
	id, err := storage.Insert(ctx, h, "INSERT INTO supersets (number, note) VALUES (?, ?)", ss.Number, ss.Note)
	if err != nil {
		return err
	}
	ss.ID = id
	return nil
}

// GetByID returns one superset.
func (s *SupersetService) GetByID(ctx context.Context, id int64) (*models.Superset, error) {
	return getOne(ctx, s.db, scanSuperset, "superset",
		"SELECT "+supersetCols+" FROM supersets WHERE id = ?", id)
}

// GetAll returns every superset.
func (s *SupersetService) GetAll(ctx context.Context) ([]*models.Superset, error) {
	list, err := storage.Select(ctx, s.db, scanSuperset, "SELECT "+supersetCols+" FROM supersets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list supersets: %w", err)
	}
	return list, nil
}

// ListByWorkout returns the supersets used by a workout's exercises.
func (s *SupersetService) ListByWorkout(ctx context.Context, workoutID int64) ([]*models.Superset, error) {
	list, err := storage.Select(ctx, s.db, scanSuperset,
		`SELECT `+supersetCols+` FROM supersets WHERE id IN (
			SELECT superset_id FROM session_exercises WHERE session_id = ?
		) ORDER BY number`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("list workout supersets: %w", err)
	}
	return list, nil
}

// ListByRoutine returns the supersets used by a routine's exercises.
func (s *SupersetService) ListByRoutine(ctx context.Context, routineID int64) ([]*models.Superset, error) {
	list, err := storage.Select(ctx, s.db, scanSuperset,
		`SELECT `+supersetCols+` FROM supersets WHERE id IN (
			SELECT superset_id FROM routine_exercises WHERE routine_id = ?
		) ORDER BY number`, routineID)
	if err != nil {
		return nil, fmt.Errorf("list routine supersets: %w", err)
	}
	return list, nil
}

// Update rewrites number and note.
func (s *SupersetService) Update(ctx context.Context, ss *models.Superset) error {
	if err := storage.Update(ctx, s.db,
		"UPDATE supersets SET number = ?, note = ? WHERE id = ?", ss.Number, ss.Note, ss.ID); err != nil {
		return fmt.Errorf("update superset: %w", err)
	}
	return nil
}

// Delete detaches every member exercise and removes the superset.
func (s *SupersetService) Delete(ctx context.Context, id int64) error {
	err := s.db.InTx(ctx, func(tx *storage.Tx) error {
		if err := storage.Update(ctx, tx,
			"UPDATE session_exercises SET superset_id = NULL WHERE superset_id = ?", id); err != nil {
			return err
		}
		if err := storage.Update(ctx, tx,
			"UPDATE routine_exercises SET superset_id = NULL WHERE superset_id = ?", id); err != nil {
			return err
		}
		return storage.DeleteByID(ctx, tx, storage.TableSupersets, id)
	})
	if err != nil {
		return fmt.Errorf("delete superset: %w", err)
	}
	return nil
}

// CreateForWorkout creates the next-numbered superset of a workout.
func (s *SupersetService) CreateForWorkout(ctx context.Context, workoutID int64, note *string) (*models.Superset, error) {
	if _, err := getOne(ctx, s.db, scanInt64, "workout", "SELECT id FROM workouts WHERE id = ?", workoutID); err != nil {
		return nil, err
	}
	return s.createNumbered(ctx, contextWorkout, workoutID,
		`SELECT COALESCE(MAX(ss.number), 0) FROM supersets ss
		 JOIN session_exercises se ON se.superset_id = ss.id
		 WHERE se.session_id = ?`, note)
}

// CreateForRoutine creates the next-numbered superset of a routine.
func (s *SupersetService) CreateForRoutine(ctx context.Context, routineID int64, note *string) (*models.Superset, error) {
	if _, err := getOne(ctx, s.db, scanInt64, "routine", "SELECT id FROM routines WHERE id = ?", routineID); err != nil {
		return nil, err
	}
	return s.createNumbered(ctx, contextRoutine, routineID,
		`SELECT COALESCE(MAX(ss.number), 0) FROM supersets ss
		 JOIN routine_exercises re ON re.superset_id = ss.id
		 WHERE re.routine_id = ?`, note)
}

// createNumbered bumps the context counter past both its previous value and
// the highest number in use, then inserts the superset, all in one transaction.
func (s *SupersetService) createNumbered(ctx context.Context, kind string, contextID int64, maxInUse string, note *string) (*models.Superset, error) {
	ss := &models.Superset{Note: note}
	err := s.db.InTx(ctx, func(tx *storage.Tx) error {
		inUse, err := storage.Get(ctx, tx, scanInt64, maxInUse, contextID)
		if err != nil {
			return err
		}
		if err := storage.Update(ctx, tx,
			`INSERT INTO superset_counters (context_kind, context_id, last_number)
			 VALUES (?, ?, ?)
			 ON CONFLICT (context_kind, context_id)
			 DO UPDATE SET last_number = MAX(last_number, ?) + 1`,
			kind, contextID, inUse+1, inUse); err != nil {
			return err
		}
		next, err := storage.Get(ctx, tx, scanInt64,
			"SELECT last_number FROM superset_counters WHERE context_kind = ? AND context_id = ?", kind, contextID)
		if err != nil {
			return err
		}
		ss.Number = int(next)
		if err := insertSuperset(ctx, tx, ss); err != nil {
			return err
		}
		return storage.Update(ctx, tx,
			"INSERT INTO superset_owners (superset_id, context_kind, context_id) VALUES (?, ?, ?)",
			ss.ID, kind, contextID)
	})
	if err != nil {
		return nil, fmt.Errorf("create %s superset: %w", kind, err)
	}
	return ss, nil
}

// deleteUnreferencedSupersets removes the given supersets if no exercise uses them.
func deleteUnreferencedSupersets(ctx context.Context, h storage.Handle, ids []int64) error {
	for _, id := range ids {
		if err := storage.DeleteWhere(ctx, h, storage.TableSupersets,
			`id = ?
			 AND NOT EXISTS (SELECT 1 FROM session_exercises WHERE superset_id = ?)
			 AND NOT EXISTS (SELECT 1 FROM routine_exercises WHERE superset_id = ?)`,
			id, id, id); err != nil {
			return err
		}
	}
	return nil
}

// releaseContext cleans up after a workout or routine is deleted. Supersets
// that were members, or that were created for it and never assigned, are
// removed unless another exercise still uses them.
func releaseContext(ctx context.Context, h storage.Handle, kind string, contextID int64, members []int64) error {
	owned, err := storage.Select(ctx, h, scanInt64,
		"SELECT superset_id FROM superset_owners WHERE context_kind = ? AND context_id = ?", kind, contextID)
	if err != nil {
		return err
	}
	if err := storage.Update(ctx, h,
		"DELETE FROM superset_owners WHERE context_kind = ? AND context_id = ?", kind, contextID); err != nil {
		return err
	}
	if err := deleteUnreferencedSupersets(ctx, h, append(members, owned...)); err != nil {
		return err
	}
	return storage.Update(ctx, h,
		"DELETE FROM superset_counters WHERE context_kind = ? AND context_id = ?", kind, contextID)
}
