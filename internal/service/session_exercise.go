// ABOUTME: Session exercise service: exercises attached to a workout.
// ABOUTME: Also assigns and clears superset membership.
package service

import (
	"context"
	"fmt"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

// SessionExerciseService manages exercises performed within workouts.
type SessionExerciseService struct {
	db *storage.DB
}

// Add attaches an exercise to a workout, setting se.ID.
func (s *SessionExerciseService) Add(ctx context.Context, se *models.SessionExercise) error {
	if se.WorkoutID == 0 || se.ExerciseID == 0 {
		return fmt.Errorf("%w: workout and exercise are required", ErrInvalid)
	}
	if err := insertSessionExercise(ctx, s.db, se); err != nil {
		return fmt.Errorf("add exercise to workout: %w", err)
	}
	return nil
}

func insertSessionExercise(ctx context.Context, h storage.Handle, se *models.SessionExercise) error {
	id, err := storage.Insert(ctx, h,
		`INSERT INTO session_exercises (note, session_id, exercise_id, superset_id)
		 VALUES (?, ?, ?, ?)`,
		se.Note, se.WorkoutID, se.ExerciseID, se.SupersetID)
	if err != nil {
		return err
	}
	se.ID = id
	return nil
}

// GetByID returns one session exercise.
func (s *SessionExerciseService) GetByID(ctx context.Context, id int64) (*models.SessionExercise, error) {
	return getOne(ctx, s.db, scanSessionExercise, "session exercise",
		"SELECT "+sessionExerciseCols+" FROM session_exercises WHERE id = ?", id)
}

// GetAll returns every session exercise.
func (s *SessionExerciseService) GetAll(ctx context.Context) ([]*models.SessionExercise, error) {
	list, err := storage.Select(ctx, s.db, scanSessionExercise,
		"SELECT "+sessionExerciseCols+" FROM session_exercises ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list session exercises: %w", err)
	}
	return list, nil
}

// ListByWorkout returns the exercises of a workout in the order they were added.
func (s *SessionExerciseService) ListByWorkout(ctx context.Context, workoutID int64) ([]*models.SessionExercise, error) {
	list, err := storage.Select(ctx, s.db, scanSessionExercise,
		"SELECT "+sessionExerciseCols+" FROM session_exercises WHERE session_id = ? ORDER BY id", workoutID)
	if err != nil {
		return nil, fmt.Errorf("list session exercises: %w", err)
	}
	return list, nil
}

// Update rewrites note, exercise and superset.
func (s *SessionExerciseService) Update(ctx context.Context, se *models.SessionExercise) error {
	err := storage.Update(ctx, s.db,
		"UPDATE session_exercises SET note = ?, exercise_id = ?, superset_id = ? WHERE id = ?",
		se.Note, se.ExerciseID, se.SupersetID, se.ID)
	if err != nil {
		return fmt.Errorf("update session exercise: %w", err)
	}
	return nil
}

// AssignSuperset puts a session exercise into a superset.
func (s *SessionExerciseService) AssignSuperset(ctx context.Context, id, supersetID int64) error {
	if err := storage.Update(ctx, s.db,
		"UPDATE session_exercises SET superset_id = ? WHERE id = ?", supersetID, id); err != nil {
		return fmt.Errorf("assign superset: %w", err)
	}
	return nil
}

// ClearSuperset removes a session exercise from its superset.
func (s *SessionExerciseService) ClearSuperset(ctx context.Context, id int64) error {
	if err := storage.Update(ctx, s.db,
		"UPDATE session_exercises SET superset_id = NULL WHERE id = ?", id); err != nil {
		return fmt.Errorf("clear superset: %w", err)
	}
	return nil
}

// Delete removes a session exercise and its sets.
func (s *SessionExerciseService) Delete(ctx context.Context, id int64) error {
	err := s.db.InTx(ctx, func(tx *storage.Tx) error {
		if err := storage.DeleteWhere(ctx, tx, storage.TableSets, "session_exercise_id = ?", id); err != nil {
			return err
		}
		return storage.DeleteByID(ctx, tx, storage.TableSessionExercises, id)
	})
	if err != nil {
		return fmt.Errorf("delete session exercise: %w", err)
	}
	return nil
}
