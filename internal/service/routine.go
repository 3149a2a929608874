// ABOUTME: Routine template services: routines, their exercises and planned sets.
// ABOUTME: Deleting a routine cascades to its exercises and sets in the schema.
package service

import (
	"context"
	"fmt"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

// RoutineService manages routines. Exercise and set methods delegate to the
// routine exercise and routine set services.
type RoutineService struct {
	db        *storage.DB
	exercises *RoutineExerciseService
	sets      *RoutineSetService
}

// Add stores a routine, setting r.ID.
func (s *RoutineService) Add(ctx context.Context, r *models.Routine) error {
	if err := requireName("routine name", r.Name); err != nil {
		return err
	}
	id, err := storage.Insert(ctx, s.db, "INSERT INTO routines (name, note) VALUES (?, ?)", r.Name, r.Note)
	if err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	r.ID = id
	return nil
}

// GetByID returns one routine.
func (s *RoutineService) GetByID(ctx context.Context, id int64) (*models.Routine, error) {
	return getOne(ctx, s.db, scanRoutine, "routine",
		"SELECT "+routineCols+" FROM routines WHERE id = ?", id)
}

// GetAll returns every routine ordered by name.
func (s *RoutineService) GetAll(ctx context.Context) ([]*models.Routine, error) {
	list, err := storage.Select(ctx, s.db, scanRoutine,
		"SELECT "+routineCols+" FROM routines ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return list, nil
}

// Update rewrites name and note.
func (s *RoutineService) Update(ctx context.Context, r *models.Routine) error {
	if err := requireName("routine name", r.Name); err != nil {
		return err
	}
	if err := storage.Update(ctx, s.db,
		"UPDATE routines SET name = ?, note = ? WHERE id = ?", r.Name, r.Note, r.ID); err != nil {
		return fmt.Errorf("update routine: %w", err)
	}
	return nil
}

// Delete removes a routine; its exercises and sets go with it.
func (s *RoutineService) Delete(ctx context.Context, id int64) error {
	err := s.db.InTx(ctx, func(tx *storage.Tx) error {
		supersetIDs, err := storage.Select(ctx, tx, scanInt64,
			`SELECT DISTINCT superset_id FROM routine_exercises
			 WHERE routine_id = ? AND superset_id IS NOT NULL`, id)
		if err != nil {
			return err
		}
		if err := storage.DeleteByID(ctx, tx, storage.TableRoutines, id); err != nil {
			return err
		}
		return releaseContext(ctx, tx, contextRoutine, id, supersetIDs)
	})
	if err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}
	return nil
}

// AddExercise plans an exercise in a routine.
func (s *RoutineService) AddExercise(ctx context.Context, routineID, exerciseID int64, note *string) (*models.RoutineExercise, error) {
	re := &models.RoutineExercise{RoutineID: routineID, ExerciseID: exerciseID, Note: note}
	if err := s.exercises.Add(ctx, re); err != nil {
		return nil, err
	}
	return re, nil
}

// ListExercises returns a routine's planned exercises in order.
func (s *RoutineService) ListExercises(ctx context.Context, routineID int64) ([]*models.RoutineExercise, error) {
	return s.exercises.ListByRoutine(ctx, routineID)
}

// RemoveExercise drops a planned exercise and its sets.
func (s *RoutineService) RemoveExercise(ctx context.Context, routineExerciseID int64) error {
	return s.exercises.Delete(ctx, routineExerciseID)
}

// AddSet plans a set for a routine exercise.
func (s *RoutineService) AddSet(ctx context.Context, rs *models.RoutineSet) error {
	return s.sets.Add(ctx, rs)
}

// ListSets returns the planned sets of a routine exercise.
func (s *RoutineService) ListSets(ctx context.Context, routineExerciseID int64) ([]*models.RoutineSet, error) {
	return s.sets.ListByRoutineExercise(ctx, routineExerciseID)
}

// UpdateSet rewrites a planned set.
func (s *RoutineService) UpdateSet(ctx context.Context, rs *models.RoutineSet) error {
	return s.sets.Update(ctx, rs)
}

// DeleteSet removes a planned set.
func (s *RoutineService) DeleteSet(ctx context.Context, id int64) error {
	return s.sets.Delete(ctx, id)
}

// PlannedExercise is a routine exercise with its definition and planned sets.
type PlannedExercise struct {
	RoutineExercise *models.RoutineExercise `json:"routine_exercise" yaml:"routine_exercise"`
	Exercise        *models.Exercise        `json:"exercise" yaml:"exercise"`
	Superset        *models.Superset        `json:"superset,omitempty" yaml:"superset,omitempty"`
	Sets            []*models.RoutineSet    `json:"sets" yaml:"sets"`
}

// RoutineDetail is a routine with everything planned in it.
type RoutineDetail struct {
	Routine   *models.Routine    `json:"routine" yaml:"routine"`
	Exercises []*PlannedExercise `json:"exercises" yaml:"exercises"`
}

// Detail loads a routine with its exercises, supersets and planned sets.
func (s *RoutineService) Detail(ctx context.Context, id int64) (*RoutineDetail, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	planned, err := s.ListExercises(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &RoutineDetail{Routine: r, Exercises: make([]*PlannedExercise, 0, len(planned))}
	for _, re := range planned {
		pe := &PlannedExercise{RoutineExercise: re}
		pe.Exercise, err = getOne(ctx, s.db, scanExercise, "exercise",
			"SELECT "+exerciseCols+" FROM exercises WHERE id = ?", re.ExerciseID)
		if err != nil {
			return nil, err
		}
		if re.SupersetID != nil {
			pe.Superset, err = getOne(ctx, s.db, scanSuperset, "superset",
				"SELECT "+supersetCols+" FROM supersets WHERE id = ?", *re.SupersetID)
			if err != nil {
				return nil, err
			}
		}
		pe.Sets, err = s.ListSets(ctx, re.ID)
		if err != nil {
			return nil, err
		}
		detail.Exercises = append(detail.Exercises, pe)
	}
	return detail, nil
}

// RoutineExerciseService manages exercises planned in routines.
type RoutineExerciseService struct {
	db *storage.DB
}

// Add stores a routine exercise, setting re.ID.
func (s *RoutineExerciseService) Add(ctx context.Context, re *models.RoutineExercise) error {
	if re.RoutineID == 0 || re.ExerciseID == 0 {
		return fmt.Errorf("%w: routine and exercise are required", ErrInvalid)
	}
	id, err := storage.Insert(ctx, s.db,
		`INSERT INTO routine_exercises (note, routine_id, exercise_id, superset_id)
		 VALUES (?, ?, ?, ?)`,
		re.Note, re.RoutineID, re.ExerciseID, re.SupersetID)
	if err != nil {
		return fmt.Errorf("add exercise to routine: %w", err)
	}
	re.ID = id
	return nil
}

// GetByID returns one routine exercise.
func (s *RoutineExerciseService) GetByID(ctx context.Context, id int64) (*models.RoutineExercise, error) {
	return getOne(ctx, s.db, scanRoutineExercise, "routine exercise",
		"SELECT "+routineExerciseCols+" FROM routine_exercises WHERE id = ?", id)
}

// GetAll returns every routine exercise.
func (s *RoutineExerciseService) GetAll(ctx context.Context) ([]*models.RoutineExercise, error) {
	list, err := storage.Select(ctx, s.db, scanRoutineExercise,
		"SELECT "+routineExerciseCols+" FROM routine_exercises ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list routine exercises: %w", err)
	}
	return list, nil
}

// ListByRoutine returns a routine's exercises in id order.
func (s *RoutineExerciseService) ListByRoutine(ctx context.Context, routineID int64) ([]*models.RoutineExercise, error) {
	list, err := storage.Select(ctx, s.db, scanRoutineExercise,
		"SELECT "+routineExerciseCols+" FROM routine_exercises WHERE routine_id = ? ORDER BY id", routineID)
	if err != nil {
		return nil, fmt.Errorf("list routine exercises: %w", err)
	}
	return list, nil
}

// Update rewrites note, exercise and superset.
func (s *RoutineExerciseService) Update(ctx context.Context, re *models.RoutineExercise) error {
	if err := storage.Update(ctx, s.db,
		"UPDATE routine_exercises SET note = ?, exercise_id = ?, superset_id = ? WHERE id = ?",
		re.Note, re.ExerciseID, re.SupersetID, re.ID); err != nil {
		return fmt.Errorf("update routine exercise: %w", err)
	}
	return nil
}

// AssignSuperset puts a routine exercise into a superset.
func (s *RoutineExerciseService) AssignSuperset(ctx context.Context, id, supersetID int64) error {
	if err := storage.Update(ctx, s.db,
		"UPDATE routine_exercises SET superset_id = ? WHERE id = ?", supersetID, id); err != nil {
		return fmt.Errorf("assign superset: %w", err)
	}
	return nil
}

// ClearSuperset removes a routine exercise from its superset.
func (s *RoutineExerciseService) ClearSuperset(ctx context.Context, id int64) error {
	if err := storage.Update(ctx, s.db,
		"UPDATE routine_exercises SET superset_id = NULL WHERE id = ?", id); err != nil {
		return fmt.Errorf("clear superset: %w", err)
	}
	return nil
}

// Delete removes a routine exercise; its sets cascade.
func (s *RoutineExerciseService) Delete(ctx context.Context, id int64) error {
	if err := storage.DeleteByID(ctx, s.db, storage.TableRoutineExercises, id); err != nil {
		return fmt.Errorf("delete routine exercise: %w", err)
	}
	return nil
}

// RoutineSetService manages planned sets.
type RoutineSetService struct {
	db *storage.DB
}

// Add stores a planned set, setting rs.ID.
func (s *RoutineSetService) Add(ctx context.Context, rs *models.RoutineSet) error {
	if err := validateSet(rs.SetType, rs.Weight, rs.Reps); err != nil {
		return err
	}
	id, err := storage.Insert(ctx, s.db,
		`INSERT INTO routine_sets (set_type, rest, weight, reps, note, routine_exercise_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rs.SetType, rs.Rest, rs.Weight, rs.Reps, rs.Note, rs.RoutineExerciseID)
	if err != nil {
		return fmt.Errorf("add routine set: %w", err)
	}
	rs.ID = id
	return nil
}

// GetByID returns one planned set.
func (s *RoutineSetService) GetByID(ctx context.Context, id int64) (*models.RoutineSet, error) {
	return getOne(ctx, s.db, scanRoutineSet, "routine set",
		"SELECT "+routineSetCols+" FROM routine_sets WHERE id = ?", id)
}

// GetAll returns every planned set.
func (s *RoutineSetService) GetAll(ctx context.Context) ([]*models.RoutineSet, error) {
	list, err := storage.Select(ctx, s.db, scanRoutineSet, "SELECT "+routineSetCols+" FROM routine_sets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list routine sets: %w", err)
	}
	return list, nil
}

// ListByRoutineExercise returns the planned sets of a routine exercise in order.
func (s *RoutineSetService) ListByRoutineExercise(ctx context.Context, routineExerciseID int64) ([]*models.RoutineSet, error) {
	list, err := storage.Select(ctx, s.db, scanRoutineSet,
		"SELECT "+routineSetCols+" FROM routine_sets WHERE routine_exercise_id = ? ORDER BY id", routineExerciseID)
	if err != nil {
		return nil, fmt.Errorf("list routine sets: %w", err)
	}
	return list, nil
}

// Update rewrites a planned set.
func (s *RoutineSetService) Update(ctx context.Context, rs *models.RoutineSet) error {
	if err := validateSet(rs.SetType, rs.Weight, rs.Reps); err != nil {
		return err
	}
	if err := storage.Update(ctx, s.db,
		"UPDATE routine_sets SET set_type = ?, rest = ?, weight = ?, reps = ?, note = ? WHERE id = ?",
		rs.SetType, rs.Rest, rs.Weight, rs.Reps, rs.Note, rs.ID); err != nil {
		return fmt.Errorf("update routine set: %w", err)
	}
	return nil
}

// Delete removes a planned set.
func (s *RoutineSetService) Delete(ctx context.Context, id int64) error {
	if err := storage.DeleteByID(ctx, s.db, storage.TableRoutineSets, id); err != nil {
		return fmt.Errorf("delete routine set: %w", err)
	}
	return nil
}
