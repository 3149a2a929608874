// ABOUTME: Exercise catalog service with an in-memory lookup cache.
// ABOUTME: Counting type is fixed at creation; updates never change it.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maypok86/otter/v2"

	"github.com/harperreed/gymlog/internal/metrics"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

// ExerciseService manages exercise definitions and their statistics.
type ExerciseService struct {
	db     *storage.DB
	cache  *otter.Cache[int64, models.Exercise]
	logger *log.Logger
}

func newExerciseService(db *storage.DB, cacheSize int, logger *log.Logger) (*ExerciseService, error) {
	c, err := otter.New(&otter.Options[int64, models.Exercise]{
		MaximumSize: cacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create exercise cache: %w", err)
	}
	return &ExerciseService{db: db, cache: c, logger: logger}, nil
}

// Add validates and stores an exercise, setting its ID.
func (s *ExerciseService) Add(ctx context.Context, e *models.Exercise) error {
	if err := validateExercise(e); err != nil {
		return err
	}

	id, err := storage.Insert(ctx, s.db,
		`INSERT INTO exercises (name, counting_type, muscle_group, note, active)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Name, e.CountingType, e.MuscleGroup, e.Note, e.Active)
	if err != nil {
		return fmt.Errorf("create exercise: %w", err)
	}
	e.ID = id
	return nil
}

// GetByID returns an exercise, served from cache when possible.
func (s *ExerciseService) GetByID(ctx context.Context, id int64) (*models.Exercise, error) {
	if e, ok := s.cache.GetIfPresent(id); ok {
		metrics.ExerciseCacheLookups.WithLabelValues("hit").Inc()
		return e.Clone(), nil
	}
	metrics.ExerciseCacheLookups.WithLabelValues("miss").Inc()

	e, err := getOne(ctx, s.db, scanExercise, "exercise",
		"SELECT "+exerciseCols+" FROM exercises WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id, *e.Clone())
	return e, nil
}

// FindByName returns the exercise whose name matches case-insensitively.
func (s *ExerciseService) FindByName(ctx context.Context, name string) (*models.Exercise, error) {
	e, err := storage.Get(ctx, s.db, scanExercise,
		"SELECT "+exerciseCols+" FROM exercises WHERE name = ? COLLATE NOCASE ORDER BY id LIMIT 1",
		strings.TrimSpace(name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("exercise %q: %w", name, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find exercise: %w", err)
	}
	return e, nil
}

// GetAll returns every exercise ordered by name.
func (s *ExerciseService) GetAll(ctx context.Context) ([]*models.Exercise, error) {
	exercises, err := storage.Select(ctx, s.db, scanExercise,
		"SELECT "+exerciseCols+" FROM exercises ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// GetActive returns active exercises ordered by name.
func (s *ExerciseService) GetActive(ctx context.Context) ([]*models.Exercise, error) {
	exercises, err := storage.Select(ctx, s.db, scanExercise,
		"SELECT "+exerciseCols+" FROM exercises WHERE active = 1 ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("list active exercises: %w", err)
	}
	return exercises, nil
}

// Update rewrites name, muscle group, note and active. The stored counting
// type is kept whatever e carries.
func (s *ExerciseService) Update(ctx context.Context, e *models.Exercise) error {
	if err := requireName("exercise name", e.Name); err != nil {
		return err
	}
	defer s.cache.Invalidate(e.ID)

	err := storage.Update(ctx, s.db,
		"UPDATE exercises SET name = ?, muscle_group = ?, note = ?, active = ? WHERE id = ?",
		e.Name, e.MuscleGroup, e.Note, e.Active, e.ID)
	if err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}
	return nil
}

// SetActive archives or restores an exercise.
func (s *ExerciseService) SetActive(ctx context.Context, id int64, active bool) error {
	defer s.cache.Invalidate(id)

	if err := storage.Update(ctx, s.db, "UPDATE exercises SET active = ? WHERE id = ?", active, id); err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}
	return nil
}

// Delete removes an exercise along with every session exercise, set,
// routine exercise and routine set that references it.
func (s *ExerciseService) Delete(ctx context.Context, id int64) error {
	defer s.cache.Invalidate(id)

	err := s.db.InTx(ctx, func(tx *storage.Tx) error {
		if err := storage.DeleteWhere(ctx, tx, storage.TableSets,
			"session_exercise_id IN (SELECT id FROM session_exercises WHERE exercise_id = ?)", id); err != nil {
			return err
		}
		if err := storage.DeleteWhere(ctx, tx, storage.TableSessionExercises, "exercise_id = ?", id); err != nil {
			return err
		}
		if err := storage.DeleteWhere(ctx, tx, storage.TableRoutineSets,
			"routine_exercise_id IN (SELECT id FROM routine_exercises WHERE exercise_id = ?)", id); err != nil {
			return err
		}
		if err := storage.DeleteWhere(ctx, tx, storage.TableRoutineExercises, "exercise_id = ?", id); err != nil {
			return err
		}
		return storage.DeleteByID(ctx, tx, storage.TableExercises, id)
	})
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	return nil
}

// Purge drops every cached exercise.
func (s *ExerciseService) Purge() {
	s.cache.InvalidateAll()
}

func validateExercise(e *models.Exercise) error {
	if err := requireName("exercise name", e.Name); err != nil {
		return err
	}
	if !models.IsValidCountingType(string(e.CountingType)) {
		return fmt.Errorf("%w: counting type %q (valid: reps, time)", ErrInvalid, e.CountingType)
	}
	return nil
}
