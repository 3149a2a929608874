// ABOUTME: Workout service: logged sessions, their cleanup and routine materialization.
// ABOUTME: Deleting a workout removes its session exercises, sets and private supersets.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

// WorkoutService manages workouts.
type WorkoutService struct {
	db     *storage.DB
	now    func() time.Time
	logger *log.Logger
}

// Add stores a workout. An empty date or time is stamped from the clock.
func (s *WorkoutService) Add(ctx context.Context, w *models.Workout) error {
	return s.add(ctx, s.db, w)
}

// Start creates a workout stamped now.
func (s *WorkoutService) Start(ctx context.Context, note *string) (*models.Workout, error) {
	w := models.NewWorkout(s.now())
	w.Note = note
	if err := s.Add(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WorkoutService) add(ctx context.Context, h storage.Handle, w *models.Workout) error {
	stamp := models.NewWorkout(s.now())
	if w.Date == "" {
		w.Date = stamp.Date
	}
	if w.Time == "" {
		w.Time = stamp.Time
	}
	if err := validateDate(w.Date); err != nil {
		return err
	}
	if _, err := time.Parse(models.TimeLayout, w.Time); err != nil {
		return fmt.Errorf("%w: time %q must be HH:MM:SS", ErrInvalid, w.Time)
	}

	id, err := storage.Insert(ctx, h,
		"INSERT INTO workouts (date, time, note) VALUES (?, ?, ?)",
		w.Date, w.Time, w.Note)
	if err != nil {
		return fmt.Errorf("create workout: %w", err)
	}
	w.ID = id
	return nil
}

// GetByID returns one workout.
func (s *WorkoutService) GetByID(ctx context.Context, id int64) (*models.Workout, error) {
	return getOne(ctx, s.db, scanWorkout, "workout",
		"SELECT "+workoutCols+" FROM workouts WHERE id = ?", id)
}

// GetAll returns every workout, most recent first.
func (s *WorkoutService) GetAll(ctx context.Context) ([]*models.Workout, error) {
	return s.List(ctx, 0)
}

// List returns up to limit workouts, most recent first. Zero means no limit.
func (s *WorkoutService) List(ctx context.Context, limit int) ([]*models.Workout, error) {
	query := "SELECT " + workoutCols + " FROM workouts ORDER BY date DESC, time DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	workouts, err := storage.Select(ctx, s.db, scanWorkout, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

// Update rewrites every column of the workout.
func (s *WorkoutService) Update(ctx context.Context, w *models.Workout) error {
	if err := validateDate(w.Date); err != nil {
		return err
	}
	err := storage.Update(ctx, s.db,
		"UPDATE workouts SET date = ?, time = ?, note = ? WHERE id = ?",
		w.Date, w.Time, w.Note, w.ID)
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	return nil
}

// Delete removes a workout with its session exercises and sets. Supersets
// no longer referenced by anything are removed too.
func (s *WorkoutService) Delete(ctx context.Context, id int64) error {
	err := s.db.InTx(ctx, func(tx *storage.Tx) error {
		supersetIDs, err := storage.Select(ctx, tx, scanInt64,
			`SELECT DISTINCT superset_id FROM session_exercises
			 WHERE session_id = ? AND superset_id IS NOT NULL`, id)
		if err != nil {
			return err
		}
		if err := storage.DeleteWhere(ctx, tx, storage.TableSets,
			"session_exercise_id IN (SELECT id FROM session_exercises WHERE session_id = ?)", id); err != nil {
			return err
		}
		if err := storage.DeleteWhere(ctx, tx, storage.TableSessionExercises, "session_id = ?", id); err != nil {
			return err
		}
		if err := releaseContext(ctx, tx, contextWorkout, id, supersetIDs); err != nil {
			return err
		}
		return storage.DeleteByID(ctx, tx, storage.TableWorkouts, id)
	})
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

// CreateFromRoutine copies a routine into a new workout named after it.
// Exercises and planned sets are copied in id order, every set incomplete,
// supersets are not carried over. Nothing is written if any step fails.
func (s *WorkoutService) CreateFromRoutine(ctx context.Context, routineID int64) (int64, error) {
	routine, err := getOne(ctx, s.db, scanRoutine, "routine",
		"SELECT "+routineCols+" FROM routines WHERE id = ?", routineID)
	if err != nil {
		return 0, err
	}

	var workoutID int64
	err = s.db.InTx(ctx, func(tx *storage.Tx) error {
		name := routine.Name
		w := models.NewWorkout(s.now())
		w.Note = &name
		if err := s.add(ctx, tx, w); err != nil {
			return err
		}
		workoutID = w.ID

		planned, err := storage.Select(ctx, tx, scanRoutineExercise,
			"SELECT "+routineExerciseCols+" FROM routine_exercises WHERE routine_id = ? ORDER BY id", routineID)
		if err != nil {
			return err
		}

		for _, re := range planned {
			se := &models.SessionExercise{WorkoutID: workoutID, ExerciseID: re.ExerciseID, Note: re.Note}
			if err := insertSessionExercise(ctx, tx, se); err != nil {
				return err
			}

			sets, err := storage.Select(ctx, tx, scanRoutineSet,
				"SELECT "+routineSetCols+" FROM routine_sets WHERE routine_exercise_id = ? ORDER BY id", re.ID)
			if err != nil {
				return err
			}
			for _, rs := range sets {
				if err := insertSet(ctx, tx, rs.ToSet(se.ID)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create workout from routine %d: %w", routineID, err)
	}

	s.logger.Debug("materialized routine", "routine_id", routineID, "workout_id", workoutID)
	return workoutID, nil
}

// SessionEntry is one exercise performed in a workout with its sets.
type SessionEntry struct {
	SessionExercise *models.SessionExercise `json:"session_exercise" yaml:"session_exercise"`
	Exercise        *models.Exercise        `json:"exercise" yaml:"exercise"`
	Superset        *models.Superset        `json:"superset,omitempty" yaml:"superset,omitempty"`
	Sets            []*models.Set           `json:"sets" yaml:"sets"`
}

// WorkoutDetail is a workout with everything logged in it.
type WorkoutDetail struct {
	Workout *models.Workout `json:"workout" yaml:"workout"`
	Entries []*SessionEntry `json:"entries" yaml:"entries"`
}

// Volume sums weight x reps over completed sets.
func (d *WorkoutDetail) Volume() float64 {
	var total float64
	for _, e := range d.Entries {
		for _, st := range e.Sets {
			if st.Completed {
				total += st.Volume()
			}
		}
	}
	return total
}

// Detail loads a workout with its session exercises, definitions, supersets and sets.
func (s *WorkoutService) Detail(ctx context.Context, id int64) (*WorkoutDetail, error) {
	w, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sessionExercises, err := storage.Select(ctx, s.db, scanSessionExercise,
		"SELECT "+sessionExerciseCols+" FROM session_exercises WHERE session_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("list session exercises: %w", err)
	}

	detail := &WorkoutDetail{Workout: w, Entries: make([]*SessionEntry, 0, len(sessionExercises))}
	for _, se := range sessionExercises {
		entry := &SessionEntry{SessionExercise: se}

		entry.Exercise, err = getOne(ctx, s.db, scanExercise, "exercise",
			"SELECT "+exerciseCols+" FROM exercises WHERE id = ?", se.ExerciseID)
		if err != nil {
			return nil, err
		}
		if se.SupersetID != nil {
			entry.Superset, err = getOne(ctx, s.db, scanSuperset, "superset",
				"SELECT "+supersetCols+" FROM supersets WHERE id = ?", *se.SupersetID)
			if err != nil {
				return nil, err
			}
		}
		entry.Sets, err = storage.Select(ctx, s.db, scanSet,
			"SELECT "+setCols+" FROM sets WHERE session_exercise_id = ? ORDER BY id", se.ID)
		if err != nil {
			return nil, fmt.Errorf("list sets: %w", err)
		}
		detail.Entries = append(detail.Entries, entry)
	}
	return detail, nil
}

func validateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalid, date)
	}
	return nil
}
