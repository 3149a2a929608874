// ABOUTME: Set service: performed sets of a session exercise.
// ABOUTME: New sets always start incomplete.
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

// SetService manages sets.
type SetService struct {
	db *storage.DB
}

// Add stores a set, setting st.ID. The set is stored incomplete regardless
// of st.Completed.
func (s *SetService) Add(ctx context.Context, st *models.Set) error {
	if err := validateSet(st.SetType, st.Weight, st.Reps); err != nil {
		return err
	}
	st.Completed = false
	if err := insertSet(ctx, s.db, st); err != nil {
		return fmt.Errorf("add set: %w", err)
	}
	return nil
}

func insertSet(ctx context.Context, h storage.Handle, st *models.Set) error {
	id, err := storage.Insert(ctx, h,
		`INSERT INTO sets (set_type, rest, weight, reps, completed, note, session_exercise_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.SetType, st.Rest, st.Weight, st.Reps, st.Completed, st.Note, st.SessionExerciseID)
	if err != nil {
		return err
	}
	st.ID = id
	return nil
}

// GetByID returns one set.
func (s *SetService) GetByID(ctx context.Context, id int64) (*models.Set, error) {
	return getOne(ctx, s.db, scanSet, "set",
		"SELECT "+setCols+" FROM sets WHERE id = ?", id)
}

// GetAll returns every set.
func (s *SetService) GetAll(ctx context.Context) ([]*models.Set, error) {
	sets, err := storage.Select(ctx, s.db, scanSet, "SELECT "+setCols+" FROM sets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return sets, nil
}

// ListBySessionExercise returns the sets of one session exercise in order.
func (s *SetService) ListBySessionExercise(ctx context.Context, sessionExerciseID int64) ([]*models.Set, error) {
	sets, err := storage.Select(ctx, s.db, scanSet,
		"SELECT "+setCols+" FROM sets WHERE session_exercise_id = ? ORDER BY id", sessionExerciseID)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return sets, nil
}

// Update rewrites every editable column of the set.
func (s *SetService) Update(ctx context.Context, st *models.Set) error {
	if err := validateSet(st.SetType, st.Weight, st.Reps); err != nil {
		return err
	}
	err := storage.Update(ctx, s.db,
		`UPDATE sets SET set_type = ?, rest = ?, weight = ?, reps = ?, completed = ?, note = ?
		 WHERE id = ?`,
		st.SetType, st.Rest, st.Weight, st.Reps, st.Completed, st.Note, st.ID)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	return nil
}

// UpdateField writes a single editable column. Used by debounced edits.
func (s *SetService) UpdateField(ctx context.Context, id int64, field string, value any) error {
	column, ok := setFields[field]
	if !ok {
		return fmt.Errorf("%w: unknown set field %q", ErrInvalid, field)
	}
	if err := storage.Update(ctx, s.db, "UPDATE sets SET "+column+" = ? WHERE id = ?", value, id); err != nil {
		return fmt.Errorf("update set %s: %w", field, err)
	}
	return nil
}

var setFields = map[string]string{
	"weight": "weight",
	"reps":   "reps",
	"rest":   "rest",
	"note":   "note",
}

// SetCompleted marks a set done or not done.
func (s *SetService) SetCompleted(ctx context.Context, id int64, completed bool) error {
	if err := storage.Update(ctx, s.db, "UPDATE sets SET completed = ? WHERE id = ?", completed, id); err != nil {
		return fmt.Errorf("complete set: %w", err)
	}
	return nil
}

// Delete removes a set.
func (s *SetService) Delete(ctx context.Context, id int64) error {
	if err := storage.DeleteByID(ctx, s.db, storage.TableSets, id); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	return nil
}

func validateSet(setType models.SetType, weight *float64, reps *int) error {
	if !models.IsValidSetType(string(setType)) {
		return fmt.Errorf("%w: set type %q (valid: normal, warm-up, dropset)", ErrInvalid, setType)
	}
	if weight != nil && *weight < 0 {
		return fmt.Errorf("%w: weight cannot be negative", ErrInvalid)
	}
	if reps != nil && *reps < 0 {
		return fmt.Errorf("%w: reps cannot be negative", ErrInvalid)
	}
	return nil
}

// ParseSetField converts user input into the column value for an editable set field.
// An empty value clears the column.
func ParseSetField(field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch field {
	case "weight":
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: weight %q", ErrInvalid, raw)
		}
		return v, nil
	case "reps":
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: reps %q", ErrInvalid, raw)
		}
		return v, nil
	case "rest", "note":
		if raw == "" {
			return nil, nil
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: unknown set field %q (valid: weight, reps, rest, note)", ErrInvalid, field)
	}
}
