// ABOUTME: Whole-log export and import for gymlog data.
// ABOUTME: Supports JSON, YAML and Markdown export and JSON import.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

const exportVersion = "1.0"

// ExportData is the full export document.
type ExportData struct {
	Version    string                    `json:"version" yaml:"version"`
	ExportedAt time.Time                 `json:"exported_at" yaml:"exported_at"`
	Tool       string                    `json:"tool" yaml:"tool"`
	Exercises  []*models.Exercise        `json:"exercises" yaml:"exercises"`
	Workouts   []*WorkoutDetail          `json:"workouts" yaml:"workouts"`
	Routines   []*RoutineDetail          `json:"routines" yaml:"routines"`
	Body       []*models.BodyMeasurement `json:"body_measurements" yaml:"body_measurements"`
}

// Dump collects everything in the log.
func (s *Services) Dump(ctx context.Context) (*ExportData, error) {
	exercises, err := s.Exercises.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	workouts, err := s.Workouts.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	details := make([]*WorkoutDetail, 0, len(workouts))
	for _, w := range workouts {
		d, err := s.Workouts.Detail(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}

	routines, err := s.Routines.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	plans := make([]*RoutineDetail, 0, len(routines))
	for _, r := range routines {
		d, err := s.Routines.Detail(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		plans = append(plans, d)
	}

	body, err := s.Body.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Version:    exportVersion,
		ExportedAt: time.Now(),
		Tool:       "gymlog",
		Exercises:  exercises,
		Workouts:   details,
		Routines:   plans,
		Body:       body,
	}, nil
}

// ExportJSON exports all data as JSON.
func (s *Services) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := s.Dump(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

type yamlSet struct {
	Type   string   `yaml:"type"`
	Weight *float64 `yaml:"weight,omitempty"`
	Reps   *int     `yaml:"reps,omitempty"`
	Rest   string   `yaml:"rest,omitempty"`
	Done   bool     `yaml:"done"`
	Notes  string   `yaml:"notes,omitempty"`
}

type yamlExercise struct {
	Name     string    `yaml:"name"`
	Superset int       `yaml:"superset,omitempty"`
	Notes    string    `yaml:"notes,omitempty"`
	Sets     []yamlSet `yaml:"sets,omitempty"`
}

type yamlWorkout struct {
	ID        int64          `yaml:"id"`
	StartedAt string         `yaml:"started_at"`
	Notes     string         `yaml:"notes,omitempty"`
	Volume    float64        `yaml:"volume,omitempty"`
	Exercises []yamlExercise `yaml:"exercises,omitempty"`
}

type yamlRoutine struct {
	ID        int64          `yaml:"id"`
	Name      string         `yaml:"name"`
	Notes     string         `yaml:"notes,omitempty"`
	Exercises []yamlExercise `yaml:"exercises,omitempty"`
}

// ExportYAML exports all data as YAML, with sets nested under their exercises by name.
func (s *Services) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := s.Dump(ctx)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                    `yaml:"version"`
		ExportedAt string                    `yaml:"exported_at"`
		Tool       string                    `yaml:"tool"`
		Exercises  map[string][]string       `yaml:"exercises"`
		Workouts   []yamlWorkout             `yaml:"workouts"`
		Routines   []yamlRoutine             `yaml:"routines"`
		Body       []*models.BodyMeasurement `yaml:"body_measurements,omitempty"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Exercises:  make(map[string][]string),
		Workouts:   make([]yamlWorkout, 0, len(data.Workouts)),
		Routines:   make([]yamlRoutine, 0, len(data.Routines)),
		Body:       data.Body,
	}

	// Group exercise names by muscle group
	for _, e := range data.Exercises {
		group := "other"
		if e.MuscleGroup != nil && *e.MuscleGroup != "" {
			group = *e.MuscleGroup
		}
		yamlData.Exercises[group] = append(yamlData.Exercises[group], e.Name)
	}

	for _, d := range data.Workouts {
		yw := yamlWorkout{
			ID:        d.Workout.ID,
			StartedAt: d.Workout.Date + " " + d.Workout.Time,
			Notes:     deref(d.Workout.Note),
			Volume:    d.Volume(),
		}
		for _, e := range d.Entries {
			ye := yamlExercise{Name: e.Exercise.Name, Notes: deref(e.SessionExercise.Note)}
			if e.Superset != nil {
				ye.Superset = e.Superset.Number
			}
			for _, st := range e.Sets {
				ye.Sets = append(ye.Sets, yamlSet{
					Type: string(st.SetType), Weight: st.Weight, Reps: st.Reps,
					Rest: deref(st.Rest), Done: st.Completed, Notes: deref(st.Note),
				})
			}
			yw.Exercises = append(yw.Exercises, ye)
		}
		yamlData.Workouts = append(yamlData.Workouts, yw)
	}

	for _, d := range data.Routines {
		yr := yamlRoutine{ID: d.Routine.ID, Name: d.Routine.Name, Notes: deref(d.Routine.Note)}
		for _, pe := range d.Exercises {
			ye := yamlExercise{Name: pe.Exercise.Name, Notes: deref(pe.RoutineExercise.Note)}
			if pe.Superset != nil {
				ye.Superset = pe.Superset.Number
			}
			for _, rs := range pe.Sets {
				ye.Sets = append(ye.Sets, yamlSet{
					Type: string(rs.SetType), Weight: rs.Weight, Reps: rs.Reps,
					Rest: deref(rs.Rest), Notes: deref(rs.Note),
				})
			}
			yr.Exercises = append(yr.Exercises, ye)
		}
		yamlData.Routines = append(yamlData.Routines, yr)
	}

	return yaml.Marshal(yamlData)
}

// ExportMarkdown exports workouts, routines and body measurements as Markdown.
// When since is set, only workouts and measurements on or after that day are included.
func (s *Services) ExportMarkdown(ctx context.Context, since *time.Time) (string, error) {
	data, err := s.Dump(ctx)
	if err != nil {
		return "", err
	}

	sinceDay := ""
	if since != nil {
		sinceDay = since.Format(models.DateLayout)
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Gymlog Export - %s\n\n", now.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	sb.WriteString("## Workouts\n\n")
	for _, d := range data.Workouts {
		if sinceDay != "" && d.Workout.Date < sinceDay {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s %s", d.Workout.Date, d.Workout.Time[:5]))
		if d.Workout.Note != nil {
			sb.WriteString(": " + *d.Workout.Note)
		}
		sb.WriteString("\n\n")
		if len(d.Entries) == 0 {
			sb.WriteString("_No exercises logged._\n\n")
			continue
		}
		sb.WriteString("| Exercise | Type | Weight | Reps | Done |\n")
		sb.WriteString("|----------|------|--------|------|------|\n")
		for _, e := range d.Entries {
			name := e.Exercise.Name
			if e.Superset != nil {
				name = fmt.Sprintf("%s (SS%d)", name, e.Superset.Number)
			}
			for _, st := range e.Sets {
				done := ""
				if st.Completed {
					done = "x"
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
					name, st.SetType, formatWeight(st.Weight), formatReps(st.Reps), done))
			}
		}
		sb.WriteString(fmt.Sprintf("\nVolume: %.1f\n\n", d.Volume()))
	}

	if len(data.Routines) > 0 {
		sb.WriteString("## Routines\n\n")
		for _, d := range data.Routines {
			sb.WriteString(fmt.Sprintf("### %s\n\n", d.Routine.Name))
			for _, pe := range d.Exercises {
				sb.WriteString(fmt.Sprintf("- %s: %d sets\n", pe.Exercise.Name, len(pe.Sets)))
			}
			sb.WriteString("\n")
		}
	}

	if len(data.Body) > 0 {
		sb.WriteString("## Body Measurements\n\n")
		sb.WriteString("| Date | Weight | Waist | Chest |\n")
		sb.WriteString("|------|--------|-------|-------|\n")
		for _, b := range data.Body {
			if sinceDay != "" && b.Date < sinceDay {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				b.Date, formatWeight(b.Weight), formatWeight(b.Waist), formatWeight(b.Chest)))
		}
	}

	return sb.String(), nil
}

// ImportSummary counts rows created by ImportJSON.
type ImportSummary struct {
	Exercises int
	Workouts  int
	Sets      int
	Routines  int
	Body      int
}

// ImportJSON loads an export document into the log in one transaction.
// Exercises are matched by name; everything else is added with new ids.
func (s *Services) ImportJSON(ctx context.Context, raw []byte) (*ImportSummary, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}

	summary := &ImportSummary{}
	err := s.db.InTx(ctx, func(tx *storage.Tx) error {
		exerciseIDs := make(map[int64]int64)
		resolve := func(e *models.Exercise) (int64, error) {
			if e == nil {
				return 0, fmt.Errorf("%w: null exercise", ErrInvalid)
			}
			if id, ok := exerciseIDs[e.ID]; ok {
				return id, nil
			}
			id, err := storage.Get(ctx, tx, scanInt64,
				"SELECT id FROM exercises WHERE name = ? COLLATE NOCASE ORDER BY id LIMIT 1", e.Name)
			if errors.Is(err, storage.ErrNotFound) {
				if verr := validateExercise(e); verr != nil {
					return 0, fmt.Errorf("import exercise %q: %w", e.Name, verr)
				}
				id, err = storage.Insert(ctx, tx,
					`INSERT INTO exercises (name, counting_type, muscle_group, note, active) VALUES (?, ?, ?, ?, ?)`,
					e.Name, e.CountingType, e.MuscleGroup, e.Note, e.Active)
				summary.Exercises++
			}
			if err != nil {
				return 0, fmt.Errorf("import exercise %q: %w", e.Name, err)
			}
			exerciseIDs[e.ID] = id
			return id, nil
		}

		for _, e := range data.Exercises {
			if _, err := resolve(e); err != nil {
				return err
			}
		}

		supersetIDs := make(map[int64]int64)
		importSuperset := func(ss *models.Superset) (*int64, error) {
			if ss == nil {
				return nil, nil
			}
			if id, ok := supersetIDs[ss.ID]; ok {
				return &id, nil
			}
			copied := &models.Superset{Number: ss.Number, Note: ss.Note}
			if err := insertSuperset(ctx, tx, copied); err != nil {
				return nil, err
			}
			supersetIDs[ss.ID] = copied.ID
			return &copied.ID, nil
		}

		for _, d := range data.Workouts {
			if d == nil || d.Workout == nil {
				return fmt.Errorf("%w: workout entry without workout", ErrInvalid)
			}
			w := &models.Workout{Date: d.Workout.Date, Time: d.Workout.Time, Note: d.Workout.Note}
			if err := s.Workouts.add(ctx, tx, w); err != nil {
				return err
			}
			summary.Workouts++
			for _, e := range d.Entries {
				if e == nil || e.Exercise == nil {
					return fmt.Errorf("%w: workout %s has an entry without exercise", ErrInvalid, w.Date)
				}
				exID, err := resolve(e.Exercise)
				if err != nil {
					return err
				}
				ssID, err := importSuperset(e.Superset)
				if err != nil {
					return err
				}
				se := &models.SessionExercise{WorkoutID: w.ID, ExerciseID: exID, SupersetID: ssID}
				if e.SessionExercise != nil {
					se.Note = e.SessionExercise.Note
				}
				if err := insertSessionExercise(ctx, tx, se); err != nil {
					return err
				}
				for _, st := range e.Sets {
					if st == nil {
						return fmt.Errorf("%w: workout %s has a null set", ErrInvalid, w.Date)
					}
					if err := validateSet(st.SetType, st.Weight, st.Reps); err != nil {
						return fmt.Errorf("import set: %w", err)
					}
					copied := *st
					copied.SessionExerciseID = se.ID
					if err := insertSet(ctx, tx, &copied); err != nil {
						return err
					}
					summary.Sets++
				}
			}
		}

		for _, d := range data.Routines {
			if d == nil || d.Routine == nil {
				return fmt.Errorf("%w: routine entry without routine", ErrInvalid)
			}
			if err := requireName("routine name", d.Routine.Name); err != nil {
				return err
			}
			routineID, err := storage.Insert(ctx, tx, "INSERT INTO routines (name, note) VALUES (?, ?)",
				d.Routine.Name, d.Routine.Note)
			if err != nil {
				return err
			}
			summary.Routines++
			for _, pe := range d.Exercises {
				if pe == nil || pe.Exercise == nil {
					return fmt.Errorf("%w: routine %q has an entry without exercise", ErrInvalid, d.Routine.Name)
				}
				exID, err := resolve(pe.Exercise)
				if err != nil {
					return err
				}
				ssID, err := importSuperset(pe.Superset)
				if err != nil {
					return err
				}
				var note *string
				if pe.RoutineExercise != nil {
					note = pe.RoutineExercise.Note
				}
				reID, err := storage.Insert(ctx, tx,
					"INSERT INTO routine_exercises (note, routine_id, exercise_id, superset_id) VALUES (?, ?, ?, ?)",
					note, routineID, exID, ssID)
				if err != nil {
					return err
				}
				for _, rs := range pe.Sets {
					if rs == nil {
						return fmt.Errorf("%w: routine %q has a null set", ErrInvalid, d.Routine.Name)
					}
					if err := validateSet(rs.SetType, rs.Weight, rs.Reps); err != nil {
						return fmt.Errorf("import routine set: %w", err)
					}
					if _, err := storage.Insert(ctx, tx,
						`INSERT INTO routine_sets (set_type, rest, weight, reps, note, routine_exercise_id)
						 VALUES (?, ?, ?, ?, ?, ?)`,
						rs.SetType, rs.Rest, rs.Weight, rs.Reps, rs.Note, reID); err != nil {
						return err
					}
				}
			}
		}

		for _, b := range data.Body {
			if b == nil {
				return fmt.Errorf("%w: null body measurement", ErrInvalid)
			}
			if err := validateBody(b); err != nil {
				return fmt.Errorf("import body measurement: %w", err)
			}
			if _, err := storage.Insert(ctx, tx,
				"INSERT INTO body_measurements (date, "+strings.Join(models.BodyMeasurementColumns, ", ")+
					") VALUES ("+bodyPlaceholders+")",
				bodyArgs(b)...); err != nil {
				return err
			}
			summary.Body++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import data: %w", err)
	}

	s.Exercises.Purge()
	return summary, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatWeight(w *float64) string {
	if w == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *w)
}

func formatReps(r *int) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *r)
}
