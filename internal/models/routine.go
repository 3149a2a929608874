// ABOUTME: Routine templates, their exercises and planned sets, plus supersets.
// ABOUTME: A routine can be materialized into a concrete workout.
package models

// Superset groups exercises performed back-to-back. Number is a label unique
// within one workout or routine.
type Superset struct {
	ID     int64   `json:"id" yaml:"id"`
	Number int     `json:"number" yaml:"number"`
	Note   *string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Routine is a reusable workout template.
type Routine struct {
	ID   int64   `json:"id" yaml:"id"`
	Name string  `json:"name" yaml:"name"`
	Note *string `json:"note,omitempty" yaml:"note,omitempty"`
}

// NewRoutine creates a routine with the given name.
func NewRoutine(name string) *Routine {
	return &Routine{Name: name}
}

// WithNote sets the note on the routine.
func (r *Routine) WithNote(note string) *Routine {
	r.Note = &note
	return r
}

// RoutineExercise is an exercise planned within a routine.
type RoutineExercise struct {
	ID         int64   `json:"id" yaml:"id"`
	RoutineID  int64   `json:"routine_id" yaml:"routine_id"`
	ExerciseID int64   `json:"exercise_id" yaml:"exercise_id"`
	SupersetID *int64  `json:"superset_id,omitempty" yaml:"superset_id,omitempty"`
	Note       *string `json:"note,omitempty" yaml:"note,omitempty"`
}

// RoutineSet is a planned set. It never carries a completion flag.
type RoutineSet struct {
	ID                int64    `json:"id" yaml:"id"`
	SetType           SetType  `json:"set_type" yaml:"set_type"`
	Rest              *string  `json:"rest,omitempty" yaml:"rest,omitempty"`
	Weight            *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Reps              *int     `json:"reps,omitempty" yaml:"reps,omitempty"`
	Note              *string  `json:"note,omitempty" yaml:"note,omitempty"`
	RoutineExerciseID int64    `json:"routine_exercise_id" yaml:"routine_exercise_id"`
}

// ToSet copies the template into an incomplete Set for the given session exercise.
func (rs *RoutineSet) ToSet(sessionExerciseID int64) *Set {
	return &Set{
		SetType:           rs.SetType,
		Rest:              rs.Rest,
		Weight:            rs.Weight,
		Reps:              rs.Reps,
		Note:              rs.Note,
		Completed:         false,
		SessionExerciseID: sessionExerciseID,
	}
}
