// ABOUTME: Exercise definition model and CountingType enum.
// ABOUTME: Exercises are referenced by session exercises and routine exercises.
package models

// CountingType says whether an exercise is measured in reps or time.
type CountingType string

const (
	CountingReps CountingType = "reps"
	CountingTime CountingType = "time"
)

// IsValidCountingType checks if a string is a valid counting type.
func IsValidCountingType(s string) bool {
	return s == string(CountingReps) || s == string(CountingTime)
}

// Exercise is an exercise definition such as "Bench Press".
type Exercise struct {
	ID           int64        `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	CountingType CountingType `json:"counting_type" yaml:"counting_type"`
	MuscleGroup  *string      `json:"muscle_group,omitempty" yaml:"muscle_group,omitempty"`
	Note         *string      `json:"note,omitempty" yaml:"note,omitempty"`
	Active       bool         `json:"active" yaml:"active"`
}

// NewExercise creates an active exercise definition.
func NewExercise(name string, countingType CountingType) *Exercise {
	return &Exercise{
		Name:         name,
		CountingType: countingType,
		Active:       true,
	}
}

// Clone returns a copy that shares no pointers with e.
func (e *Exercise) Clone() *Exercise {
	c := *e
	c.MuscleGroup = clonePtr(e.MuscleGroup)
	c.Note = clonePtr(e.Note)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// WithNote sets the note on the exercise.
func (e *Exercise) WithNote(note string) *Exercise {
	e.Note = &note
	return e
}

// WithMuscleGroup sets the primary muscle group.
func (e *Exercise) WithMuscleGroup(group string) *Exercise {
	e.MuscleGroup = &group
	return e
}
