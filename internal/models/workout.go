// ABOUTME: Workout, SessionExercise and Set models for logged training sessions.
// ABOUTME: Workouts hold session exercises, which hold the sets actually performed.
package models

import (
	"fmt"
	"time"
)

// Date and time layouts used for the workouts and body_measurements columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// SetType classifies a set.
type SetType string

const (
	SetNormal  SetType = "normal"
	SetWarmUp  SetType = "warm-up"
	SetDropset SetType = "dropset"
)

// AllSetTypes lists every valid set type.
var AllSetTypes = []SetType{SetNormal, SetWarmUp, SetDropset}

// IsValidSetType checks if a string is a valid set type.
func IsValidSetType(s string) bool {
	for _, st := range AllSetTypes {
		if string(st) == s {
			return true
		}
	}
	return false
}

// Workout is one training session. Date and time are stamped at creation.
type Workout struct {
	ID   int64   `json:"id" yaml:"id"`
	Date string  `json:"date" yaml:"date"`
	Time string  `json:"time" yaml:"time"`
	Note *string `json:"note,omitempty" yaml:"note,omitempty"`
}

// NewWorkout creates a Workout stamped with the given wall-clock time.
func NewWorkout(now time.Time) *Workout {
	return &Workout{
		Date: now.Format(DateLayout),
		Time: now.Format(TimeLayout),
	}
}

// WithNote sets the note on the workout.
func (w *Workout) WithNote(note string) *Workout {
	w.Note = &note
	return w
}

// StartedAt combines Date and Time into a local timestamp.
func (w *Workout) StartedAt() (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, w.Date+" "+w.Time, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse workout timestamp: %w", err)
	}
	return t, nil
}

// SessionExercise is an exercise performed within a specific workout.
type SessionExercise struct {
	ID         int64   `json:"id" yaml:"id"`
	WorkoutID  int64   `json:"session_id" yaml:"session_id"`
	ExerciseID int64   `json:"exercise_id" yaml:"exercise_id"`
	SupersetID *int64  `json:"superset_id,omitempty" yaml:"superset_id,omitempty"`
	Note       *string `json:"note,omitempty" yaml:"note,omitempty"`
}

// NewSessionExercise attaches an exercise to a workout.
func NewSessionExercise(workoutID, exerciseID int64) *SessionExercise {
	return &SessionExercise{WorkoutID: workoutID, ExerciseID: exerciseID}
}

// WithNote sets the note on the session exercise.
func (se *SessionExercise) WithNote(note string) *SessionExercise {
	se.Note = &note
	return se
}

// Set is one performed unit of a session exercise.
// Weight and Reps stay nil until the user fills them in.
type Set struct {
	ID                int64    `json:"id" yaml:"id"`
	SetType           SetType  `json:"set_type" yaml:"set_type"`
	Rest              *string  `json:"rest,omitempty" yaml:"rest,omitempty"`
	Weight            *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Reps              *int     `json:"reps,omitempty" yaml:"reps,omitempty"`
	Completed         bool     `json:"completed" yaml:"completed"`
	Note              *string  `json:"note,omitempty" yaml:"note,omitempty"`
	SessionExerciseID int64    `json:"session_exercise_id" yaml:"session_exercise_id"`
}

// NewSet creates an incomplete set of the given type.
func NewSet(sessionExerciseID int64, setType SetType) *Set {
	return &Set{SetType: setType, SessionExerciseID: sessionExerciseID}
}

// WithWeight sets the weight.
func (s *Set) WithWeight(weight float64) *Set {
	s.Weight = &weight
	return s
}

// WithReps sets the rep count.
func (s *Set) WithReps(reps int) *Set {
	s.Reps = &reps
	return s
}

// WithRest sets the rest annotation (free text such as "90s").
func (s *Set) WithRest(rest string) *Set {
	s.Rest = &rest
	return s
}

// WithNote sets the note on the set.
func (s *Set) WithNote(note string) *Set {
	s.Note = &note
	return s
}

// Volume returns weight x reps, or 0 when either is unset.
func (s *Set) Volume() float64 {
	if s.Weight == nil || s.Reps == nil {
		return 0
	}
	return *s.Weight * float64(*s.Reps)
}
