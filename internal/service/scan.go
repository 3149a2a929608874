// ABOUTME: Row scanners and column lists for every entity.
// ABOUTME: Column order here must match the SELECT lists used by the services.
package service

import (
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

const (
	workoutCols         = "id, date, time, note"
	exerciseCols        = "id, name, counting_type, muscle_group, note, active"
	sessionExerciseCols = "id, note, session_id, exercise_id, superset_id"
	setCols             = "id, set_type, rest, weight, reps, completed, note, session_exercise_id"
	supersetCols        = "id, number, note"
	routineCols         = "id, name, note"
	routineExerciseCols = "id, note, routine_id, exercise_id, superset_id"
	routineSetCols      = "id, set_type, rest, weight, reps, note, routine_exercise_id"
	bodyCols            = "id, date, weight, height, neck, shoulder, arm_left, arm_right, forearm_left, forearm_right, chest, waist, thigh_left, thigh_right, calf_left, calf_right"
)

func scanWorkout(s storage.Scanner) (*models.Workout, error) {
	w := &models.Workout{}
	err := s.Scan(&w.ID, &w.Date, &w.Time, &w.Note)
	return w, err
}

func scanExercise(s storage.Scanner) (*models.Exercise, error) {
	e := &models.Exercise{}
	err := s.Scan(&e.ID, &e.Name, &e.CountingType, &e.MuscleGroup, &e.Note, &e.Active)
	return e, err
}

func scanSessionExercise(s storage.Scanner) (*models.SessionExercise, error) {
	se := &models.SessionExercise{}
	err := s.Scan(&se.ID, &se.Note, &se.WorkoutID, &se.ExerciseID, &se.SupersetID)
	return se, err
}

func scanSet(s storage.Scanner) (*models.Set, error) {
	st := &models.Set{}
	err := s.Scan(&st.ID, &st.SetType, &st.Rest, &st.Weight, &st.Reps, &st.Completed, &st.Note, &st.SessionExerciseID)
	return st, err
}

func scanSuperset(s storage.Scanner) (*models.Superset, error) {
	ss := &models.Superset{}
	err := s.Scan(&ss.ID, &ss.Number, &ss.Note)
	return ss, err
}

func scanRoutine(s storage.Scanner) (*models.Routine, error) {
	r := &models.Routine{}
	err := s.Scan(&r.ID, &r.Name, &r.Note)
	return r, err
}

func scanRoutineExercise(s storage.Scanner) (*models.RoutineExercise, error) {
	re := &models.RoutineExercise{}
	err := s.Scan(&re.ID, &re.Note, &re.RoutineID, &re.ExerciseID, &re.SupersetID)
	return re, err
}

func scanRoutineSet(s storage.Scanner) (*models.RoutineSet, error) {
	rs := &models.RoutineSet{}
	err := s.Scan(&rs.ID, &rs.SetType, &rs.Rest, &rs.Weight, &rs.Reps, &rs.Note, &rs.RoutineExerciseID)
	return rs, err
}

func scanBody(s storage.Scanner) (*models.BodyMeasurement, error) {
	b := &models.BodyMeasurement{}
	dest := []any{&b.ID, &b.Date}
	for _, f := range b.Fields() {
		dest = append(dest, f)
	}
	err := s.Scan(dest...)
	return b, err
}

func scanInt64(s storage.Scanner) (int64, error) {
	var v int64
	err := s.Scan(&v)
	return v, err
}
