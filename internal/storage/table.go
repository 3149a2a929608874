// ABOUTME: The fixed set of tables in the gymlog schema.
// ABOUTME: Table names are checked before they are spliced into SQL.
package storage

import "fmt"

// Table names a table with an integer id column.
type Table string

const (
	TableExercises        Table = "exercises"
	TableSupersets        Table = "supersets"
	TableWorkouts         Table = "workouts"
	TableSessionExercises Table = "session_exercises"
	TableSets             Table = "sets"
	TableRoutines         Table = "routines"
	TableRoutineExercises Table = "routine_exercises"
	TableRoutineSets      Table = "routine_sets"
	TableBodyMeasurements Table = "body_measurements"
)

// Tables lists every table in foreign-key dependency order.
var Tables = []Table{
	TableExercises,
	TableSupersets,
	TableWorkouts,
	TableSessionExercises,
	TableSets,
	TableRoutines,
	TableRoutineExercises,
	TableRoutineSets,
	TableBodyMeasurements,
}

// Valid reports whether t is part of the schema.
func (t Table) Valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

func (t Table) check() error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTable, string(t))
	}
	return nil
}
