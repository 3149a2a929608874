// ABOUTME: Tests for whole-log export and import.
// ABOUTME: Exports must carry logged data and JSON must import into a fresh log.

package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

// seedLog fills svc with one workout, one routine and one body measurement.
func seedLog(t *testing.T, svc *Services) {
	t.Helper()
	ctx := t.Context()

	newPushRoutine(t, svc)
	bench, err := svc.Exercises.GetByID(ctx, 1)
	require.NoError(t, err)

	w := addWorkout(t, svc, "2024-01-02")
	w.Note = strPtr("morning")
	require.NoError(t, svc.Workouts.Update(ctx, w))
	se := addSessionExercise(t, svc, w.ID, bench.ID)
	ss, err := svc.Supersets.CreateForWorkout(ctx, w.ID, nil)
	require.NoError(t, err)
	require.NoError(t, svc.SessionExercises.AssignSuperset(ctx, se.ID, ss.ID))
	addSet(t, svc, se.ID, 60, 10, true)
	addSet(t, svc, se.ID, 70, 8, false)

	b := &models.BodyMeasurement{Date: "2024-01-02"}
	b.Set("weight", 81.2)
	require.NoError(t, svc.Body.Add(ctx, b))
}

func TestExportJSON(t *testing.T) {
	svc, ctx := setupTestServices(t)
	seedLog(t, svc)

	raw, err := svc.ExportJSON(ctx)
	require.NoError(t, err)

	var data ExportData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "gymlog", data.Tool)
	assert.Len(t, data.Exercises, 2)
	require.Len(t, data.Workouts, 1)
	assert.Equal(t, "morning", *data.Workouts[0].Workout.Note)
	require.Len(t, data.Workouts[0].Entries, 1)
	assert.Len(t, data.Workouts[0].Entries[0].Sets, 2)
	require.Len(t, data.Routines, 1)
	assert.Len(t, data.Routines[0].Exercises, 2)
	assert.Len(t, data.Body, 1)
}

func TestExportYAML(t *testing.T) {
	svc, ctx := setupTestServices(t)
	seedLog(t, svc)

	raw, err := svc.ExportYAML(ctx)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, "gymlog", doc["tool"])

	out := string(raw)
	assert.Contains(t, out, "2024-01-02 10:00:00")
	assert.Contains(t, out, "name: Bench Press")
	assert.Contains(t, out, "superset: 1")
	assert.Contains(t, out, "name: Push Day")
}

func TestExportMarkdown(t *testing.T) {
	svc, ctx := setupTestServices(t)
	seedLog(t, svc)
	addWorkout(t, svc, "2023-12-01")

	md, err := svc.ExportMarkdown(ctx, nil)
	require.NoError(t, err)
	assert.Contains(t, md, "### 2024-01-02 10:00: morning")
	assert.Contains(t, md, "| Bench Press (SS1) | normal | 60.0 | 10 | x |")
	assert.Contains(t, md, "Volume: 600.0")
	assert.Contains(t, md, "- Bench Press: 3 sets")
	assert.Contains(t, md, "| 2024-01-02 | 81.2 | - | - |")
	assert.Contains(t, md, "### 2023-12-01")

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	md, err = svc.ExportMarkdown(ctx, &since)
	require.NoError(t, err)
	assert.NotContains(t, md, "### 2023-12-01")
	assert.Contains(t, md, "### 2024-01-02")
}

func TestImportJSONIntoFreshLog(t *testing.T) {
	src, ctx := setupTestServices(t)
	seedLog(t, src)
	raw, err := src.ExportJSON(ctx)
	require.NoError(t, err)

	dst, _ := setupTestServices(t)
	existing := addExercise(t, dst, "bench press")

	summary, err := dst.ImportJSON(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Exercises, "Bench Press matches by name")
	assert.Equal(t, 1, summary.Workouts)
	assert.Equal(t, 2, summary.Sets)
	assert.Equal(t, 1, summary.Routines)
	assert.Equal(t, 1, summary.Body)

	workouts, err := dst.Workouts.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	d, err := dst.Workouts.Detail(ctx, workouts[0].ID)
	require.NoError(t, err)
	require.Len(t, d.Entries, 1)
	assert.Equal(t, existing.ID, d.Entries[0].Exercise.ID)
	require.NotNil(t, d.Entries[0].Superset)
	assert.Equal(t, 1, d.Entries[0].Superset.Number)
	assert.InDelta(t, 600, d.Volume(), 0.001)

	routines, err := dst.Routines.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, routines, 1)
	rd, err := dst.Routines.Detail(ctx, routines[0].ID)
	require.NoError(t, err)
	assert.Len(t, rd.Exercises[0].Sets, 3)
}

func TestImportJSONRollsBackOnBadData(t *testing.T) {
	svc, ctx := setupTestServices(t)

	_, err := svc.ImportJSON(ctx, []byte("{not json"))
	assert.Error(t, err)

	bad := `{"exercises":[{"id":1,"name":"Row","counting_type":"reps","active":true}],
		"workouts":[{"workout":{"date":"2024-01-01","time":"10:00:00"},"entries":[{"sets":[]}]}]}`
	_, err = svc.ImportJSON(ctx, []byte(bad))
	assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
	assert.Equal(t, 0, count(t, svc, storage.TableExercises))
	assert.Equal(t, 0, count(t, svc, storage.TableWorkouts))
}

// importDoc wraps one entry list into an export document that also carries a
// valid workout, so a rejected import has something to roll back.
func importDoc(field, body string) []byte {
	base := map[string]string{
		"exercises": `[{"id":1,"name":"Row","counting_type":"reps","active":true}]`,
		"workouts": `[{"workout":{"date":"2024-01-01","time":"10:00:00"},
			"entries":[{"exercise":{"id":1,"name":"Row","counting_type":"reps"},"sets":[{"set_type":"normal","weight":50,"reps":5}]}]}]`,
		"routines":          `[]`,
		"body_measurements": `[]`,
	}
	if field == "workouts" {
		base[field] = strings.Replace(base[field], "}]}]}]", "}]}]},"+body+"]", 1)
	} else if field != "exercises" {
		base[field] = "[" + body + "]"
	} else {
		base[field] = strings.TrimSuffix(base[field], "]") + "," + body + "]"
	}
	return []byte(fmt.Sprintf(`{"exercises":%s,"workouts":%s,"routines":%s,"body_measurements":%s}`,
		base["exercises"], base["workouts"], base["routines"], base["body_measurements"]))
}

func assertImportRejected(t *testing.T, svc *Services, doc []byte) {
	t.Helper()
	var err error
	require.NotPanics(t, func() {
		_, err = svc.ImportJSON(t.Context(), doc)
	})
	assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
	for _, table := range []storage.Table{
		storage.TableExercises, storage.TableWorkouts, storage.TableSets,
		storage.TableRoutines, storage.TableRoutineSets, storage.TableBodyMeasurements,
	} {
		assert.Equal(t, 0, count(t, svc, table), "table %s", table)
	}
}

func TestImportJSONRejectsNullEntries(t *testing.T) {
	tests := []struct {
		name  string
		field string
		body  string
	}{
		{"null exercise", "exercises", `null`},
		{"null workout", "workouts", `null`},
		{"null workout entry", "workouts", `{"workout":{"date":"2024-01-02","time":"10:00:00"},"entries":[null]}`},
		{"null set", "workouts", `{"workout":{"date":"2024-01-02","time":"10:00:00"},
			"entries":[{"exercise":{"id":1,"name":"Row","counting_type":"reps"},"sets":[null]}]}`},
		{"null routine", "routines", `null`},
		{"null planned exercise", "routines", `{"routine":{"name":"Pull"},"exercises":[null]}`},
		{"null planned set", "routines", `{"routine":{"name":"Pull"},
			"exercises":[{"exercise":{"id":1,"name":"Row","counting_type":"reps"},"sets":[null]}]}`},
		{"null body measurement", "body_measurements", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupTestServices(t)
			assertImportRejected(t, svc, importDoc(tt.field, tt.body))
		})
	}
}

func TestImportJSONRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name  string
		field string
		body  string
	}{
		{"unknown set type", "workouts", `{"workout":{"date":"2024-01-02","time":"10:00:00"},
			"entries":[{"exercise":{"id":1,"name":"Row","counting_type":"reps"},"sets":[{"set_type":"bogus","weight":50,"reps":5}]}]}`},
		{"negative weight", "workouts", `{"workout":{"date":"2024-01-02","time":"10:00:00"},
			"entries":[{"exercise":{"id":1,"name":"Row","counting_type":"reps"},"sets":[{"set_type":"normal","weight":-50,"reps":5}]}]}`},
		{"negative reps", "workouts", `{"workout":{"date":"2024-01-02","time":"10:00:00"},
			"entries":[{"exercise":{"id":1,"name":"Row","counting_type":"reps"},"sets":[{"set_type":"normal","reps":-3}]}]}`},
		{"blank exercise name", "exercises", `{"id":2,"name":"  ","counting_type":"reps","active":true}`},
		{"unknown counting type", "exercises", `{"id":2,"name":"Plank","counting_type":"laps","active":true}`},
		{"blank routine name", "routines", `{"routine":{"name":""},"exercises":[]}`},
		{"invalid planned set", "routines", `{"routine":{"name":"Pull"},
			"exercises":[{"exercise":{"id":1,"name":"Row","counting_type":"reps"},"sets":[{"set_type":"normal","weight":-1}]}]}`},
		{"negative girth", "body_measurements", `{"date":"2024-01-02","waist":-80}`},
		{"bad body date", "body_measurements", `{"date":"02/01/2024","weight":80}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupTestServices(t)
			assertImportRejected(t, svc, importDoc(tt.field, tt.body))
		})
	}
}

func TestResetDatabaseRestoresDefaults(t *testing.T) {
	svc, ctx := setupTestServices(t)
	seedLog(t, svc)

	require.NoError(t, svc.ResetDatabase(ctx))

	assert.Equal(t, 0, count(t, svc, storage.TableWorkouts))
	assert.Equal(t, 0, count(t, svc, storage.TableRoutines))
	_, err := svc.Exercises.GetByID(ctx, 1)
	assert.True(t, errors.Is(err, storage.ErrNotFound), "cache must not outlive the reset")
}
