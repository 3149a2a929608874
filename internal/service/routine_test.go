// ABOUTME: Tests for routine templates and their planned exercises and sets.
// ABOUTME: Deleting a routine must leave no orphans behind.

package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

func TestRoutineAddRequiresName(t *testing.T) {
	svc, ctx := setupTestServices(t)

	err := svc.Routines.Add(ctx, models.NewRoutine(""))
	assert.True(t, errors.Is(err, ErrInvalid))

	r := models.NewRoutine("Leg Day").WithNote("heavy")
	require.NoError(t, svc.Routines.Add(ctx, r))

	got, err := svc.Routines.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", got.Name)
	assert.Equal(t, "heavy", *got.Note)
}

func TestRoutineGetAllOrderedByName(t *testing.T) {
	svc, ctx := setupTestServices(t)
	for _, name := range []string{"pull", "Legs", "Push"} {
		require.NoError(t, svc.Routines.Add(ctx, models.NewRoutine(name)))
	}

	list, err := svc.Routines.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Legs", list[0].Name)
	assert.Equal(t, "pull", list[1].Name)
	assert.Equal(t, "Push", list[2].Name)
}

func TestRoutineDeleteCascades(t *testing.T) {
	svc, ctx := setupTestServices(t)
	r, _, _ := newPushRoutine(t, svc)
	require.Equal(t, 1, count(t, svc, storage.TableSupersets))

	require.NoError(t, svc.Routines.Delete(ctx, r.ID))

	_, err := svc.Routines.GetByID(ctx, r.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Equal(t, 0, count(t, svc, storage.TableRoutineExercises))
	assert.Equal(t, 0, count(t, svc, storage.TableRoutineSets))
	assert.Equal(t, 0, count(t, svc, storage.TableSupersets))
	// Exercise definitions are untouched.
	assert.Equal(t, 2, count(t, svc, storage.TableExercises))
}

func TestRoutineDetail(t *testing.T) {
	svc, ctx := setupTestServices(t)
	r, _, _ := newPushRoutine(t, svc)

	d, err := svc.Routines.Detail(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Push Day", d.Routine.Name)
	require.Len(t, d.Exercises, 2)
	assert.Equal(t, "Bench Press", d.Exercises[0].Exercise.Name)
	assert.Len(t, d.Exercises[0].Sets, 3)
	assert.Equal(t, "Dip", d.Exercises[1].Exercise.Name)
	require.NotNil(t, d.Exercises[0].Superset)
	assert.Equal(t, 1, d.Exercises[0].Superset.Number)
	assert.Nil(t, d.Exercises[1].Superset)

	_, err = svc.Routines.Detail(ctx, 404)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestRoutineSetEditing(t *testing.T) {
	svc, ctx := setupTestServices(t)
	e := addExercise(t, svc, "Squat")
	r := models.NewRoutine("Legs")
	require.NoError(t, svc.Routines.Add(ctx, r))
	re, err := svc.Routines.AddExercise(ctx, r.ID, e.ID, strPtr("pause reps"))
	require.NoError(t, err)

	rs := &models.RoutineSet{SetType: models.SetNormal, RoutineExerciseID: re.ID}
	require.NoError(t, svc.Routines.AddSet(ctx, rs))

	weight := 100.0
	rs.Weight = &weight
	require.NoError(t, svc.Routines.UpdateSet(ctx, rs))
	sets, err := svc.Routines.ListSets(ctx, re.ID)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, 100.0, *sets[0].Weight)

	bad := &models.RoutineSet{SetType: "giant", RoutineExerciseID: re.ID}
	assert.True(t, errors.Is(svc.Routines.AddSet(ctx, bad), ErrInvalid))

	require.NoError(t, svc.Routines.DeleteSet(ctx, rs.ID))
	require.NoError(t, svc.Routines.AddSet(ctx, &models.RoutineSet{SetType: models.SetNormal, RoutineExerciseID: re.ID}))
	require.NoError(t, svc.Routines.RemoveExercise(ctx, re.ID))
	assert.Equal(t, 0, count(t, svc, storage.TableRoutineSets))
}
