// ABOUTME: Shared test helpers for service tests.
// ABOUTME: Builds services over a temp database with a fixed clock.

package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

var testNow = time.Date(2024, 1, 1, 18, 30, 0, 0, time.Local)

func setupTestServices(t *testing.T) (*Services, context.Context) {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "test.db"),
		storage.WithSeed([]*models.Exercise{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc, err := New(db, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return svc, ctx
}

func addExercise(t *testing.T, svc *Services, name string) *models.Exercise {
	t.Helper()
	e := models.NewExercise(name, models.CountingReps)
	require.NoError(t, svc.Exercises.Add(context.Background(), e))
	return e
}

func addWorkout(t *testing.T, svc *Services, date string) *models.Workout {
	t.Helper()
	w := &models.Workout{Date: date, Time: "10:00:00"}
	require.NoError(t, svc.Workouts.Add(context.Background(), w))
	return w
}

func addSessionExercise(t *testing.T, svc *Services, workoutID, exerciseID int64) *models.SessionExercise {
	t.Helper()
	se := models.NewSessionExercise(workoutID, exerciseID)
	require.NoError(t, svc.SessionExercises.Add(context.Background(), se))
	return se
}

// addSet logs a set and optionally marks it completed.
func addSet(t *testing.T, svc *Services, seID int64, weight float64, reps int, completed bool) *models.Set {
	t.Helper()
	ctx := context.Background()
	st := models.NewSet(seID, models.SetNormal).WithWeight(weight).WithReps(reps)
	require.NoError(t, svc.Sets.Add(ctx, st))
	if completed {
		require.NoError(t, svc.Sets.SetCompleted(ctx, st.ID, true))
		st.Completed = true
	}
	return st
}

func count(t *testing.T, svc *Services, table storage.Table) int {
	t.Helper()
	n, err := storage.Count(context.Background(), svc.DB(), table)
	require.NoError(t, err)
	return n
}
