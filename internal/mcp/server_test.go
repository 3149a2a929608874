// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, debounced set edits and resource handlers.
package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gymlog/internal/debounce"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/service"
	"github.com/harperreed/gymlog/internal/storage"
)

// setupTestServer creates services over a temp database and an MCP server
// whose debounced writes never fire on their own.
func setupTestServer(t *testing.T) (*Server, *service.Services) {
	t.Helper()

	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "gymlog.db"),
		storage.WithSeed([]*models.Exercise{
			models.NewExercise("Bench Press", models.CountingReps).WithMuscleGroup("chest"),
			models.NewExercise("Plank", models.CountingTime).WithMuscleGroup("core"),
		}))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc, err := service.New(db)
	if err != nil {
		t.Fatalf("Failed to create services: %v", err)
	}

	server, err := NewServer(svc, debounce.New(debounce.WithInterval(time.Hour)), nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, svc
}

// startWithSet starts a workout with one bench press set and returns the set.
func startWithSet(t *testing.T, server *Server) *models.Set {
	t.Helper()
	ctx := context.Background()

	_, w, err := server.handleStartWorkout(ctx, &mcp.CallToolRequest{}, startWorkoutInput{})
	if err != nil {
		t.Fatalf("start_workout failed: %v", err)
	}
	_, se, err := server.handleAddExercise(ctx, &mcp.CallToolRequest{}, addExerciseInput{
		WorkoutID: w.ID, ExerciseName: "bench press",
	})
	if err != nil {
		t.Fatalf("add_exercise failed: %v", err)
	}
	weight, reps := 60.0, 10
	_, out, err := server.handleAddSet(ctx, &mcp.CallToolRequest{}, addSetInput{
		SessionExerciseID: se.ID, Weight: &weight, Reps: &reps,
	})
	if err != nil {
		t.Fatalf("add_set failed: %v", err)
	}
	st, err := server.svc.Sets.GetByID(ctx, out.ID)
	if err != nil {
		t.Fatalf("get set: %v", err)
	}
	return st
}

func TestNewServer(t *testing.T) {
	server, _ := setupTestServer(t)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.svc == nil {
		t.Error("Expected non-nil services")
	}
	if server.writer == nil {
		t.Error("Expected non-nil writer")
	}
}

func TestHandleStartWorkout(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()

	_, out, err := server.handleStartWorkout(ctx, &mcp.CallToolRequest{}, startWorkoutInput{Note: "push"})
	if err != nil {
		t.Fatalf("start_workout failed: %v", err)
	}
	if out.ID == 0 || out.Date == "" || out.Time == "" {
		t.Errorf("unexpected output: %+v", out)
	}

	w, err := svc.Workouts.GetByID(ctx, out.ID)
	if err != nil {
		t.Fatal(err)
	}
	if w.Note == nil || *w.Note != "push" {
		t.Error("expected note to be stored")
	}
}

func TestHandleListWorkouts(t *testing.T) {
	server, _ := setupTestServer(t)
	ctx := context.Background()

	_, out, err := server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{})
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := out.(map[string]any); !ok || m["message"] != "No workouts found." {
		t.Errorf("expected empty message, got %v", out)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := server.handleStartWorkout(ctx, &mcp.CallToolRequest{}, startWorkoutInput{}); err != nil {
			t.Fatal(err)
		}
	}
	_, out, err = server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	workouts := out.(map[string]any)["workouts"].([]*models.Workout)
	if len(workouts) != 2 {
		t.Errorf("got %d workouts, want 2", len(workouts))
	}
}

func TestHandleGetWorkoutNotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	_, _, err := server.handleGetWorkout(context.Background(), &mcp.CallToolRequest{}, idInput{ID: 404})
	if err == nil {
		t.Error("Expected error for missing workout")
	}
}

func TestHandleDeleteWorkout(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()
	st := startWithSet(t, server)

	se, err := svc.SessionExercises.GetByID(ctx, st.SessionExerciseID)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := server.handleDeleteWorkout(ctx, &mcp.CallToolRequest{}, idInput{ID: se.WorkoutID}); err != nil {
		t.Fatalf("delete_workout failed: %v", err)
	}
	if _, _, err := server.handleDeleteWorkout(ctx, &mcp.CallToolRequest{}, idInput{ID: se.WorkoutID}); err == nil {
		t.Error("Expected error deleting a missing workout")
	}
}

func TestHandleAddExerciseRequiresExercise(t *testing.T) {
	server, _ := setupTestServer(t)
	ctx := context.Background()
	_, w, _ := server.handleStartWorkout(ctx, &mcp.CallToolRequest{}, startWorkoutInput{})

	if _, _, err := server.handleAddExercise(ctx, &mcp.CallToolRequest{}, addExerciseInput{WorkoutID: w.ID}); err == nil {
		t.Error("Expected error without exercise_id or exercise_name")
	}
	_, _, err := server.handleAddExercise(ctx, &mcp.CallToolRequest{}, addExerciseInput{WorkoutID: w.ID, ExerciseName: "Zercher"})
	if err == nil || !strings.Contains(err.Error(), "failed to find exercise") {
		t.Errorf("Expected find error, got %v", err)
	}
}

func TestHandleAddSetAndComplete(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()
	st := startWithSet(t, server)

	if st.Completed {
		t.Error("new set must start incomplete")
	}

	if _, _, err := server.handleCompleteSet(ctx, &mcp.CallToolRequest{}, completeSetInput{SetID: st.ID}); err != nil {
		t.Fatalf("complete_set failed: %v", err)
	}
	got, _ := svc.Sets.GetByID(ctx, st.ID)
	if !got.Completed {
		t.Error("expected set to be completed")
	}

	if _, _, err := server.handleCompleteSet(ctx, &mcp.CallToolRequest{}, completeSetInput{SetID: st.ID, Undo: true}); err != nil {
		t.Fatal(err)
	}
	got, _ = svc.Sets.GetByID(ctx, st.ID)
	if got.Completed {
		t.Error("expected set to be not done after undo")
	}

	if _, _, err := server.handleAddSet(ctx, &mcp.CallToolRequest{}, addSetInput{
		SessionExerciseID: st.SessionExerciseID, SetType: "giant",
	}); err == nil {
		t.Error("Expected error for invalid set type")
	}
}

func TestHandleUpdateSetIsDebounced(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()
	st := startWithSet(t, server)

	for _, v := range []string{"62.5", "65", "67.5"} {
		_, out, err := server.handleUpdateSet(ctx, &mcp.CallToolRequest{}, updateSetInput{
			SetID: st.ID, Field: "weight", Value: v,
		})
		if err != nil {
			t.Fatalf("update_set failed: %v", err)
		}
		if out.Pending != 1 {
			t.Errorf("Pending = %d, want 1", out.Pending)
		}
	}

	got, _ := svc.Sets.GetByID(ctx, st.ID)
	if *got.Weight != 60 {
		t.Errorf("weight = %v before flush, want 60", *got.Weight)
	}

	// Completing a set lands pending edits first.
	if _, _, err := server.handleCompleteSet(ctx, &mcp.CallToolRequest{}, completeSetInput{SetID: st.ID}); err != nil {
		t.Fatal(err)
	}
	got, _ = svc.Sets.GetByID(ctx, st.ID)
	if *got.Weight != 67.5 {
		t.Errorf("weight = %v after flush, want 67.5", *got.Weight)
	}
	if server.writer.Pending() != 0 {
		t.Error("expected no pending writes")
	}
}

func TestHandleUpdateSetFlush(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()
	st := startWithSet(t, server)

	_, out, err := server.handleUpdateSet(ctx, &mcp.CallToolRequest{}, updateSetInput{
		SetID: st.ID, Field: "reps", Value: "12", Flush: true,
	})
	if err != nil {
		t.Fatalf("update_set failed: %v", err)
	}
	if out.Pending != 0 {
		t.Errorf("Pending = %d, want 0", out.Pending)
	}
	got, _ := svc.Sets.GetByID(ctx, st.ID)
	if *got.Reps != 12 {
		t.Errorf("reps = %d, want 12", *got.Reps)
	}

	if _, _, err := server.handleUpdateSet(ctx, &mcp.CallToolRequest{}, updateSetInput{
		SetID: 9999, Field: "reps", Value: "1",
	}); err == nil {
		t.Error("Expected error for missing set")
	}
}

func TestHandleExerciseStats(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()
	st := startWithSet(t, server)

	se, _ := svc.SessionExercises.GetByID(ctx, st.SessionExerciseID)
	_, out, err := server.handleExerciseStats(ctx, &mcp.CallToolRequest{}, exerciseStatsInput{ExerciseID: se.ExerciseID})
	if err != nil {
		t.Fatalf("exercise_stats failed: %v", err)
	}
	if out.PR != nil {
		t.Error("incomplete sets must not count toward the personal record")
	}

	if err := svc.Sets.SetCompleted(ctx, st.ID, true); err != nil {
		t.Fatal(err)
	}
	_, out, err = server.handleExerciseStats(ctx, &mcp.CallToolRequest{}, exerciseStatsInput{ExerciseID: se.ExerciseID})
	if err != nil {
		t.Fatal(err)
	}
	if out.PR == nil || *out.PR != 60 {
		t.Errorf("PR = %v, want 60", out.PR)
	}
	if len(out.BestSets) != 1 || len(out.WeeklyVolume) != 1 {
		t.Errorf("unexpected stats: %+v", out)
	}
}

func TestHandleStartFromRoutine(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()

	r := models.NewRoutine("Chest")
	if err := svc.Routines.Add(ctx, r); err != nil {
		t.Fatal(err)
	}
	bench, _ := svc.Exercises.FindByName(ctx, "Bench Press")
	re, err := svc.Routines.AddExercise(ctx, r.ID, bench.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Routines.AddSet(ctx, &models.RoutineSet{SetType: models.SetNormal, RoutineExerciseID: re.ID}); err != nil {
		t.Fatal(err)
	}

	_, out, err := server.handleStartFromRoutine(ctx, &mcp.CallToolRequest{}, startFromRoutineInput{RoutineID: r.ID})
	if err != nil {
		t.Fatalf("start_from_routine failed: %v", err)
	}
	_, d, err := server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, idInput{ID: out.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Entries) != 1 || len(d.Entries[0].Sets) != 1 {
		t.Errorf("workout does not mirror routine: %+v", d)
	}

	_, rd, err := server.handleGetRoutine(ctx, &mcp.CallToolRequest{}, idInput{ID: r.ID})
	if err != nil || rd.Routine.Name != "Chest" {
		t.Errorf("get_routine = %v, %v", rd, err)
	}

	if _, _, err := server.handleStartFromRoutine(ctx, &mcp.CallToolRequest{}, startFromRoutineInput{RoutineID: 404}); err == nil {
		t.Error("Expected error for missing routine")
	}
}

func TestHandleBodyMeasurements(t *testing.T) {
	server, _ := setupTestServer(t)
	ctx := context.Background()

	_, out, err := server.handleLatestBody(ctx, &mcp.CallToolRequest{}, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := out.(map[string]any); !ok || m["message"] == nil {
		t.Errorf("expected empty message, got %v", out)
	}

	if _, _, err := server.handleAddBodyMeasurement(ctx, &mcp.CallToolRequest{}, addBodyInput{
		Values: map[string]float64{"ankle": 20},
	}); err == nil || !strings.Contains(err.Error(), "unknown measurement") {
		t.Errorf("Expected unknown measurement error, got %v", err)
	}

	if _, _, err := server.handleAddBodyMeasurement(ctx, &mcp.CallToolRequest{}, addBodyInput{
		Date: "2024-05-01", Values: map[string]float64{"weight": 80.1, "waist": 82},
	}); err != nil {
		t.Fatalf("add_body_measurement failed: %v", err)
	}
	_, out, err = server.handleLatestBody(ctx, &mcp.CallToolRequest{}, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	b, ok := out.(*models.BodyMeasurement)
	if !ok || *b.Waist != 82 {
		t.Errorf("latest = %v", out)
	}
}

func TestHandleRecentResource(t *testing.T) {
	server, _ := setupTestServer(t)
	startWithSet(t, server)

	result, err := server.handleRecentResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("recent resource failed: %v", err)
	}
	var body struct {
		Count    int               `json:"count"`
		Workouts []json.RawMessage `json:"workouts"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || len(body.Workouts) != 1 {
		t.Errorf("unexpected recent resource: %s", result.Contents[0].Text)
	}
	if result.Contents[0].URI != recentURI {
		t.Errorf("URI = %s", result.Contents[0].URI)
	}
}

func TestHandleTodayResource(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()
	startWithSet(t, server)
	old := &models.Workout{Date: "2001-01-01", Time: "08:00:00"}
	if err := svc.Workouts.Add(ctx, old); err != nil {
		t.Fatal(err)
	}

	result, err := server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("today resource failed: %v", err)
	}
	var body struct {
		Date   string         `json:"date"`
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatal(err)
	}
	if body.Date != time.Now().Format(models.DateLayout) {
		t.Errorf("date = %s", body.Date)
	}
	if body.Counts["workouts"] != 1 {
		t.Errorf("workouts today = %d, want 1", body.Counts["workouts"])
	}
}

func TestHandleExercisesResource(t *testing.T) {
	server, _ := setupTestServer(t)

	result, err := server.handleExercisesResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("exercises resource failed: %v", err)
	}
	var body struct {
		Count  int                          `json:"count"`
		Groups map[string][]json.RawMessage `json:"muscle_groups"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || len(body.Groups["chest"]) != 1 || len(body.Groups["core"]) != 1 {
		t.Errorf("unexpected catalog: %s", result.Contents[0].Text)
	}
}
