// ABOUTME: MCP tool implementations for the gymlog training log.
// ABOUTME: Workouts, routines, sets, exercise stats and body measurements.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gymlog/internal/debounce"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/service"
	"github.com/harperreed/gymlog/internal/storage"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent workouts, newest first",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get a workout with its exercises, supersets and sets",
	}, s.handleGetWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_workout",
		Description: "Start a new empty workout stamped with the current date and time",
	}, s.handleStartWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_from_routine",
		Description: "Start a workout by copying a routine's exercises and planned sets",
	}, s.handleStartFromRoutine)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a workout and everything logged in it",
	}, s.handleDeleteWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_exercise",
		Description: "Add an exercise to a workout by exercise ID or name",
	}, s.handleAddExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_set",
		Description: "Log a set for an exercise in a workout",
	}, s.handleAddSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_set",
		Description: "Mark a set as done or not done",
	}, s.handleCompleteSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_set",
		Description: "Edit weight, reps, rest or note of a set; rapid edits are coalesced",
	}, s.handleUpdateSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_exercises",
		Description: "List exercise definitions",
	}, s.handleListExercises)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "exercise_stats",
		Description: "Personal record, averages, best sets and weekly volume for an exercise",
	}, s.handleExerciseStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_routines",
		Description: "List routine templates",
	}, s.handleListRoutines)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_routine",
		Description: "Get a routine with its planned exercises and sets",
	}, s.handleGetRoutine)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_body_measurement",
		Description: "Record body measurements such as weight, waist or arm_left",
	}, s.handleAddBodyMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "latest_body_measurement",
		Description: "Get the most recent body measurement",
	}, s.handleLatestBody)
}

// Tool input/output types

type listWorkoutsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type idInput struct {
	ID int64 `json:"id" jsonschema:"Record ID"`
}

type startWorkoutInput struct {
	Note string `json:"note,omitempty" jsonschema:"Optional workout note"`
}

type startFromRoutineInput struct {
	RoutineID int64 `json:"routine_id" jsonschema:"Routine to copy"`
}

type workoutOutput struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Message string `json:"message"`
}

type simpleOutput struct {
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message"`
}

type addExerciseInput struct {
	WorkoutID    int64  `json:"workout_id" jsonschema:"Workout to add the exercise to"`
	ExerciseID   int64  `json:"exercise_id,omitempty" jsonschema:"Exercise ID (or use exercise_name)"`
	ExerciseName string `json:"exercise_name,omitempty" jsonschema:"Exercise name, matched case-insensitively"`
	Note         string `json:"note,omitempty" jsonschema:"Optional note"`
}

type addSetInput struct {
	SessionExerciseID int64    `json:"session_exercise_id" jsonschema:"Workout exercise the set belongs to"`
	SetType           string   `json:"set_type,omitempty" jsonschema:"normal, warm-up or dropset (default normal)"`
	Weight            *float64 `json:"weight,omitempty" jsonschema:"Weight lifted"`
	Reps              *int     `json:"reps,omitempty" jsonschema:"Repetitions or seconds for timed exercises"`
	Rest              string   `json:"rest,omitempty" jsonschema:"Rest annotation such as 90s"`
	Note              string   `json:"note,omitempty" jsonschema:"Optional note"`
}

type completeSetInput struct {
	SetID int64 `json:"set_id" jsonschema:"Set to update"`
	Undo  bool  `json:"undo,omitempty" jsonschema:"Mark the set as not done instead"`
}

type updateSetInput struct {
	SetID int64  `json:"set_id" jsonschema:"Set to edit"`
	Field string `json:"field" jsonschema:"One of weight, reps, rest, note"`
	Value string `json:"value" jsonschema:"New value; empty clears the field"`
	Flush bool   `json:"flush,omitempty" jsonschema:"Write immediately instead of waiting for the quiet interval"`
}

type updateSetOutput struct {
	Pending int    `json:"pending"`
	Message string `json:"message"`
}

type listExercisesInput struct {
	ActiveOnly bool `json:"active_only,omitempty" jsonschema:"Only list active exercises"`
}

type exerciseStatsInput struct {
	ExerciseID int64 `json:"exercise_id" jsonschema:"Exercise to summarize"`
}

type exerciseStatsOutput struct {
	Exercise     *models.Exercise      `json:"exercise"`
	PR           *float64              `json:"personal_record,omitempty"`
	Averages     *service.AverageStats `json:"averages"`
	BestSets     []service.BestSet     `json:"best_sets"`
	WeeklyVolume []service.WeekVolume  `json:"weekly_volume"`
}

type addBodyInput struct {
	Date   string             `json:"date,omitempty" jsonschema:"YYYY-MM-DD, defaults to today"`
	Values map[string]float64 `json:"values" jsonschema:"Measurements keyed by column, e.g. weight, waist, arm_left"`
}

// Tool handlers

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	workouts, err := s.svc.Workouts.List(ctx, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil, map[string]any{"message": "No workouts found."}, nil
	}
	return nil, map[string]any{"workouts": workouts}, nil
}

func (s *Server) handleGetWorkout(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, *service.WorkoutDetail, error) {
	d, err := s.svc.Workouts.Detail(ctx, input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get workout: %w", err)
	}
	return nil, d, nil
}

func (s *Server) handleStartWorkout(ctx context.Context, req *mcp.CallToolRequest, input startWorkoutInput) (*mcp.CallToolResult, workoutOutput, error) {
	var note *string
	if input.Note != "" {
		note = &input.Note
	}
	w, err := s.svc.Workouts.Start(ctx, note)
	if err != nil {
		return nil, workoutOutput{}, fmt.Errorf("failed to start workout: %w", err)
	}
	return nil, workoutOutput{
		ID:      w.ID,
		Date:    w.Date,
		Time:    w.Time,
		Message: fmt.Sprintf("Started workout %d at %s %s", w.ID, w.Date, w.Time),
	}, nil
}

func (s *Server) handleStartFromRoutine(ctx context.Context, req *mcp.CallToolRequest, input startFromRoutineInput) (*mcp.CallToolResult, workoutOutput, error) {
	id, err := s.svc.Workouts.CreateFromRoutine(ctx, input.RoutineID)
	if err != nil {
		return nil, workoutOutput{}, fmt.Errorf("failed to start from routine: %w", err)
	}
	w, err := s.svc.Workouts.GetByID(ctx, id)
	if err != nil {
		return nil, workoutOutput{}, err
	}
	return nil, workoutOutput{
		ID:      w.ID,
		Date:    w.Date,
		Time:    w.Time,
		Message: fmt.Sprintf("Started workout %d from routine %d", w.ID, input.RoutineID),
	}, nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if _, err := s.svc.Workouts.GetByID(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete workout: %w", err)
	}
	if err := s.svc.Workouts.Delete(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete workout: %w", err)
	}
	return nil, simpleOutput{ID: input.ID, Message: fmt.Sprintf("Deleted workout %d", input.ID)}, nil
}

func (s *Server) handleAddExercise(ctx context.Context, req *mcp.CallToolRequest, input addExerciseInput) (*mcp.CallToolResult, simpleOutput, error) {
	var (
		e   *models.Exercise
		err error
	)
	switch {
	case input.ExerciseID != 0:
		e, err = s.svc.Exercises.GetByID(ctx, input.ExerciseID)
	case input.ExerciseName != "":
		e, err = s.svc.Exercises.FindByName(ctx, input.ExerciseName)
	default:
		return nil, simpleOutput{}, fmt.Errorf("exercise_id or exercise_name is required")
	}
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to find exercise: %w", err)
	}

	se := models.NewSessionExercise(input.WorkoutID, e.ID)
	if input.Note != "" {
		se.WithNote(input.Note)
	}
	if err := s.svc.SessionExercises.Add(ctx, se); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to add exercise: %w", err)
	}
	return nil, simpleOutput{
		ID:      se.ID,
		Message: fmt.Sprintf("Added %s to workout %d (session exercise %d)", e.Name, input.WorkoutID, se.ID),
	}, nil
}

func (s *Server) handleAddSet(ctx context.Context, req *mcp.CallToolRequest, input addSetInput) (*mcp.CallToolResult, simpleOutput, error) {
	setType := models.SetNormal
	if input.SetType != "" {
		setType = models.SetType(input.SetType)
	}

	st := models.NewSet(input.SessionExerciseID, setType)
	st.Weight = input.Weight
	st.Reps = input.Reps
	if input.Rest != "" {
		st.WithRest(input.Rest)
	}
	if input.Note != "" {
		st.WithNote(input.Note)
	}
	if err := s.svc.Sets.Add(ctx, st); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to add set: %w", err)
	}
	return nil, simpleOutput{ID: st.ID, Message: fmt.Sprintf("Added %s set %d", st.SetType, st.ID)}, nil
}

func (s *Server) handleCompleteSet(ctx context.Context, req *mcp.CallToolRequest, input completeSetInput) (*mcp.CallToolResult, simpleOutput, error) {
	// A pending edit must land before the completion flag changes.
	for _, field := range []string{"weight", "reps", "rest", "note"} {
		if err := s.writer.Flush(debounce.Key("set", input.SetID, field)); err != nil {
			return nil, simpleOutput{}, err
		}
	}
	if _, err := s.svc.Sets.GetByID(ctx, input.SetID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to complete set: %w", err)
	}
	if err := s.svc.Sets.SetCompleted(ctx, input.SetID, !input.Undo); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to complete set: %w", err)
	}
	state := "done"
	if input.Undo {
		state = "not done"
	}
	return nil, simpleOutput{ID: input.SetID, Message: fmt.Sprintf("Marked set %d %s", input.SetID, state)}, nil
}

func (s *Server) handleUpdateSet(ctx context.Context, req *mcp.CallToolRequest, input updateSetInput) (*mcp.CallToolResult, updateSetOutput, error) {
	value, err := service.ParseSetField(input.Field, input.Value)
	if err != nil {
		return nil, updateSetOutput{}, err
	}
	if _, err := s.svc.Sets.GetByID(ctx, input.SetID); err != nil {
		return nil, updateSetOutput{}, fmt.Errorf("failed to update set: %w", err)
	}

	// The MCP request context ends with the call; the write outlives it.
	writeCtx := context.WithoutCancel(ctx)
	key := debounce.Key("set", input.SetID, input.Field)
	s.writer.Schedule(key, func() error {
		return s.svc.Sets.UpdateField(writeCtx, input.SetID, input.Field, value)
	})

	msg := fmt.Sprintf("Scheduled %s update for set %d", input.Field, input.SetID)
	if input.Flush {
		if err := s.writer.Flush(key); err != nil {
			return nil, updateSetOutput{}, fmt.Errorf("failed to update set: %w", err)
		}
		msg = fmt.Sprintf("Updated %s of set %d", input.Field, input.SetID)
	}
	return nil, updateSetOutput{Pending: s.writer.Pending(), Message: msg}, nil
}

func (s *Server) handleListExercises(ctx context.Context, req *mcp.CallToolRequest, input listExercisesInput) (*mcp.CallToolResult, any, error) {
	list := s.svc.Exercises.GetAll
	if input.ActiveOnly {
		list = s.svc.Exercises.GetActive
	}
	exercises, err := list(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	return nil, map[string]any{"exercises": exercises}, nil
}

func (s *Server) handleExerciseStats(ctx context.Context, req *mcp.CallToolRequest, input exerciseStatsInput) (*mcp.CallToolResult, exerciseStatsOutput, error) {
	e, err := s.svc.Exercises.GetByID(ctx, input.ExerciseID)
	if err != nil {
		return nil, exerciseStatsOutput{}, fmt.Errorf("failed to get exercise: %w", err)
	}
	out := exerciseStatsOutput{Exercise: e}
	if out.PR, err = s.svc.Exercises.PR(ctx, e.ID); err != nil {
		return nil, exerciseStatsOutput{}, err
	}
	if out.Averages, err = s.svc.Exercises.Averages(ctx, e.ID); err != nil {
		return nil, exerciseStatsOutput{}, err
	}
	if out.BestSets, err = s.svc.Exercises.BestSets(ctx, e.ID); err != nil {
		return nil, exerciseStatsOutput{}, err
	}
	if out.WeeklyVolume, err = s.svc.Exercises.WeeklyVolume(ctx, e.ID); err != nil {
		return nil, exerciseStatsOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleListRoutines(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	routines, err := s.svc.Routines.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list routines: %w", err)
	}
	if len(routines) == 0 {
		return nil, map[string]any{"message": "No routines found."}, nil
	}
	return nil, map[string]any{"routines": routines}, nil
}

func (s *Server) handleGetRoutine(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, *service.RoutineDetail, error) {
	d, err := s.svc.Routines.Detail(ctx, input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get routine: %w", err)
	}
	return nil, d, nil
}

func (s *Server) handleAddBodyMeasurement(ctx context.Context, req *mcp.CallToolRequest, input addBodyInput) (*mcp.CallToolResult, simpleOutput, error) {
	if len(input.Values) == 0 {
		return nil, simpleOutput{}, fmt.Errorf("at least one measurement is required")
	}
	b := &models.BodyMeasurement{Date: input.Date}
	for column, v := range input.Values {
		if !b.Set(column, v) {
			return nil, simpleOutput{}, fmt.Errorf("unknown measurement %q (valid: %s)",
				column, strings.Join(models.BodyMeasurementColumns, ", "))
		}
	}
	if err := s.svc.Body.Add(ctx, b); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to add body measurement: %w", err)
	}
	return nil, simpleOutput{
		ID:      b.ID,
		Message: fmt.Sprintf("Recorded %d measurement(s) for %s", len(input.Values), b.Date),
	}, nil
}

func (s *Server) handleLatestBody(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	b, err := s.svc.Body.Latest(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, map[string]any{"message": "No body measurements found."}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get body measurement: %w", err)
	}
	return nil, b, nil
}
