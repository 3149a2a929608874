// ABOUTME: MCP resource implementations for the gymlog training log.
// ABOUTME: Provides gymlog://recent, gymlog://today, and gymlog://exercises resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/service"
)

const (
	recentURI    = "gymlog://recent"
	todayURI     = "gymlog://today"
	exercisesURI = "gymlog://exercises"

	recentWorkoutLimit = 10
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Workouts",
		Description: "Last 10 workouts with exercises and sets",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Training",
		Description: "Workouts and body measurements logged today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         exercisesURI,
		Name:        "Exercise Catalog",
		Description: "Exercise definitions grouped by muscle group, with personal records",
		MIMEType:    "application/json",
	}, s.handleExercisesResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.svc.Workouts.List(ctx, recentWorkoutLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	details, err := s.details(ctx, workouts)
	if err != nil {
		return nil, err
	}

	return jsonResource(recentURI, map[string]any{
		"workouts": details,
		"count":    len(details),
	})
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := time.Now().Format(models.DateLayout)

	all, err := s.svc.Workouts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	var todays []*models.Workout
	for _, w := range all {
		if w.Date == today {
			todays = append(todays, w)
		}
	}
	details, err := s.details(ctx, todays)
	if err != nil {
		return nil, err
	}

	body, err := s.svc.Body.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list body measurements: %w", err)
	}
	var todaysBody []*models.BodyMeasurement
	for _, b := range body {
		if b.Date == today {
			todaysBody = append(todaysBody, b)
		}
	}

	var volume float64
	for _, d := range details {
		volume += d.Volume()
	}

	return jsonResource(todayURI, map[string]any{
		"date":              today,
		"workouts":          details,
		"body_measurements": todaysBody,
		"counts": map[string]int{
			"workouts":          len(details),
			"body_measurements": len(todaysBody),
		},
		"volume": volume,
	})
}

func (s *Server) handleExercisesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	exercises, err := s.svc.Exercises.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}

	type entry struct {
		ID           int64               `json:"id"`
		Name         string              `json:"name"`
		CountingType models.CountingType `json:"counting_type"`
		PR           *float64            `json:"personal_record,omitempty"`
	}
	groups := make(map[string][]entry)
	for _, e := range exercises {
		pr, err := s.svc.Exercises.PR(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		group := "other"
		if e.MuscleGroup != nil && *e.MuscleGroup != "" {
			group = *e.MuscleGroup
		}
		groups[group] = append(groups[group], entry{ID: e.ID, Name: e.Name, CountingType: e.CountingType, PR: pr})
	}

	return jsonResource(exercisesURI, map[string]any{
		"muscle_groups": groups,
		"count":         len(exercises),
	})
}

func (s *Server) details(ctx context.Context, workouts []*models.Workout) ([]*service.WorkoutDetail, error) {
	details := make([]*service.WorkoutDetail, 0, len(workouts))
	for _, w := range workouts {
		d, err := s.svc.Workouts.Detail(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load workout %d: %w", w.ID, err)
		}
		details = append(details, d)
	}
	return details, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
