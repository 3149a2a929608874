// ABOUTME: Shared parsing and formatting helpers for CLI commands.
// ABOUTME: Handles ids, timestamps, optional values and column padding.
package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}

// resolveExercise accepts either a numeric id or an exercise name.
func resolveExercise(ctx context.Context, ref string) (*models.Exercise, error) {
	if id, err := parseID(ref); err == nil {
		e, err := svc.Exercises.GetByID(ctx, id)
		if err == nil || !errors.Is(err, storage.ErrNotFound) {
			return e, err
		}
	}
	return svc.Exercises.FindByName(ctx, ref)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func formatWeight(w *float64) string {
	if w == nil {
		return "-"
	}
	return strconv.FormatFloat(*w, 'f', -1, 64)
}

func formatReps(r *int) string {
	if r == nil {
		return "-"
	}
	return strconv.Itoa(*r)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
