// ABOUTME: Bundled default exercise catalog inserted on first startup.
// ABOUTME: The list ships embedded in the binary as exercises.json.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/gymlog/internal/models"
)

//go:embed exercises.json
var exercisesJSON []byte

type entry struct {
	Name         string `json:"name"`
	CountingType string `json:"counting_type"`
	MuscleGroup  string `json:"muscle_group"`
}

// DefaultExercises returns the bundled exercise catalog in file order.
func DefaultExercises() ([]*models.Exercise, error) {
	return Parse(exercisesJSON)
}

// Parse decodes an exercise catalog document.
func Parse(data []byte) ([]*models.Exercise, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse exercise catalog: %w", err)
	}

	out := make([]*models.Exercise, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("exercise %d: empty name", i)
		}
		if !models.IsValidCountingType(e.CountingType) {
			return nil, fmt.Errorf("exercise %q: invalid counting type %q", e.Name, e.CountingType)
		}
		ex := models.NewExercise(e.Name, models.CountingType(e.CountingType))
		if e.MuscleGroup != "" {
			ex.WithMuscleGroup(e.MuscleGroup)
		}
		out = append(out, ex)
	}
	return out, nil
}
