// ABOUTME: Tests for the bundled exercise catalog.
// ABOUTME: Ensures the embedded file parses and rejects bad entries.
package seed

import (
	"testing"

	"github.com/harperreed/gymlog/internal/models"
)

func TestDefaultExercises(t *testing.T) {
	list, err := DefaultExercises()
	if err != nil {
		t.Fatalf("DefaultExercises failed: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("expected a non-empty catalog")
	}

	seen := make(map[string]bool)
	timed := 0
	for _, e := range list {
		if seen[e.Name] {
			t.Errorf("duplicate exercise %q", e.Name)
		}
		seen[e.Name] = true
		if !e.Active {
			t.Errorf("exercise %q not active", e.Name)
		}
		if e.CountingType == models.CountingTime {
			timed++
		}
	}
	if timed == 0 {
		t.Error("expected at least one time-based exercise")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []string{
		`[{"name":"","counting_type":"reps"}]`,
		`[{"name":"Row","counting_type":"distance"}]`,
		`{"name":"Row"}`,
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Errorf("Parse(%s) succeeded, want error", c)
		}
	}
}
