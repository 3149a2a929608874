// ABOUTME: Derived exercise statistics computed from completed sets only.
// ABOUTME: Personal record, averages, best sets and weekly volume.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

const completedSetsFrom = `
	FROM sets s
	JOIN session_exercises se ON se.id = s.session_exercise_id
	JOIN workouts w ON w.id = se.session_id
	WHERE se.exercise_id = ? AND s.completed = 1`

// PR returns the heaviest completed weight for an exercise, or nil if none.
func (s *ExerciseService) PR(ctx context.Context, exerciseID int64) (*float64, error) {
	pr, err := storage.Get(ctx, s.db, func(sc storage.Scanner) (*float64, error) {
		var v *float64
		err := sc.Scan(&v)
		return v, err
	}, "SELECT MAX(s.weight)"+completedSetsFrom, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("personal record: %w", err)
	}
	return pr, nil
}

// AverageStats summarizes completed sets of one exercise.
type AverageStats struct {
	CompletedSets  int      `json:"completed_sets" yaml:"completed_sets"`
	Workouts       int      `json:"workouts" yaml:"workouts"`
	SetsPerWorkout *float64 `json:"sets_per_workout,omitempty" yaml:"sets_per_workout,omitempty"`
	Weight         *float64 `json:"avg_weight,omitempty" yaml:"avg_weight,omitempty"`
	Reps           *float64 `json:"avg_reps,omitempty" yaml:"avg_reps,omitempty"`
}

// Averages returns average sets per workout, weight and reps over completed sets.
func (s *ExerciseService) Averages(ctx context.Context, exerciseID int64) (*AverageStats, error) {
	stats, err := storage.Get(ctx, s.db, func(sc storage.Scanner) (*AverageStats, error) {
		a := &AverageStats{}
		err := sc.Scan(&a.CompletedSets, &a.Workouts, &a.Weight, &a.Reps)
		return a, err
	}, "SELECT COUNT(*), COUNT(DISTINCT se.session_id), AVG(s.weight), AVG(s.reps)"+completedSetsFrom, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("averages: %w", err)
	}
	if stats.Workouts > 0 {
		per := float64(stats.CompletedSets) / float64(stats.Workouts)
		stats.SetsPerWorkout = &per
	}
	return stats, nil
}

// BestSet is a top completed set and the day it was performed.
type BestSet struct {
	Set  *models.Set `json:"set" yaml:"set"`
	Date string      `json:"date" yaml:"date"`
}

const bestSetLimit = 3

// BestSets returns the top completed sets by weight, then reps.
func (s *ExerciseService) BestSets(ctx context.Context, exerciseID int64) ([]BestSet, error) {
	best, err := storage.Select(ctx, s.db, func(sc storage.Scanner) (BestSet, error) {
		st := &models.Set{}
		b := BestSet{Set: st}
		err := sc.Scan(&st.ID, &st.SetType, &st.Rest, &st.Weight, &st.Reps, &st.Completed,
			&st.Note, &st.SessionExerciseID, &b.Date)
		return b, err
	}, `SELECT s.id, s.set_type, s.rest, s.weight, s.reps, s.completed, s.note, s.session_exercise_id, w.date`+
		completedSetsFrom+` AND s.weight IS NOT NULL
		ORDER BY s.weight DESC, s.reps DESC, s.id
		LIMIT ?`, exerciseID, bestSetLimit)
	if err != nil {
		return nil, fmt.Errorf("best sets: %w", err)
	}
	return best, nil
}

// WeekVolume is the completed volume of one ISO week.
type WeekVolume struct {
	Year   int     `json:"year" yaml:"year"`
	Week   int     `json:"week" yaml:"week"`
	Sets   int     `json:"sets" yaml:"sets"`
	Volume float64 `json:"volume" yaml:"volume"`
}

// Label formats the week as YYYY-Www.
func (w WeekVolume) Label() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// WeeklyVolume sums weight x reps of completed sets per ISO week, oldest first.
func (s *ExerciseService) WeeklyVolume(ctx context.Context, exerciseID int64) ([]WeekVolume, error) {
	type row struct {
		date   string
		weight *float64
		reps   *int
	}
	rows, err := storage.Select(ctx, s.db, func(sc storage.Scanner) (row, error) {
		var r row
		err := sc.Scan(&r.date, &r.weight, &r.reps)
		return r, err
	}, "SELECT w.date, s.weight, s.reps"+completedSetsFrom, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("weekly volume: %w", err)
	}

	weeks := make(map[[2]int]*WeekVolume)
	for _, r := range rows {
		day, err := time.Parse(models.DateLayout, r.date)
		if err != nil {
			s.logger.Warn("skipping set with malformed workout date", "date", r.date)
			continue
		}
		year, week := day.ISOWeek()
		key := [2]int{year, week}
		wv, ok := weeks[key]
		if !ok {
			wv = &WeekVolume{Year: year, Week: week}
			weeks[key] = wv
		}
		wv.Sets++
		set := models.Set{Weight: r.weight, Reps: r.reps}
		wv.Volume += set.Volume()
	}

	out := make([]WeekVolume, 0, len(weeks))
	for _, wv := range weeks {
		out = append(out, *wv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out, nil
}
