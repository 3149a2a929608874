// ABOUTME: CLI commands for exercise definitions and per-exercise statistics.
// ABOUTME: Supports add, list, stats, archive, restore and delete.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/models"
)

var (
	exerciseCounting string
	exerciseMuscle   string
	exerciseNote     string
	exerciseAll      bool
)

var exerciseCmd = &cobra.Command{
	Use:     "exercise",
	Aliases: []string{"ex", "e"},
	Short:   "Manage exercise definitions",
	Long: `Manage the exercises you can log.

A default set of exercises is added the first time gymlog runs. Exercises are
counted either in reps or in time; the counting type cannot change once the
exercise exists.

Exercises can be referenced by id or by name (case-insensitive):

  gymlog exercise stats "bench press"
  gymlog exercise stats 3

COMMANDS:

  add       Define a new exercise
  list      List active exercises (--all includes archived ones)
  stats     PR, averages, best sets and weekly volume
  archive   Hide an exercise from pickers without deleting history
  restore   Make an archived exercise active again
  delete    Delete an exercise and everything logged with it`,
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an exercise",
	Long: `Add a new exercise definition.

Examples:
  gymlog exercise add "Incline Dumbbell Press" --muscle chest
  gymlog exercise add "Side Plank" --counting time --muscle core`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.IsValidCountingType(exerciseCounting) {
			return fmt.Errorf("unknown counting type: %s (use reps or time)", exerciseCounting)
		}
		e := models.NewExercise(args[0], models.CountingType(exerciseCounting))
		e.MuscleGroup = optString(exerciseMuscle)
		e.Note = optString(exerciseNote)

		if err := svc.Exercises.Add(cmd.Context(), e); err != nil {
			return fmt.Errorf("failed to add exercise: %w", err)
		}
		color.Green("✓ Added exercise %s (#%d)", e.Name, e.ID)
		return nil
	},
}

var exerciseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var (
			exercises []*models.Exercise
			err       error
		)
		if exerciseAll {
			exercises, err = svc.Exercises.GetAll(ctx)
		} else {
			exercises, err = svc.Exercises.GetActive(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to list exercises: %w", err)
		}

		if len(exercises) == 0 {
			fmt.Println("No exercises found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range exercises {
			status := ""
			if !e.Active {
				status = color.YellowString(" (archived)")
			}
			fmt.Printf("%s %s %s %s%s\n",
				faint.Sprint(padRight(fmt.Sprintf("#%d", e.ID), 6)),
				padRight(truncate(e.Name, 32), 32),
				padRight(string(e.CountingType), 5),
				faint.Sprint(deref(e.MuscleGroup)),
				status)
		}
		return nil
	},
}

var exerciseStatsCmd = &cobra.Command{
	Use:   "stats <exercise>",
	Short: "Show statistics for an exercise",
	Long: `Show statistics computed from completed sets of an exercise.

  PR              heaviest completed weight
  Averages        sets per workout, weight and reps
  Best sets       top three sets by weight, then reps
  Weekly volume   weight x reps per ISO week

Example:
  gymlog exercise stats "Bench Press"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := resolveExercise(ctx, args[0])
		if err != nil {
			return err
		}

		pr, err := svc.Exercises.PR(ctx, e.ID)
		if err != nil {
			return err
		}
		avg, err := svc.Exercises.Averages(ctx, e.ID)
		if err != nil {
			return err
		}
		best, err := svc.Exercises.BestSets(ctx, e.ID)
		if err != nil {
			return err
		}
		weeks, err := svc.Exercises.WeeklyVolume(ctx, e.ID)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)

		bold.Println(e.Name)
		if avg.CompletedSets == 0 {
			fmt.Println("No completed sets yet.")
			return nil
		}

		fmt.Printf("PR:               %s\n", formatWeight(pr))
		fmt.Printf("Completed sets:   %d over %d workouts\n", avg.CompletedSets, avg.Workouts)
		if avg.SetsPerWorkout != nil {
			fmt.Printf("Sets per workout: %.1f\n", *avg.SetsPerWorkout)
		}
		if avg.Weight != nil {
			fmt.Printf("Average weight:   %.1f\n", *avg.Weight)
		}
		if avg.Reps != nil {
			fmt.Printf("Average reps:     %.1f\n", *avg.Reps)
		}

		if len(best) > 0 {
			fmt.Println("\nBest sets:")
			for _, b := range best {
				fmt.Printf("  %s x %s %s\n", formatWeight(b.Set.Weight), formatReps(b.Set.Reps), faint.Sprint(b.Date))
			}
		}
		if len(weeks) > 0 {
			fmt.Println("\nWeekly volume:")
			for _, w := range weeks {
				fmt.Printf("  %s %s %s\n", w.Label(), padRight(fmt.Sprintf("%.1f", w.Volume), 10), faint.Sprintf("%d sets", w.Sets))
			}
		}
		return nil
	},
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <exercise>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := resolveExercise(ctx, args[0])
			if err != nil {
				return err
			}
			if err := svc.Exercises.SetActive(ctx, e.ID, active); err != nil {
				return fmt.Errorf("failed to update exercise: %w", err)
			}
			if active {
				color.Green("✓ Restored %s", e.Name)
			} else {
				color.Green("✓ Archived %s", e.Name)
			}
			return nil
		},
	}
}

var (
	exerciseArchiveCmd = setActiveCmd("archive", "Archive an exercise", false)
	exerciseRestoreCmd = setActiveCmd("restore", "Restore an archived exercise", true)
)

var exerciseDeleteCmd = &cobra.Command{
	Use:     "delete <exercise>",
	Aliases: []string{"rm"},
	Short:   "Delete an exercise",
	Long: `Delete an exercise definition.

Every workout entry, routine entry and set logged with this exercise is
deleted too. Use 'gymlog exercise archive' to keep the history instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := resolveExercise(ctx, args[0])
		if err != nil {
			return err
		}
		if err := svc.Exercises.Delete(ctx, e.ID); err != nil {
			return fmt.Errorf("failed to delete exercise: %w", err)
		}
		color.Green("✓ Deleted %s", e.Name)
		return nil
	},
}

func init() {
	exerciseAddCmd.Flags().StringVarP(&exerciseCounting, "counting", "c", string(models.CountingReps), "counting type: reps or time")
	exerciseAddCmd.Flags().StringVarP(&exerciseMuscle, "muscle", "m", "", "primary muscle group")
	exerciseAddCmd.Flags().StringVar(&exerciseNote, "note", "", "note for the exercise")
	exerciseListCmd.Flags().BoolVarP(&exerciseAll, "all", "a", false, "include archived exercises")

	exerciseCmd.AddCommand(exerciseAddCmd)
	exerciseCmd.AddCommand(exerciseListCmd)
	exerciseCmd.AddCommand(exerciseStatsCmd)
	exerciseCmd.AddCommand(exerciseArchiveCmd)
	exerciseCmd.AddCommand(exerciseRestoreCmd)
	exerciseCmd.AddCommand(exerciseDeleteCmd)
	rootCmd.AddCommand(exerciseCmd)
}
