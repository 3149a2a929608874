// ABOUTME: CLI commands for managing workouts and their exercises.
// ABOUTME: Supports start, list, show, delete, from-routine and add-exercise.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/models"
)

var (
	workoutNote  string
	workoutAt    string
	workoutLimit int
	sessionNote  string
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Manage workouts",
	Long: `Log training sessions.

A workout holds the exercises you performed, and each exercise holds its sets.
Exercises performed back-to-back can be grouped into a superset.

WORKFLOW:

  1. Start a workout:       gymlog workout start
  2. Add an exercise:       gymlog workout add-exercise 1 "Bench Press"
  3. Log sets:              gymlog set add 1 --weight 80 --reps 5
  4. View workout details:  gymlog workout show 1

COMMANDS:

  start            Start a new workout now (or --at a given time)
  from-routine     Start a workout from a routine template
  list             List recent workouts
  show             View a workout with all exercises and sets
  add-exercise     Add an exercise to a workout
  remove-exercise  Remove an exercise (and its sets) from a workout
  delete           Delete a workout and everything logged in it`,
}

var workoutStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new workout",
	Long: `Start a new workout stamped with the current date and time.

Examples:
  gymlog workout start
  gymlog workout start --note "Leg day"
  gymlog workout start --at "2024-01-02 18:30"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var w *models.Workout
		if workoutAt != "" {
			t, err := parseTime(workoutAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %w", err)
			}
			w = models.NewWorkout(t)
			w.Note = optString(workoutNote)
			if err := svc.Workouts.Add(ctx, w); err != nil {
				return fmt.Errorf("failed to create workout: %w", err)
			}
		} else {
			var err error
			w, err = svc.Workouts.Start(ctx, optString(workoutNote))
			if err != nil {
				return fmt.Errorf("failed to start workout: %w", err)
			}
		}

		color.Green("✓ Started workout #%d (%s %s)", w.ID, w.Date, w.Time)
		return nil
	},
}

var workoutFromRoutineCmd = &cobra.Command{
	Use:   "from-routine <routine-id>",
	Short: "Start a workout from a routine",
	Long: `Start a new workout by copying a routine's exercises and planned sets.

Copied sets start incomplete; mark them with 'gymlog set done'. Superset
groupings stay on the routine.

Example:
  gymlog workout from-routine 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		routineID, err := parseID(args[0])
		if err != nil {
			return err
		}
		workoutID, err := svc.Workouts.CreateFromRoutine(cmd.Context(), routineID)
		if err != nil {
			return fmt.Errorf("failed to start workout: %w", err)
		}
		color.Green("✓ Started workout #%d from routine #%d", workoutID, routineID)
		return nil
	},
}

var workoutListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		workouts, err := svc.Workouts.List(cmd.Context(), workoutLimit)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		if len(workouts) == 0 {
			fmt.Println("No workouts found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, w := range workouts {
			note := ""
			if w.Note != nil && *w.Note != "" {
				note = faint.Sprintf(" (%s)", truncate(*w.Note, 30))
			}
			fmt.Printf("%s %s %s%s\n",
				faint.Sprint(padRight(fmt.Sprintf("#%d", w.ID), 6)),
				w.Date,
				w.Time,
				note)
		}
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show workout details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		detail, err := svc.Workouts.Detail(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("workout not found: %w", err)
		}

		w := detail.Workout
		faint := color.New(color.Faint)
		bold := color.New(color.Bold)

		bold.Printf("Workout #%d\n", w.ID)
		fmt.Printf("Started: %s %s\n", w.Date, w.Time)
		if w.Note != nil && *w.Note != "" {
			fmt.Printf("Note:    %s\n", *w.Note)
		}

		if len(detail.Entries) == 0 {
			fmt.Println("\nNo exercises logged.")
			return nil
		}

		for _, e := range detail.Entries {
			fmt.Println()
			label := ""
			if e.Superset != nil {
				label = color.CyanString(" [SS%d]", e.Superset.Number)
			}
			bold.Printf("%s", e.Exercise.Name)
			fmt.Printf("%s %s\n", label, faint.Sprintf("(entry #%d)", e.SessionExercise.ID))
			for i, st := range e.Sets {
				mark := " "
				if st.Completed {
					mark = color.GreenString("✓")
				}
				fmt.Printf("  %s %d. %s %s x %s %s\n",
					mark, i+1,
					padRight(string(st.SetType), 8),
					formatWeight(st.Weight),
					formatReps(st.Reps),
					faint.Sprintf("#%d", st.ID))
			}
		}

		fmt.Printf("\nVolume: %.1f\n", detail.Volume())
		return nil
	},
}

var workoutAddExerciseCmd = &cobra.Command{
	Use:   "add-exercise <workout-id> <exercise>",
	Short: "Add an exercise to a workout",
	Long: `Add an exercise to a workout. The exercise may be given by id or by name.

Examples:
  gymlog workout add-exercise 1 "Bench Press"
  gymlog workout add-exercise 1 12 --note "paused reps"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		workoutID, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := resolveExercise(ctx, args[1])
		if err != nil {
			return err
		}

		se := models.NewSessionExercise(workoutID, e.ID)
		se.Note = optString(sessionNote)
		if err := svc.SessionExercises.Add(ctx, se); err != nil {
			return fmt.Errorf("failed to add exercise: %w", err)
		}
		color.Green("✓ Added %s to workout #%d (entry #%d)", e.Name, workoutID, se.ID)
		return nil
	},
}

var workoutRemoveExerciseCmd = &cobra.Command{
	Use:   "remove-exercise <entry-id>",
	Short: "Remove an exercise entry and its sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := svc.SessionExercises.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to remove exercise: %w", err)
		}
		color.Green("✓ Removed entry #%d", id)
		return nil
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a workout",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := svc.Workouts.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete workout: %w", err)
		}
		color.Green("✓ Deleted workout #%d", id)
		return nil
	},
}

func init() {
	workoutStartCmd.Flags().StringVar(&workoutNote, "note", "", "note for the workout")
	workoutStartCmd.Flags().StringVar(&workoutAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	workoutListCmd.Flags().IntVarP(&workoutLimit, "limit", "n", 10, "max number of results")
	workoutAddExerciseCmd.Flags().StringVar(&sessionNote, "note", "", "note for this exercise")

	workoutCmd.AddCommand(workoutStartCmd)
	workoutCmd.AddCommand(workoutFromRoutineCmd)
	workoutCmd.AddCommand(workoutListCmd)
	workoutCmd.AddCommand(workoutShowCmd)
	workoutCmd.AddCommand(workoutAddExerciseCmd)
	workoutCmd.AddCommand(workoutRemoveExerciseCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)
	rootCmd.AddCommand(workoutCmd)
}
