// ABOUTME: CLI commands for routine templates.
// ABOUTME: Supports add, list, show, add-exercise, add-set, remove and delete.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/models"
)

var (
	routineNote      string
	plannedNote      string
	plannedSetType   string
	plannedSetWeight float64
	plannedSetReps   int
	plannedSetRest   string
	plannedSetNote   string
)

var routineCmd = &cobra.Command{
	Use:     "routine",
	Aliases: []string{"r"},
	Short:   "Manage routine templates",
	Long: `Manage reusable workout templates.

A routine lists exercises with planned sets. Starting a workout from a routine
copies every exercise and planned set into the new workout.

WORKFLOW:

  1. Create the routine:    gymlog routine add "Push A"
  2. Plan an exercise:      gymlog routine add-exercise 1 "Bench Press"
  3. Plan its sets:         gymlog routine add-set 1 --weight 60 --reps 10
  4. Use it:                gymlog workout from-routine 1`,
}

var routineAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a routine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := models.NewRoutine(args[0])
		r.Note = optString(routineNote)
		if err := svc.Routines.Add(cmd.Context(), r); err != nil {
			return fmt.Errorf("failed to create routine: %w", err)
		}
		color.Green("✓ Created routine %s (#%d)", r.Name, r.ID)
		return nil
	},
}

var routineListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List routines",
	RunE: func(cmd *cobra.Command, args []string) error {
		routines, err := svc.Routines.GetAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list routines: %w", err)
		}
		if len(routines) == 0 {
			fmt.Println("No routines found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, r := range routines {
			note := ""
			if r.Note != nil && *r.Note != "" {
				note = faint.Sprintf(" (%s)", truncate(*r.Note, 30))
			}
			fmt.Printf("%s %s%s\n", faint.Sprint(padRight(fmt.Sprintf("#%d", r.ID), 6)), r.Name, note)
		}
		return nil
	},
}

var routineShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a routine with its planned sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		detail, err := svc.Routines.Detail(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("routine not found: %w", err)
		}

		faint := color.New(color.Faint)
		bold := color.New(color.Bold)

		bold.Printf("%s\n", detail.Routine.Name)
		if detail.Routine.Note != nil {
			fmt.Println(*detail.Routine.Note)
		}
		if len(detail.Exercises) == 0 {
			fmt.Println("\nNo exercises planned.")
			return nil
		}

		for _, pe := range detail.Exercises {
			fmt.Println()
			label := ""
			if pe.Superset != nil {
				label = color.CyanString(" [SS%d]", pe.Superset.Number)
			}
			bold.Printf("%s", pe.Exercise.Name)
			fmt.Printf("%s %s\n", label, faint.Sprintf("(entry #%d)", pe.RoutineExercise.ID))
			for i, rs := range pe.Sets {
				rest := ""
				if rs.Rest != nil {
					rest = faint.Sprintf(" rest %s", *rs.Rest)
				}
				fmt.Printf("  %d. %s %s x %s%s %s\n",
					i+1,
					padRight(string(rs.SetType), 8),
					formatWeight(rs.Weight),
					formatReps(rs.Reps),
					rest,
					faint.Sprintf("#%d", rs.ID))
			}
		}
		return nil
	},
}

var routineAddExerciseCmd = &cobra.Command{
	Use:   "add-exercise <routine-id> <exercise>",
	Short: "Plan an exercise in a routine",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		routineID, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := resolveExercise(ctx, args[1])
		if err != nil {
			return err
		}
		re, err := svc.Routines.AddExercise(ctx, routineID, e.ID, optString(plannedNote))
		if err != nil {
			return fmt.Errorf("failed to add exercise: %w", err)
		}
		color.Green("✓ Added %s to routine #%d (entry #%d)", e.Name, routineID, re.ID)
		return nil
	},
}

var routineAddSetCmd = &cobra.Command{
	Use:   "add-set <entry-id>",
	Short: "Plan a set for a routine exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseID(args[0])
		if err != nil {
			return err
		}
		rs := &models.RoutineSet{
			SetType:           models.SetType(plannedSetType),
			Rest:              optString(plannedSetRest),
			Note:              optString(plannedSetNote),
			RoutineExerciseID: entryID,
		}
		if cmd.Flags().Changed("weight") {
			w := plannedSetWeight
			rs.Weight = &w
		}
		if cmd.Flags().Changed("reps") {
			r := plannedSetReps
			rs.Reps = &r
		}
		if err := svc.Routines.AddSet(cmd.Context(), rs); err != nil {
			return fmt.Errorf("failed to add set: %w", err)
		}
		color.Green("✓ Planned set #%d (%s x %s)", rs.ID, formatWeight(rs.Weight), formatReps(rs.Reps))
		return nil
	},
}

var routineRemoveExerciseCmd = &cobra.Command{
	Use:   "remove-exercise <entry-id>",
	Short: "Remove a planned exercise and its sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := svc.Routines.RemoveExercise(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to remove exercise: %w", err)
		}
		color.Green("✓ Removed entry #%d", id)
		return nil
	},
}

var routineDeleteSetCmd = &cobra.Command{
	Use:   "delete-set <set-id>",
	Short: "Delete a planned set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := svc.Routines.DeleteSet(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete set: %w", err)
		}
		color.Green("✓ Deleted planned set #%d", id)
		return nil
	},
}

var routineDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a routine",
	Long: `Delete a routine with its planned exercises and sets.

Workouts started from the routine are not affected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := svc.Routines.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete routine: %w", err)
		}
		color.Green("✓ Deleted routine #%d", id)
		return nil
	},
}

func init() {
	routineAddCmd.Flags().StringVar(&routineNote, "note", "", "note for the routine")
	routineAddExerciseCmd.Flags().StringVar(&plannedNote, "note", "", "note for the planned exercise")
	routineAddSetCmd.Flags().StringVarP(&plannedSetType, "type", "t", string(models.SetNormal), "set type: normal, warm-up, dropset")
	routineAddSetCmd.Flags().Float64VarP(&plannedSetWeight, "weight", "w", 0, "planned weight")
	routineAddSetCmd.Flags().IntVarP(&plannedSetReps, "reps", "r", 0, "planned reps")
	routineAddSetCmd.Flags().StringVar(&plannedSetRest, "rest", "", "rest after the set, e.g. 90s")
	routineAddSetCmd.Flags().StringVar(&plannedSetNote, "note", "", "note for the set")

	routineCmd.AddCommand(routineAddCmd)
	routineCmd.AddCommand(routineListCmd)
	routineCmd.AddCommand(routineShowCmd)
	routineCmd.AddCommand(routineAddExerciseCmd)
	routineCmd.AddCommand(routineAddSetCmd)
	routineCmd.AddCommand(routineRemoveExerciseCmd)
	routineCmd.AddCommand(routineDeleteSetCmd)
	routineCmd.AddCommand(routineDeleteCmd)
	rootCmd.AddCommand(routineCmd)
}
