// ABOUTME: CLI commands for grouping exercises into supersets.
// ABOUTME: Works for both workout entries and routine entries.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/models"
)

var (
	supersetRoutine bool
	supersetNote    string
)

var supersetCmd = &cobra.Command{
	Use:     "superset",
	Aliases: []string{"ss"},
	Short:   "Group exercises into supersets",
	Long: `Group exercises performed back-to-back.

Superset numbers count up per workout (or per routine with --routine) and are
never reused, even after a superset is deleted.

Examples:
  gymlog superset create 1             # New superset in workout #1
  gymlog superset assign 4 7           # Put workout entry #4 into superset #7
  gymlog superset clear 4              # Take entry #4 out of its superset
  gymlog superset create 2 --routine   # New superset in routine #2
  gymlog superset assign 3 8 --routine # Put routine entry #3 into superset #8`,
}

var supersetCreateCmd = &cobra.Command{
	Use:   "create <workout-id>",
	Short: "Create a numbered superset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var ss *models.Superset
		if supersetRoutine {
			ss, err = svc.Supersets.CreateForRoutine(ctx, id, optString(supersetNote))
		} else {
			ss, err = svc.Supersets.CreateForWorkout(ctx, id, optString(supersetNote))
		}
		if err != nil {
			return fmt.Errorf("failed to create superset: %w", err)
		}
		color.Green("✓ Created superset SS%d (#%d)", ss.Number, ss.ID)
		return nil
	},
}

var supersetAssignCmd = &cobra.Command{
	Use:   "assign <entry-id> <superset-id>",
	Short: "Add an entry to a superset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		entryID, err := parseID(args[0])
		if err != nil {
			return err
		}
		supersetID, err := parseID(args[1])
		if err != nil {
			return err
		}
		ss, err := svc.Supersets.GetByID(ctx, supersetID)
		if err != nil {
			return err
		}

		if supersetRoutine {
			err = svc.RoutineExercises.AssignSuperset(ctx, entryID, supersetID)
		} else {
			err = svc.SessionExercises.AssignSuperset(ctx, entryID, supersetID)
		}
		if err != nil {
			return fmt.Errorf("failed to assign superset: %w", err)
		}
		color.Green("✓ Entry #%d is now in SS%d", entryID, ss.Number)
		return nil
	},
}

var supersetClearCmd = &cobra.Command{
	Use:   "clear <entry-id>",
	Short: "Remove an entry from its superset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		entryID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if supersetRoutine {
			err = svc.RoutineExercises.ClearSuperset(ctx, entryID)
		} else {
			err = svc.SessionExercises.ClearSuperset(ctx, entryID)
		}
		if err != nil {
			return fmt.Errorf("failed to clear superset: %w", err)
		}
		color.Green("✓ Entry #%d removed from its superset", entryID)
		return nil
	},
}

var supersetDeleteCmd = &cobra.Command{
	Use:     "delete <superset-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a superset and detach its members",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := svc.Supersets.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete superset: %w", err)
		}
		color.Green("✓ Deleted superset #%d", id)
		return nil
	},
}

func init() {
	supersetCmd.PersistentFlags().BoolVar(&supersetRoutine, "routine", false, "operate on a routine instead of a workout")
	supersetCreateCmd.Flags().StringVar(&supersetNote, "note", "", "note for the superset")

	supersetCmd.AddCommand(supersetCreateCmd)
	supersetCmd.AddCommand(supersetAssignCmd)
	supersetCmd.AddCommand(supersetClearCmd)
	supersetCmd.AddCommand(supersetDeleteCmd)
	rootCmd.AddCommand(supersetCmd)
}
