// ABOUTME: CLI commands for logging sets inside a workout exercise.
// ABOUTME: Field edits go through the debounced writer and flush on exit.
package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/debounce"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/service"
)

var (
	setType   string
	setWeight float64
	setReps   int
	setRest   string
	setNote   string
	setUndo   bool
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Log and edit sets",
	Long: `Log sets for an exercise entry of a workout.

New sets always start incomplete. Mark a set as done once you have performed
it; only completed sets count towards PRs and volume.

SET TYPES:

  normal, warm-up, dropset

COMMANDS:

  add      Add a set to a workout exercise entry
  done     Mark a set completed (--undo to clear)
  edit     Change weight, reps, rest or note of a set
  delete   Delete a set

Examples:
  gymlog set add 4 --weight 80 --reps 5
  gymlog set add 4 --type warm-up --weight 40 --reps 10
  gymlog set edit 12 reps 6
  gymlog set done 12`,
}

var setAddCmd = &cobra.Command{
	Use:   "add <entry-id>",
	Short: "Add a set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseID(args[0])
		if err != nil {
			return err
		}

		st := models.NewSet(entryID, models.SetType(setType))
		if cmd.Flags().Changed("weight") {
			st.WithWeight(setWeight)
		}
		if cmd.Flags().Changed("reps") {
			st.WithReps(setReps)
		}
		st.Rest = optString(setRest)
		st.Note = optString(setNote)

		if err := svc.Sets.Add(cmd.Context(), st); err != nil {
			return fmt.Errorf("failed to add set: %w", err)
		}
		color.Green("✓ Added set #%d (%s x %s)", st.ID, formatWeight(st.Weight), formatReps(st.Reps))
		return nil
	},
}

var setDoneCmd = &cobra.Command{
	Use:   "done <set-id>",
	Short: "Mark a set completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := svc.Sets.GetByID(ctx, id); err != nil {
			return fmt.Errorf("set not found: %w", err)
		}
		if err := svc.Sets.SetCompleted(ctx, id, !setUndo); err != nil {
			return err
		}
		if setUndo {
			color.Green("✓ Set #%d marked not done", id)
		} else {
			color.Green("✓ Set #%d done", id)
		}
		return nil
	},
}

var setEditCmd = &cobra.Command{
	Use:   "edit <set-id> <field> [value]",
	Short: "Edit one field of a set",
	Long: `Edit the weight, reps, rest or note of a set.

Omitting the value clears the field.

Examples:
  gymlog set edit 12 weight 82.5
  gymlog set edit 12 note "felt easy"
  gymlog set edit 12 rest`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		field, raw := args[1], ""
		if len(args) == 3 {
			raw = args[2]
		}

		value, err := service.ParseSetField(field, raw)
		if err != nil {
			return err
		}
		if _, err := svc.Sets.GetByID(ctx, id); err != nil {
			return fmt.Errorf("set not found: %w", err)
		}

		// Written when the quiet interval ends or the command exits.
		writeCtx := context.WithoutCancel(ctx)
		writer.Schedule(debounce.Key("set", id, field), func() error {
			return svc.Sets.UpdateField(writeCtx, id, field, value)
		})
		color.Green("✓ Updated %s of set #%d", field, id)
		return nil
	},
}

var setDeleteCmd = &cobra.Command{
	Use:     "delete <set-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a set",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := svc.Sets.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete set: %w", err)
		}
		color.Green("✓ Deleted set #%d", id)
		return nil
	},
}

func init() {
	setAddCmd.Flags().StringVarP(&setType, "type", "t", string(models.SetNormal), "set type: normal, warm-up, dropset")
	setAddCmd.Flags().Float64VarP(&setWeight, "weight", "w", 0, "weight")
	setAddCmd.Flags().IntVarP(&setReps, "reps", "r", 0, "reps (or seconds for timed exercises)")
	setAddCmd.Flags().StringVar(&setRest, "rest", "", "rest after the set, e.g. 90s")
	setAddCmd.Flags().StringVar(&setNote, "note", "", "note for the set")
	setDoneCmd.Flags().BoolVar(&setUndo, "undo", false, "mark the set not done")

	setCmd.AddCommand(setAddCmd)
	setCmd.AddCommand(setDoneCmd)
	setCmd.AddCommand(setEditCmd)
	setCmd.AddCommand(setDeleteCmd)
	rootCmd.AddCommand(setCmd)
}
