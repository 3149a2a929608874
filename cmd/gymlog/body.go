// ABOUTME: CLI commands for body measurements.
// ABOUTME: Supports add, list, latest and delete with one flag per measurement.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

var (
	bodyDate   string
	bodyLimit  int
	bodyValues = make(map[string]*float64, len(models.BodyMeasurementColumns))
)

var bodyCmd = &cobra.Command{
	Use:     "body",
	Aliases: []string{"b"},
	Short:   "Track body measurements",
	Long: `Track weight, height and girth measurements.

Every measurement is optional; record only what you measured.

MEASUREMENTS:

  weight, height, neck, shoulder, chest, waist,
  arm-left, arm-right, forearm-left, forearm-right,
  thigh-left, thigh-right, calf-left, calf-right

Examples:
  gymlog body add --weight 81.2
  gymlog body add --date 2024-01-02 --waist 84 --chest 102
  gymlog body latest`,
}

var bodyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record body measurements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := &models.BodyMeasurement{Date: bodyDate}
		recorded := 0
		for _, column := range models.BodyMeasurementColumns {
			if cmd.Flags().Changed(flagName(column)) {
				b.Set(column, *bodyValues[column])
				recorded++
			}
		}
		if recorded == 0 {
			return fmt.Errorf("no measurements given (try --weight)")
		}

		if err := svc.Body.Add(cmd.Context(), b); err != nil {
			return fmt.Errorf("failed to add measurement: %w", err)
		}
		color.Green("✓ Recorded %d measurement(s) for %s", recorded, b.Date)
		return nil
	},
}

var bodyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List body measurements",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := svc.Body.GetAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list measurements: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No body measurements found.")
			return nil
		}
		if bodyLimit > 0 && len(list) > bodyLimit {
			list = list[:bodyLimit]
		}

		faint := color.New(color.Faint)
		for _, b := range list {
			fmt.Printf("%s %s %s\n",
				faint.Sprint(padRight(fmt.Sprintf("#%d", b.ID), 6)),
				b.Date,
				measurementSummary(b))
		}
		return nil
	},
}

var bodyLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent measurement",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := svc.Body.Latest(cmd.Context())
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Println("No body measurements found.")
			return nil
		}
		if err != nil {
			return err
		}

		color.New(color.Bold).Println(b.Date)
		for i, f := range b.Fields() {
			if *f != nil {
				fmt.Printf("  %s %s\n", padRight(flagName(models.BodyMeasurementColumns[i]), 14), formatWeight(*f))
			}
		}
		return nil
	},
}

var bodyDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a measurement",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := svc.Body.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete measurement: %w", err)
		}
		color.Green("✓ Deleted measurement #%d", id)
		return nil
	},
}

func flagName(column string) string {
	return strings.ReplaceAll(column, "_", "-")
}

func measurementSummary(b *models.BodyMeasurement) string {
	var parts []string
	for i, f := range b.Fields() {
		if *f != nil {
			parts = append(parts, fmt.Sprintf("%s=%s", flagName(models.BodyMeasurementColumns[i]), formatWeight(*f)))
		}
	}
	return truncate(strings.Join(parts, " "), 60)
}

func init() {
	bodyAddCmd.Flags().StringVar(&bodyDate, "date", "", "measurement date (YYYY-MM-DD, default today)")
	for _, column := range models.BodyMeasurementColumns {
		bodyValues[column] = bodyAddCmd.Flags().Float64(flagName(column), 0, column+" measurement")
	}
	bodyListCmd.Flags().IntVarP(&bodyLimit, "limit", "n", 20, "max number of results")

	bodyCmd.AddCommand(bodyAddCmd)
	bodyCmd.AddCommand(bodyListCmd)
	bodyCmd.AddCommand(bodyLatestCmd)
	bodyCmd.AddCommand(bodyDeleteCmd)
	rootCmd.AddCommand(bodyCmd)
}
