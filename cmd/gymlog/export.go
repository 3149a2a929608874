// ABOUTME: CLI commands for exporting and importing the training log.
// ABOUTME: Export renders JSON, YAML or Markdown; import reads the JSON form back.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/fsutil"
	"github.com/harperreed/gymlog/internal/models"
)

var (
	exportOutput string
	exportSince  string
)

// exportExtensions maps output file extensions to formats.
var exportExtensions = map[string]string{
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".md":   "markdown",
}

var exportCmd = &cobra.Command{
	Use:   "export [format]",
	Short: "Export the training log",
	Long: `Export workouts, exercises, routines and body measurements.

FORMATS:

  json       Everything, with ids (the form 'gymlog import' reads)
  yaml       Nested and readable, sets inline under each exercise
  markdown   Tables per workout for notes or sharing

The format may be left out when --output ends in .json, .yaml/.yml or .md.
--since limits the markdown workout and measurement tables to that day onward.

EXAMPLES:

  gymlog export json
  gymlog export -o ~/gymlog.json
  gymlog export markdown --since 2024-01-01 -o january.md`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := exportFormat(args, exportOutput)
		if err != nil {
			return err
		}

		var since *time.Time
		if exportSince != "" {
			day, err := time.ParseInLocation(models.DateLayout, exportSince, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --since %q (use YYYY-MM-DD)", exportSince)
			}
			since = &day
		}

		data, err := renderExport(cmd.Context(), format, since)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput == "" {
			fmt.Println(string(data))
			return nil
		}
		path := exportOutput
		if err := fsutil.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		color.Green("✓ Wrote %s export to %s", format, path)
		return nil
	},
}

// exportFormat picks the format from the argument, or from the output extension.
func exportFormat(args []string, output string) (string, error) {
	if len(args) == 1 {
		switch args[0] {
		case "json", "yaml", "markdown":
			return args[0], nil
		}
		return "", fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
	}
	if format, ok := exportExtensions[strings.ToLower(filepath.Ext(output))]; ok {
		return format, nil
	}
	return "", fmt.Errorf("no format given and none implied by --output")
}

func renderExport(ctx context.Context, format string, since *time.Time) ([]byte, error) {
	switch format {
	case "json":
		return svc.ExportJSON(ctx)
	case "yaml":
		return svc.ExportYAML(ctx)
	default:
		md, err := svc.ExportMarkdown(ctx, since)
		return []byte(md), err
	}
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a JSON export",
	Long: `Add the contents of a JSON export to this training log.

Exercises are matched by name, so a log that already has "Bench Press" keeps
one Bench Press. Workouts, routines and measurements are added with new ids.
If any record is invalid nothing is written.

EXAMPLES:

  gymlog import ~/gymlog.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		summary, err := svc.ImportJSON(cmd.Context(), raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %s", filepath.Base(args[0]))
		faint := color.New(color.Faint)
		faint.Printf("  exercises %d, workouts %d, sets %d, routines %d, measurements %d\n",
			summary.Exercises, summary.Workouts, summary.Sets, summary.Routines, summary.Body)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file instead of stdout")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "first day to include in markdown (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
