// ABOUTME: CLI commands for reading and changing user preferences.
// ABOUTME: Preferences live in preferences.json next to the database.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change preferences",
	Long: `Show or change preferences.

KEYS:

  theme      light, dark, system
  language   en, es

Examples:
  gymlog prefs
  gymlog prefs set theme light`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := prefs.New(cfg.PreferencesPath()).Read()
		if err != nil {
			return err
		}
		fmt.Printf("theme:           %s\n", p.Theme)
		fmt.Printf("language:        %s\n", p.Language)
		fmt.Printf("exercises added: %t\n", p.ExercisesAdded)
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Change a preference",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"theme", "language"},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		var apply func(*prefs.Preferences)
		switch key {
		case "theme":
			apply = func(p *prefs.Preferences) { p.Theme = prefs.Theme(value) }
		case "language":
			apply = func(p *prefs.Preferences) { p.Language = prefs.Language(value) }
		default:
			return fmt.Errorf("unknown preference: %s (use theme or language)", key)
		}

		if _, err := prefs.New(cfg.PreferencesPath()).Update(apply); err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}
		color.Green("✓ Set %s to %s", key, value)
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}
