// ABOUTME: Root Cobra command for gymlog CLI.
// ABOUTME: Handles config, storage and debounce lifecycle via PersistentPre/PostRunE.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperreed/gymlog/internal/config"
	"github.com/harperreed/gymlog/internal/debounce"
	"github.com/harperreed/gymlog/internal/logging"
	"github.com/harperreed/gymlog/internal/service"
	"github.com/harperreed/gymlog/internal/storage"
)

var (
	v      = viper.New()
	cfg    *config.Config
	logger *log.Logger
	dbConn *storage.DB
	svc    *service.Services
	writer *debounce.Writer
)

var rootCmd = &cobra.Command{
	Use:   "gymlog",
	Short: "Local strength training log",
	Long: `Gymlog is a CLI tool for logging strength training.

WHAT IT TRACKS:

  Exercises      definitions with a counting type (reps or time) and muscle group
  Workouts       dated sessions holding exercises, supersets and sets
  Routines       reusable templates that can start a new workout
  Body           weight, height and girth measurements

QUICK START:

  $ gymlog exercise list                    # Default exercises are seeded on first run
  $ gymlog workout start --note "Push day"  # Start a workout
  $ gymlog workout add-exercise 1 "Bench Press"
  $ gymlog set add 1 --weight 80 --reps 5   # Log a set
  $ gymlog set done 1                       # Mark it completed
  $ gymlog exercise stats "Bench Press"     # PR, averages and weekly volume

ROUTINES:

  $ gymlog routine add "Push A"
  $ gymlog routine add-exercise 1 "Bench Press"
  $ gymlog routine add-set 1 --weight 60 --reps 10
  $ gymlog workout from-routine 1

BACKUP:

  $ gymlog backup export gymlog-backup.db   # Copy the database file
  $ gymlog backup push --note "before cut"  # Store an encrypted snapshot on charm
  $ gymlog reset                            # Delete everything and reseed

MCP INTEGRATION:

  Run 'gymlog mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants.

DATA STORAGE:

  The log lives in ~/.local/share/gymlog/gymlog.db next to preferences.json.
  Override with --data-dir, GYMLOG_DATA_DIR or data_dir in
  ~/.config/gymlog/config.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip storage init for commands that don't need it
		if !needsStorage(cmd) {
			return nil
		}

		var err error
		cfg, err = config.LoadWith(v)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = logging.New(os.Stderr, cfg.LogLevel)

		dbConn, err = cfg.OpenStorage(cmd.Context(), logger)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		svc, err = service.New(dbConn, service.WithLogger(logger))
		if err != nil {
			return err
		}
		writer = debounce.New(
			debounce.WithInterval(cfg.DebounceInterval()),
			debounce.WithLogger(logger),
		)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStorage()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	// PostRunE is skipped when RunE fails.
	if closeErr := closeStorage(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func needsStorage(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion", "__complete":
		return false
	}
	return cmd.Annotations["storage"] != "none"
}

func closeStorage() error {
	var errs []error
	if writer != nil {
		errs = append(errs, writer.FlushAll())
		writer = nil
	}
	if dbConn != nil {
		errs = append(errs, dbConn.Close())
		dbConn = nil
	}
	svc = nil
	return errors.Join(errs...)
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "data directory (default ~/.local/share/gymlog)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = v.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}
