// ABOUTME: The mcp command serves the training log over the Model Context Protocol.
// ABOUTME: Talks JSON-RPC on stdin/stdout until the client disconnects or a signal arrives.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the training log to an AI assistant over MCP",
	Long: `Run gymlog as a Model Context Protocol server on stdin/stdout.

An assistant connected this way can read workouts, log sets and look up
exercise stats. Set edits go through the same debounced writer as
'gymlog set edit' and are flushed before the server exits.

To register it with an MCP client, point the client at this binary:

  {
    "mcpServers": {
      "gymlog": { "command": "gymlog", "args": ["mcp"] }
    }
  }

TOOLS

  Workouts   list_workouts, get_workout, start_workout, start_from_routine,
             delete_workout, add_exercise
  Sets       add_set, update_set, complete_set
  Exercises  list_exercises, exercise_stats
  Routines   list_routines, get_routine
  Body       add_body_measurement, latest_body_measurement

RESOURCES

  gymlog://recent      the last few workouts
  gymlog://today       today's workouts, with sets
  gymlog://exercises   active exercises by muscle group`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc, writer, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Debug("mcp server listening on stdio")
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
