// ABOUTME: CLI command that prints the storage and debounce counters.
// ABOUTME: Useful with --log-level debug when diagnosing slow commands.
package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/metrics"
)

var metricsCmd = &cobra.Command{
	Use:    "metrics",
	Short:  "Show internal counters for this run",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Touch the log so the init counters are populated.
		if _, err := svc.Workouts.List(cmd.Context(), 1); err != nil {
			return err
		}
		samples, err := metrics.Snapshot(prometheus.DefaultGatherer)
		if err != nil {
			return err
		}
		for _, s := range samples {
			fmt.Printf("%s %g\n", padRight(s.Name, 56), s.Value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
