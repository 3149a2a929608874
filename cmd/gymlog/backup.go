// ABOUTME: CLI commands for database backups, remote snapshots and reset.
// ABOUTME: Snapshots are stored in the user's charm KV, E2E encrypted.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/gymlog/internal/charm"
)

var (
	backupYes  bool
	backupNote string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up and restore the database",
	Long: `Back up and restore the gymlog database.

LOCAL FILES:

  export <file>    Copy the database to a file
  restore <file>   Replace the database with a backup file

REMOTE SNAPSHOTS (charm):

  Snapshots are stored in your Charm KV and E2E encrypted with your SSH key.
  The server never sees your unencrypted training log.

  push             Upload the current database as a snapshot
  list             List snapshots, newest first
  pull <id>        Download a snapshot and restore it
  delete <id>      Delete a snapshot
  status           Show the linked charm account

Snapshot ids may be abbreviated to any unique prefix.

EXAMPLES:

  gymlog backup export ~/gymlog-2024-01-02.db
  gymlog backup push --note "before deload"
  gymlog backup pull 3f2a`,
}

var backupExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Copy the database to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := svc.DB().Export(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		color.Green("✓ Database copied to %s", args[0])
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the database with a backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "This will REPLACE the current training log with "+args[0]+".") {
			return nil
		}
		if err := svc.RestoreDatabase(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		color.Green("✓ Restored from %s", args[0])
		return nil
	},
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharm(func(c *charm.Client) error {
			snap, err := c.Push(cmd.Context(), svc.DB(), backupNote)
			if err != nil {
				return fmt.Errorf("push failed: %w", err)
			}
			color.Green("✓ Pushed snapshot %s (%d bytes)", snap.ID.String()[:8], snap.Size)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List snapshots",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharm(func(c *charm.Client) error {
			snapshots, err := c.List()
			if err != nil {
				return err
			}
			if len(snapshots) == 0 {
				fmt.Println("No snapshots found.")
				return nil
			}

			faint := color.New(color.Faint)
			for _, s := range snapshots {
				note := ""
				if s.Note != "" {
					note = faint.Sprintf(" (%s)", truncate(s.Note, 30))
				}
				fmt.Printf("%s %s %s %s%s\n",
					faint.Sprint(s.ID.String()[:8]),
					s.CreatedAt.Local().Format("2006-01-02 15:04"),
					padRight(s.Hostname, 16),
					padRight(fmt.Sprintf("%d B", s.Size), 10),
					note)
			}
			return nil
		})
	},
}

var backupPullCmd = &cobra.Command{
	Use:   "pull <id>",
	Short: "Download a snapshot and restore it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "This will REPLACE the current training log with snapshot "+args[0]+".") {
			return nil
		}
		return withCharm(func(c *charm.Client) error {
			dir, err := os.MkdirTemp("", "gymlog-pull-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)

			path := filepath.Join(dir, "gymlog.db")
			snap, err := c.Pull(args[0], path)
			if err != nil {
				return fmt.Errorf("pull failed: %w", err)
			}
			if err := svc.RestoreDatabase(cmd.Context(), path); err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			color.Green("✓ Restored snapshot %s from %s", snap.ID.String()[:8], snap.CreatedAt.Local().Format("2006-01-02 15:04"))
			return nil
		})
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a snapshot",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharm(func(c *charm.Client) error {
			if err := c.Delete(args[0]); err != nil {
				return err
			}
			color.Green("✓ Deleted snapshot %s", args[0])
			return nil
		})
	},
}

var backupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the linked charm account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharm(func(c *charm.Client) error {
			id, err := c.ID()
			if err != nil {
				color.Yellow("Not linked to Charm")
				fmt.Println("\nRun 'charm link' to connect this device.")
				return nil
			}
			if err := c.Sync(); err != nil {
				color.Yellow("⚠ Sync failed: %v", err)
			}
			snapshots, _ := c.List()

			fmt.Println("Charm ID:", id)
			fmt.Println("Server:  ", charmHost())
			color.Green("✓ Connected to Charm")
			fmt.Printf("  Snapshots: %d\n", len(snapshots))
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete everything and start over",
	Long: `Delete every workout, routine, exercise and measurement, then reseed the
default exercises.

This is a DESTRUCTIVE operation. Run 'gymlog backup export' first if you
might want the data back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "This will PERMANENTLY DELETE the whole training log.") {
			return nil
		}
		if err := svc.ResetDatabase(cmd.Context()); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		color.Green("✓ Training log reset")
		return nil
	},
}

func charmHost() string {
	if cfg != nil && cfg.CharmHost != "" {
		return cfg.CharmHost
	}
	return charm.DefaultHost
}

// withCharm opens the snapshot store for the duration of fn.
func withCharm(fn func(*charm.Client) error) error {
	c, err := charm.Open(charmHost())
	if errors.Is(err, charm.ErrLocked) {
		return fmt.Errorf("%w (is 'gymlog mcp' or another backup running?)", err)
	}
	if err != nil {
		return fmt.Errorf("failed to open charm: %w", err)
	}
	defer c.Close()
	return fn(c)
}

func confirm(cmd *cobra.Command, warning string) bool {
	if backupYes {
		return true
	}
	fmt.Println(warning)
	fmt.Print("Continue? [y/N]: ")
	var answer string
	fmt.Fscanln(cmd.InOrStdin(), &answer)
	if answer != "y" && answer != "Y" {
		fmt.Println("Canceled.")
		return false
	}
	return true
}

func init() {
	backupCmd.PersistentFlags().BoolVarP(&backupYes, "yes", "y", false, "skip confirmation")
	resetCmd.Flags().BoolVarP(&backupYes, "yes", "y", false, "skip confirmation")
	backupPushCmd.Flags().StringVar(&backupNote, "note", "", "note stored with the snapshot")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupPullCmd)
	backupCmd.AddCommand(backupDeleteCmd)
	backupCmd.AddCommand(backupStatusCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(resetCmd)
}
