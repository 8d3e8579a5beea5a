package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rentledger/internal/storage"
)

func migrateCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.RunMigrations(*dbPath); err != nil {
				return err
			}
			return printVersion(cmd, *dbPath)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Revert applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if err := storage.RollbackMigrations(*dbPath, steps); err != nil {
				return err
			}
			return printVersion(cmd, *dbPath)
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to revert")

	version := &cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd, *dbPath)
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printVersion(cmd *cobra.Command, dbPath string) error {
	v, dirty, err := storage.MigrationVersion(dbPath)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, state)
	return nil
}
