// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/pals/internal/platform/migration"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig()
		return migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (one step by default, --steps 0 for all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := cmd.Flags().GetInt("steps")
		if err != nil {
			return err
		}

		cfg, log := loadConfig()
		return migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, steps, log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to roll back")
}
