// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/pals/internal/audit"
	pgstore "github.com/taibuivan/pals/internal/platform/postgres"
)

// auditCmd groups audit trail maintenance.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit trail maintenance",
}

var auditSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Close audit records whose request never completed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig()

		age, err := cmd.Flags().GetDuration("age")
		if err != nil {
			return err
		}
		if age <= 0 {
			age = cfg.AuditSweepAge
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		closed, err := audit.NewSweeper(audit.NewPostgresLog(pool), age, log).Sweep(ctx)
		if err != nil {
			return err
		}

		log.Info("audit_sweep_finished", slog.Int64("closed", closed), slog.Duration("age", age))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditSweepCmd)

	auditSweepCmd.Flags().Duration("age", 0, "grace age before a record counts as abandoned (defaults to AUDIT_SWEEP_AGE)")
}
