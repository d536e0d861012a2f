// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/pals/internal/platform/config"
	"github.com/taibuivan/pals/internal/platform/constants"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "pals",
	Short:         "Pals introduction service backend",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// newLogger builds the JSON logger shared by every subcommand.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", constants.AppName))

	slog.SetDefault(log)
	return log
}

// loadConfig initialises logging around configuration loading.
func loadConfig() (*config.Config, *slog.Logger) {
	// Initialize first so that configuration errors are structured JSON.
	log := newLogger(false)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(true)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)
	return cfg, log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
