// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. Outside production a
local '.env' file is loaded first with 'joho/godotenv'; real environment
variables always win over the file.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, gate) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/pals/internal/platform/constants"
	"github.com/taibuivan/pals/internal/platform/middleware"
)

// # Configuration Schema

// Config holds all runtime configuration for the Pals API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE"   envDefault:"false"`

	// Key-Value Store (Redis). Optional: without it rate limits are per instance.
	RedisURL string `env:"REDIS_URL"`

	// Rate limiting per client address
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Sessions
	SessionCookie string `env:"SESSION_COOKIE" envDefault:"session"`
	LoginPath     string `env:"LOGIN_PATH"     envDefault:"/login"`

	// Audit trail
	AuditFailOpen      bool          `env:"AUDIT_FAIL_OPEN"      envDefault:"false"`
	AuditBodyLimit     int64         `env:"AUDIT_BODY_LIMIT"     envDefault:"1048576"`
	AuditRedactHeaders []string      `env:"AUDIT_REDACT_HEADERS" envDefault:"authorization,cookie" envSeparator:","`
	AuditWriteTimeout  time.Duration `env:"AUDIT_WRITE_TIMEOUT"  envDefault:"5s"`
	AuditSweepInterval time.Duration `env:"AUDIT_SWEEP_INTERVAL" envDefault:"5m"`
	AuditSweepAge      time.Duration `env:"AUDIT_SWEEP_AGE"      envDefault:"15m"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// 1. Local overrides from .env (never in production)
	if os.Getenv("ENVIRONMENT") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read .env: %w", err)
		}
	}

	// 2. Map environment variables onto the struct.
	// This will fail if any field marked with 'required' is missing.
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.RateLimitBurst < 1 {
		return nil, fmt.Errorf("config: RATE_LIMIT_BURST must be at least 1, got %d", cfg.RateLimitBurst)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasRedis reports whether a Redis instance is configured.
func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

// Gate derives the request gate settings.
func (c *Config) Gate() middleware.GateConfig {
	return middleware.GateConfig{
		CookieName:    c.SessionCookie,
		LoginPath:     c.LoginPath,
		SignupPath:    constants.SignupPath,
		HomePath:      constants.HomePath,
		FailOpen:      c.AuditFailOpen,
		BodyLimit:     c.AuditBodyLimit,
		RedactHeaders: c.AuditRedactHeaders,
		WriteTimeout:  c.AuditWriteTimeout,
	}
}
