// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/pals/internal/platform/constants"
)

// Sweeper closes records whose request was aborted before its outcome was stored.
type Sweeper struct {
	reconciler Reconciler
	age        time.Duration
	logger     *slog.Logger
}

// NewSweeper builds a sweeper that closes records older than age.
func NewSweeper(reconciler Reconciler, age time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		reconciler: reconciler,
		age:        age,
		logger:     logger,
	}
}

// Sweep runs one reconciliation pass and returns how many records it closed.
func (sweeper *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-sweeper.age)

	closed, err := sweeper.reconciler.MarkAbandoned(ctx, cutoff, constants.AuditAbandonedStatus)
	if err != nil {
		return 0, err
	}

	if closed > 0 {
		sweeper.logger.Warn("audit_records_abandoned",
			slog.Int64("count", closed),
			slog.Time("cutoff", cutoff),
		)
	}
	return closed, nil
}

// Run sweeps every interval until ctx is cancelled.
func (sweeper *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := sweeper.Sweep(ctx); err != nil {
				sweeper.logger.Error("audit_sweep_failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}
