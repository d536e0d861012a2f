// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/pals/internal/platform/postgres"
)

// PostgresLog implements [Log] and [Reconciler] on the logs table.
type PostgresLog struct {
	db postgres.DB
}

// NewPostgresLog creates a new PostgreSQL implementation of [Log].
func NewPostgresLog(db postgres.DB) *PostgresLog {
	return &PostgresLog{db: db}
}

/*
Insert persists the request half of a record.

Description: params, headers and user_session are jsonb; a nil snapshot is
stored as NULL.

Parameters:
  - context: context.Context
  - entry: Entry

Returns:
  - int64: log_id
  - error: Execution errors
*/
func (repository *PostgresLog) Insert(context context.Context, entry Entry) (int64, error) {
	const query = `
		INSERT INTO logs (
			path, method, params, headers, user_session
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING log_id`

	var id int64
	err := repository.db.QueryRow(context, query,
		entry.Path,
		entry.Method,
		entry.Params,
		entry.Headers,
		entry.UserSession,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("postgres_audit_log_insert_failed: %w", err)
	}

	return id, nil
}

/*
Update stores the outcome on the record.

Description: The body column is only written for failures, so normal
traffic never persists request payloads.

Parameters:
  - context: context.Context
  - id: int64
  - outcome: Outcome

Returns:
  - error: Execution errors
*/
func (repository *PostgresLog) Update(context context.Context, id int64, outcome Outcome) error {
	const statusQuery = `
		UPDATE logs
		SET response_status = $2, updated_at = NOW()
		WHERE log_id = $1`

	const failureQuery = `
		UPDATE logs
		SET response_status = $2, body = $3, body_truncated = $4, updated_at = NOW()
		WHERE log_id = $1`

	var err error
	if outcome.Body != nil {
		_, err = repository.db.Exec(context, failureQuery, id, outcome.Status, *outcome.Body, outcome.BodyTruncated)
	} else {
		_, err = repository.db.Exec(context, statusQuery, id, outcome.Status)
	}

	if err != nil {
		return fmt.Errorf("postgres_audit_log_update_failed: %w", err)
	}
	return nil
}

/*
MarkAbandoned closes stale records that never received an outcome.

Parameters:
  - context: context.Context
  - cutoff: time.Time
  - status: int

Returns:
  - int64: Rows updated
  - error: Execution errors
*/
func (repository *PostgresLog) MarkAbandoned(context context.Context, cutoff time.Time, status int) (int64, error) {
	const query = `
		UPDATE logs
		SET response_status = $1, updated_at = NOW()
		WHERE response_status IS NULL AND created_at < $2`

	tag, err := repository.db.Exec(context, query, status, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres_audit_log_mark_abandoned_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
