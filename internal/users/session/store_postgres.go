// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/pals/internal/platform/dberr"
	"github.com/taibuivan/pals/internal/platform/postgres"
)

// PostgresStore implements [Store] on top of the sessions/users/roles tables.
type PostgresStore struct {
	db postgres.DB
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(db postgres.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// lookupQuery joins session, owner and the owner's role grants in one pass.
// DISTINCT inside both aggregates flattens role -> permission fan-out, and
// ARRAY_REMOVE drops the NULL produced by users without roles.
const lookupQuery = `
	SELECT
		users.user_id,
		users.name,
		users.email,
		COALESCE(users.image_data_url, ''),
		users.is_verified,
		sessions.expires_at < NOW() AS expired,
		ARRAY_REMOVE(ARRAY_AGG(DISTINCT join_users_roles.role_id), NULL) AS roles,
		ARRAY_REMOVE(ARRAY_AGG(DISTINCT permissions.name), NULL) AS permissions
	FROM sessions
	JOIN users USING (user_id)
	LEFT JOIN join_users_roles USING (user_id)
	LEFT JOIN join_roles_permissions ON join_roles_permissions.role_id = join_users_roles.role_id
	LEFT JOIN permissions ON permissions.permission_id = join_roles_permissions.permission_id
	WHERE sessions.session_id = $1
	GROUP BY users.user_id, sessions.expires_at`

/*
Lookup resolves a session token into its owner's identity.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Record: Hydrated identity with expiry flag
  - error: dberr.ErrNotFound or execution errors
*/
func (store *PostgresStore) Lookup(context context.Context, token string) (*Record, error) {
	record := &Record{}
	identity := &record.Identity

	err := store.db.QueryRow(context, lookupQuery, token).Scan(
		&identity.UserID,
		&identity.Name,
		&identity.Email,
		&identity.ImageDataURL,
		&identity.IsVerified,
		&record.Expired,
		&identity.Roles,
		&identity.Permissions,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_session_store_lookup_failed: %w", err)
	}

	return record, nil
}

/*
Delete removes a session by token. Missing rows are not an error.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) Delete(context context.Context, token string) error {
	const query = "DELETE FROM sessions WHERE session_id = $1"

	if _, err := store.db.Exec(context, query, token); err != nil {
		return fmt.Errorf("postgres_session_store_delete_failed: %w", err)
	}
	return nil
}
