// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/pals/internal/platform/apperr"
	"github.com/taibuivan/pals/internal/platform/database/schema"
	"github.com/taibuivan/pals/internal/platform/dberr"
	"github.com/taibuivan/pals/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.DB
}

// NewPostgresRepository creates a new Postgres implementation of [Repository].
func NewPostgresRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
List retrieves a page of users other than the viewer, ordered by id.

Description: The total is computed with a window function in the same query.

Parameters:
  - context: context.Context
  - viewerID: int64
  - limit: int
  - offset: int

Returns:
  - []Pal: The page (never nil)
  - int: Total candidates
  - error: Execution errors
*/
func (repository *PostgresRepository) List(context context.Context, viewerID int64, limit, offset int) ([]Pal, int, error) {
	users := schema.Users
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, COALESCE(%s, ''), COUNT(*) OVER()
		FROM %s
		WHERE %s <> $1
		ORDER BY %s
		LIMIT $2 OFFSET $3`,
		users.ID, users.Username, users.Name, users.Lastname, users.Email, users.Bio,
		users.Table,
		users.ID,
		users.ID,
	)

	rows, err := repository.db.Query(context, query, viewerID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_pal_repo_list_failed")
	}
	defer rows.Close()

	pals := []Pal{}
	total := 0
	for rows.Next() {
		var pal Pal
		if err := rows.Scan(&pal.UserID, &pal.Username, &pal.Name, &pal.Lastname, &pal.Email, &pal.Bio, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_pal_repo_list_scan_failed")
		}
		pals = append(pals, pal)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_pal_repo_list_rows_failed")
	}

	return pals, total, nil
}

/*
CreateRequest inserts a pending introduction request.

Parameters:
  - context: context.Context
  - requesterID: int64
  - requesteeID: int64

Returns:
  - error: apperr.Conflict, apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) CreateRequest(context context.Context, requesterID, requesteeID int64) error {
	requests := schema.PalRequests
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		requests.Table, requests.RequesterID, requests.RequesteeID,
	)

	_, err := repository.db.Exec(context, query, requesterID, requesteeID)
	switch {
	case err == nil:
		return nil
	case dberr.IsUniqueViolation(err):
		return apperr.Conflict("Introduction already requested")
	case dberr.IsForeignKeyViolation(err):
		return apperr.NotFound("Pal")
	default:
		return dberr.Wrap(err, "postgres_pal_repo_create_request_failed")
	}
}

/*
FindProfile retrieves the match profile of a user.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - *Profile: Hydrated profile
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindProfile(context context.Context, userID int64) (*Profile, error) {
	users := schema.Users
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, COALESCE(%s, ''), COALESCE(to_char(%s, 'YYYY-MM-DD'), ''), COALESCE(%s, '')
		FROM %s
		WHERE %s = $1`,
		users.ID, users.Name, users.Lastname, users.Email, users.Gender, users.Birthday, users.Bio,
		users.Table,
		users.ID,
	)

	profile := &Profile{}
	err := repository.db.QueryRow(context, query, userID).Scan(
		&profile.UserID,
		&profile.Name,
		&profile.Lastname,
		&profile.Email,
		&profile.Gender,
		&profile.Birthday,
		&profile.Bio,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Pal")
		}
		return nil, dberr.Wrap(err, "postgres_pal_repo_find_profile_failed")
	}

	return profile, nil
}

/*
UpdateBio replaces the bio of a user and refreshes updated_at.

Parameters:
  - context: context.Context
  - userID: int64
  - bio: string

Returns:
  - error: apperr.NotFound when the user is gone, or execution errors
*/
func (repository *PostgresRepository) UpdateBio(context context.Context, userID int64, bio string) error {
	users := schema.Users
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NOW()
		WHERE %s = $1`,
		users.Table, users.Bio, users.UpdatedAt, users.ID,
	)

	tag, err := repository.db.Exec(context, query, userID, bio)
	if err != nil {
		return dberr.Wrap(err, "postgres_pal_repo_update_bio_failed")
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}
