// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import "context"

// # Session Data Access

// Store defines the data access contract for login sessions.
type Store interface {

	/*
		Lookup resolves a token in a single round trip.

		Description: Joins the session with its owner's profile, computes the
		expired flag against the database clock, and aggregates role ids and the
		union of their permission names.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *Record: Owner identity and expiry flag
		  - error: dberr.ErrNotFound when no session matches, or storage failures
	*/
	Lookup(context context.Context, token string) (*Record, error)

	/*
		Delete removes the session row if it still exists.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Storage failures only; deleting a missing session is not an error
	*/
	Delete(context context.Context, token string) error
}
