// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pals handles pal discovery, introduction requests and match profiles.

Every route in this package sits behind the request gate, so handlers can rely
on a live session identity being present in the request context.

# Architecture

  - Entities: Pal (list view), Profile (match view).
  - Storage: users and pal_requests tables.
*/
package pals

import "context"

// # Domain Entities

// Pal is the public card of a user shown in the pals list.
type Pal struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
}

// Profile is the detailed view shown once two pals match.
type Profile struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Gender   string `json:"gender"`
	Birthday string `json:"birthday"` // YYYY-MM-DD, empty when unknown
	Bio      string `json:"bio"`
}

// # Repository Contracts

// Repository defines the persistence contract for the pals domain.
type Repository interface {
	/*
		List returns a page of pals excluding the viewer.

		Parameters:
		  - context: context.Context
		  - viewerID: int64
		  - limit, offset: int

		Returns:
		  - []Pal: The page
		  - int: Total number of candidates
		  - error: Storage failures
	*/
	List(context context.Context, viewerID int64, limit, offset int) ([]Pal, int, error)

	/*
		CreateRequest records that requester wants to meet requestee.

		Returns:
		  - error: apperr.Conflict when already requested, apperr.NotFound when the pal does not exist
	*/
	CreateRequest(context context.Context, requesterID, requesteeID int64) error

	// FindProfile loads the match profile of a user.
	FindProfile(context context.Context, userID int64) (*Profile, error)

	// UpdateBio replaces the bio of a user.
	UpdateBio(context context.Context, userID int64, bio string) error
}
