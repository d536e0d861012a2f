// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session validates and expires login sessions.

Sessions are created by the login flow; this package only reads them, turns a
live one into an [Identity], and purges expired ones on sight.

# Architecture

  - Store: one join+aggregate query per token, plus delete-if-exists.
  - Resolver: maps a cookie token to an [Outcome] (NoToken, NotFound, Expired, Live).

Nothing here knows about HTTP. Cookie handling and redirects belong to the
request gate in the middleware package.
*/
package session

import "slices"

// # Domain Entities

// Identity is the resolved view of the session owner for the current request.
//
// Permissions is the deduplicated union over every role in Roles, not a
// per-role list.
type Identity struct {
	UserID       int64    `json:"user_id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	ImageDataURL string   `json:"image_data_url,omitempty"`
	IsVerified   bool     `json:"is_verified"`
	Roles        []int64  `json:"roles"`
	Permissions  []string `json:"permissions"`
}

// HasPermission reports whether any of the user's roles grants name.
func (identity *Identity) HasPermission(name string) bool {
	_, found := slices.BinarySearch(identity.Permissions, name)
	return found
}

// HasRole reports whether the user holds the given role.
func (identity *Identity) HasRole(roleID int64) bool {
	return slices.Contains(identity.Roles, roleID)
}

// Snapshot is the audit-safe copy of an identity.
//
// The avatar is left out: data URLs are large and carry no audit value.
type Snapshot struct {
	UserID      int64    `json:"user_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	IsVerified  bool     `json:"is_verified"`
	Expired     bool     `json:"expired"`
	Roles       []int64  `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Record is a single row returned by [Store.Lookup].
type Record struct {
	Identity Identity
	Expired  bool
}

// # Resolution Outcome

// Kind enumerates the possible results of resolving a session token.
type Kind int

const (
	// NoToken means the request carried no session cookie.
	NoToken Kind = iota
	// NotFound means a token was sent but no session row matched it.
	NotFound
	// Expired means the session existed but was past expiry; it has been deleted.
	Expired
	// Live means the session is valid and Identity is populated.
	Live
)

// String implements fmt.Stringer for structured logs.
func (k Kind) String() string {
	switch k {
	case NoToken:
		return "no_token"
	case NotFound:
		return "not_found"
	case Expired:
		return "expired"
	case Live:
		return "live"
	default:
		return "unknown"
	}
}

// Outcome is the result of [Resolver.Resolve].
//
// Identity is set for Expired (last known owner) and Live outcomes only.
type Outcome struct {
	Kind     Kind
	Identity *Identity
}

// Snapshot returns the audit copy of the outcome's identity, or nil when the
// request is anonymous.
func (outcome Outcome) Snapshot() *Snapshot {
	if outcome.Identity == nil {
		return nil
	}

	identity := outcome.Identity
	return &Snapshot{
		UserID:      identity.UserID,
		Name:        identity.Name,
		Email:       identity.Email,
		IsVerified:  identity.IsVerified,
		Expired:     outcome.Kind == Expired,
		Roles:       identity.Roles,
		Permissions: identity.Permissions,
	}
}
