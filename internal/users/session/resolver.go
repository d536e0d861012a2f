// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/taibuivan/pals/internal/platform/dberr"
)

// Resolver turns a session token into an [Outcome].
type Resolver struct {
	store Store
}

// NewResolver constructs a [Resolver] over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

/*
Resolve classifies a session token.

Description: Performs exactly one store lookup. Expired sessions are deleted
before returning, whatever route is being requested. Store failures are
returned as-is so callers fail closed instead of degrading to anonymous.

Parameters:
  - context: context.Context
  - token: string (empty when no cookie was sent)

Returns:
  - Outcome: NoToken, NotFound, Expired or Live
  - error: Storage failures
*/
func (resolver *Resolver) Resolve(context context.Context, token string) (Outcome, error) {
	if token == "" {
		return Outcome{Kind: NoToken}, nil
	}

	record, err := resolver.store.Lookup(context, token)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return Outcome{Kind: NotFound}, nil
		}
		return Outcome{}, fmt.Errorf("session_resolve_failed: %w", err)
	}

	identity := record.Identity
	identity.Roles = normalize(identity.Roles)
	identity.Permissions = normalize(identity.Permissions)

	if record.Expired {
		if err := resolver.store.Delete(context, token); err != nil {
			return Outcome{}, fmt.Errorf("session_purge_failed: %w", err)
		}
		return Outcome{Kind: Expired, Identity: &identity}, nil
	}

	return Outcome{Kind: Live, Identity: &identity}, nil
}

// normalize sorts and deduplicates a set, returning an empty (non-nil) slice
// for empty input so snapshots serialize as [] rather than null.
func normalize[T int64 | string](values []T) []T {
	result := slices.Clone(values)
	if result == nil {
		return []T{}
	}

	slices.Sort(result)
	return slices.Compact(result)
}
