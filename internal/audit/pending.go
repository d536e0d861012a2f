// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import "context"

// Pending is an audit insert that has been started but not yet joined.
//
// The insert runs on its own goroutine so it overlaps with the downstream
// handler; [Pending.Wait] is the join point where the record id is needed.
type Pending struct {
	done chan struct{}
	id   int64
	err  error
}

// Begin starts inserting entry and returns immediately.
//
// The context governs the insert itself; callers that want the record to
// survive a client disconnect pass a context detached from the request.
func Begin(ctx context.Context, log Log, entry Entry) *Pending {
	pending := &Pending{done: make(chan struct{})}

	go func() {
		defer close(pending.done)
		pending.id, pending.err = log.Insert(ctx, entry)
	}()

	return pending
}

// Wait blocks until the insert finishes or ctx is done.
//
// A finished insert always wins over an expired ctx.
func (pending *Pending) Wait(ctx context.Context) (int64, error) {
	select {
	case <-pending.done:
		return pending.id, pending.err
	default:
	}

	select {
	case <-pending.done:
		return pending.id, pending.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
