// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"time"
)

// # Audit Data Access

// Log defines the data access contract for request audit records.
type Log interface {

	/*
		Insert appends a new record for a request about to be handled.

		Parameters:
		  - context: context.Context
		  - entry: Entry

		Returns:
		  - int64: Generated record identifier
		  - error: Persistence failures
	*/
	Insert(context context.Context, entry Entry) (int64, error)

	/*
		Update stores the request outcome on an existing record.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - outcome: Outcome (Body only for failures)

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, id int64, outcome Outcome) error
}

// Reconciler closes records left without an outcome.
type Reconciler interface {

	/*
		MarkAbandoned sets status on every record without one created before cutoff.

		Parameters:
		  - context: context.Context
		  - cutoff: time.Time
		  - status: int

		Returns:
		  - int64: Number of records closed
		  - error: Persistence failures
	*/
	MarkAbandoned(context context.Context, cutoff time.Time, status int) (int64, error)
}
