// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package audit records one log row per HTTP request handled behind the gate.

A record is written in two steps: an insert that captures the request before
the handler runs, and an update that stores the outcome once it returns.

# Architecture

  - Entry / Outcome: the two halves of a record.
  - Log: insert returning the generated id, update by id.
  - Pending: the in-flight insert, joined when its id is needed.
  - BodyCapture: a tee over the request body, read back only on failure.
  - Sweeper: closes records whose update never happened.
*/
package audit

import (
	"net/http"
	"strings"

	"github.com/taibuivan/pals/internal/platform/constants"
	"github.com/taibuivan/pals/internal/users/session"
)

// Entry is the pre-handling half of an audit record.
type Entry struct {
	Path        string
	Method      string
	Params      map[string]string
	Headers     map[string]string
	UserSession *session.Snapshot
}

// Outcome is the post-handling half of an audit record.
//
// Body is nil unless the response was a server failure. BodyTruncated is set
// when the request body was longer than the capture limit.
type Outcome struct {
	Status        int
	Body          *string
	BodyTruncated bool
}

// IsFailure reports whether status is a server-side failure worth a body capture.
func IsFailure(status int) bool {
	return status >= http.StatusInternalServerError
}

// NewEntry builds an [Entry] from the request as received.
//
// Query parameters keep their last value. Header names are lower-cased and
// repeated values are joined with ", ". Headers listed in redact keep their
// name but lose their value.
func NewEntry(request *http.Request, snapshot *session.Snapshot, redact []string) Entry {
	params := make(map[string]string)
	for key, values := range request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[len(values)-1]
		}
	}

	headers := make(map[string]string, len(request.Header))
	for key, values := range request.Header {
		headers[strings.ToLower(key)] = strings.Join(values, ", ")
	}

	for _, name := range redact {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := headers[name]; ok {
			headers[name] = constants.AuditRedacted
		}
	}

	return Entry{
		Path:        request.URL.Path,
		Method:      request.Method,
		Params:      params,
		Headers:     headers,
		UserSession: snapshot,
	}
}
