// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"bytes"
	"io"
	"net/http"
	"strings"
)

// BodyCapture tees a request body into a bounded buffer as the handler reads it.
//
// The handler sees the original stream unchanged. Whatever it leaves unread is
// pulled in by [BodyCapture.Text], so the full text (up to the limit) is
// available after the handler returns.
type BodyCapture struct {
	source    io.ReadCloser
	buffer    bytes.Buffer
	limit     int64
	truncated bool
}

// CaptureBody swaps request.Body for a capturing reader and returns the capture.
func CaptureBody(request *http.Request, limit int64) *BodyCapture {
	source := request.Body
	if source == nil {
		source = http.NoBody
	}

	capture := &BodyCapture{source: source, limit: limit}
	request.Body = capture
	return capture
}

// Read implements io.Reader.
func (capture *BodyCapture) Read(p []byte) (int, error) {
	n, err := capture.source.Read(p)
	if n > 0 {
		capture.keep(p[:n])
	}
	return n, err
}

// Close implements io.Closer. The source is closed by the HTTP server once
// the request completes, so unread bytes stay reachable for [BodyCapture.Text].
func (capture *BodyCapture) Close() error {
	return nil
}

// Text drains what the handler did not consume and returns the captured body
// as UTF-8, with invalid sequences replaced by U+FFFD.
//
// One byte past the limit is read so a body of exactly limit bytes is not
// reported as truncated.
func (capture *BodyCapture) Text() string {
	remaining := capture.limit - int64(capture.buffer.Len())
	if remaining >= 0 && !capture.truncated {
		_, _ = io.CopyN(io.Discard, capture, remaining+1)
	}
	return strings.ToValidUTF8(capture.buffer.String(), "\uFFFD")
}

// Truncated reports whether the body exceeded the capture limit. It is
// reliable once [BodyCapture.Text] has run.
func (capture *BodyCapture) Truncated() bool {
	return capture.truncated
}

// keep appends chunk to the buffer without exceeding the limit.
func (capture *BodyCapture) keep(chunk []byte) {
	room := capture.limit - int64(capture.buffer.Len())
	if room <= 0 {
		capture.truncated = true
		return
	}

	if int64(len(chunk)) > room {
		chunk = chunk[:room]
		capture.truncated = true
	}
	capture.buffer.Write(chunk)
}
