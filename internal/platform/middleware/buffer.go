// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"bytes"
	"net/http"
)

// responseBuffer holds a handler's response until the audit record is complete.
type responseBuffer struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

// newResponseBuffer starts from a copy of the headers already set upstream.
func newResponseBuffer(upstream http.Header) *responseBuffer {
	return &responseBuffer{header: upstream.Clone()}
}

func (buffer *responseBuffer) Header() http.Header {
	return buffer.header
}

func (buffer *responseBuffer) WriteHeader(code int) {
	if buffer.wroteHeader {
		return
	}
	buffer.status = code
	buffer.wroteHeader = true
}

func (buffer *responseBuffer) Write(p []byte) (int, error) {
	if !buffer.wroteHeader {
		buffer.WriteHeader(http.StatusOK)
	}
	return buffer.body.Write(p)
}

// Status returns the status the handler chose, 200 if it never chose one.
func (buffer *responseBuffer) Status() int {
	if !buffer.wroteHeader {
		return http.StatusOK
	}
	return buffer.status
}

// flush writes the buffered response to writer unchanged.
func (buffer *responseBuffer) flush(writer http.ResponseWriter) {
	destination := writer.Header()
	for key := range destination {
		if _, kept := buffer.header[key]; !kept {
			delete(destination, key)
		}
	}
	for key, values := range buffer.header {
		destination[key] = values
	}

	writer.WriteHeader(buffer.Status())
	_, _ = writer.Write(buffer.body.Bytes())
}
