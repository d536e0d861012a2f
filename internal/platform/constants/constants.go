// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Sessions: cookie name and the redirect targets used by the request gate.
  - Audit: body capture limits and the status assigned to abandoned records.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "pals-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// RateLimitWindow is the fixed window used by the Redis-backed limiter.
	RateLimitWindow = 1 * time.Second
)

// # Sessions

const (
	// SessionCookieName is the cookie carrying the opaque session token.
	SessionCookieName = "session"

	// LoginPath is where unauthenticated visitors of protected routes are sent.
	LoginPath = "/login"

	// SignupPath is the account creation page.
	SignupPath = "/signup"

	// HomePath is where already-authenticated visitors of login/signup are sent.
	HomePath = "/"

	// RedirectToParam carries the originally requested path to the login page.
	RedirectToParam = "redirectTo"
)

// # Audit

const (
	// AuditBodyLimit caps how many request body bytes are kept for failed requests.
	AuditBodyLimit = 1 << 20

	// AuditWriteTimeout bounds each audit insert/update, detached from the client.
	AuditWriteTimeout = 5 * time.Second

	// AuditAbandonedStatus marks records whose request never reached its update.
	// 499 follows the "client closed request" convention.
	AuditAbandonedStatus = 499

	// AuditRedacted replaces the value of redacted headers.
	AuditRedacted = "[REDACTED]"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderLocation      = "Location"
	HeaderContentType   = "Content-Type"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldStatus  = "status"
	FieldMessage = "message"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes

const (
	RedisPrefixRateLimit = "pals:ratelimit:"
)
