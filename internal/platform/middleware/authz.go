// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/pals/internal/audit"
	"github.com/taibuivan/pals/internal/platform/apperr"
	"github.com/taibuivan/pals/internal/platform/constants"
	"github.com/taibuivan/pals/internal/platform/ctxutil"
	"github.com/taibuivan/pals/internal/platform/respond"
	"github.com/taibuivan/pals/internal/users/session"
)

// Redirect reasons written as the body of a 303.
const (
	ReasonNotAuthenticated = "Not authenticated user."
	ReasonInvalidSession   = "Invalid session."
	ReasonSessionExpired   = "Session expired"
	ReasonAlreadyLoggedIn  = "Already logged in."
)

// RouteClassifier decides whether a path requires a live session.
type RouteClassifier interface {
	IsProtected(path string) bool
}

// SessionResolver turns the session cookie value into an outcome.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.Outcome, error)
}

// GateConfig tunes the gate.
type GateConfig struct {
	CookieName    string
	LoginPath     string
	SignupPath    string
	HomePath      string
	FailOpen      bool
	BodyLimit     int64
	RedactHeaders []string
	WriteTimeout  time.Duration
}

// withDefaults fills zero fields from the platform constants.
func (cfg GateConfig) withDefaults() GateConfig {
	if cfg.CookieName == "" {
		cfg.CookieName = constants.SessionCookieName
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = constants.LoginPath
	}
	if cfg.SignupPath == "" {
		cfg.SignupPath = constants.SignupPath
	}
	if cfg.HomePath == "" {
		cfg.HomePath = constants.HomePath
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = constants.AuditBodyLimit
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = constants.AuditWriteTimeout
	}
	return cfg
}

/*
Gate authenticates every request and records it in the audit log.

Flow:
 1. Classify the path as public or protected.
 2. Resolve the session cookie. Store failures answer 500.
 3. Branch on the outcome:
    - no cookie, unknown session or expired session on a protected path: 303 to login.
    - expired session: the cookie is cleared whatever the path.
    - live session: identity attached; login and signup redirect home.
 4. Begin the audit insert, run the handler into a buffer, join the insert,
    store the status (and the request body for failures), then write the
    buffered response. The insert and the completion each run under their
    own WriteTimeout.

Redirects issued in step 3 are not audited.

Parameters:
  - classifier: RouteClassifier
  - resolver: SessionResolver
  - log: audit.Log
  - cfg: GateConfig

Returns:
  - func(http.Handler) http.Handler
*/
func Gate(classifier RouteClassifier, resolver SessionResolver, log audit.Log, cfg GateConfig) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			logger := ctxutil.GetLogger(ctx)
			path := request.URL.Path

			// ── 1. Classification ─────────────────────────────────────────────
			protected := classifier.IsProtected(path)

			// ── 2. Session Resolution ─────────────────────────────────────────
			outcome, err := resolver.Resolve(ctx, sessionToken(request, cfg.CookieName))
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			logger.DebugContext(ctx, "session_resolved",
				slog.String("outcome", outcome.Kind.String()),
				slog.Bool("protected", protected),
			)

			// ── 3. Branching ──────────────────────────────────────────────────
			switch outcome.Kind {
			case session.NoToken:
				if protected {
					redirectToLogin(writer, request, cfg.LoginPath, ReasonNotAuthenticated)
					return
				}

			case session.NotFound:
				if protected {
					redirectToLogin(writer, request, cfg.LoginPath, ReasonSessionExpired)
					return
				}

			case session.Expired:
				clearSessionCookie(writer, cfg.CookieName)
				logger.InfoContext(ctx, "session_expired_purged",
					slog.Int64("user_id", outcome.Identity.UserID),
				)
				if protected {
					redirectToLogin(writer, request, cfg.LoginPath, ReasonInvalidSession)
					return
				}

			case session.Live:
				if path == cfg.LoginPath || path == cfg.SignupPath {
					respond.SeeOther(writer, cfg.HomePath, ReasonAlreadyLoggedIn)
					return
				}

				ctx = ctxutil.WithIdentity(ctx, outcome.Identity)
				logger = logger.With(slog.Int64("user_id", outcome.Identity.UserID))
				ctx = ctxutil.WithLogger(ctx, logger)
				request = request.WithContext(ctx)
			}

			// ── 4. Audited Execution ──────────────────────────────────────────
			serveAudited(writer, request, next, log, outcome.Snapshot(), cfg)
		})
	}
}

// serveAudited runs next between the two halves of an audit record.
func serveAudited(writer http.ResponseWriter, request *http.Request, next http.Handler, log audit.Log, snapshot *session.Snapshot, cfg GateConfig) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	// Audit writes outlive a disconnecting client, each bounded by its own timeout.
	insertCtx, cancelInsert := detachedTimeout(ctx, cfg.WriteTimeout)
	defer cancelInsert()

	entry := audit.NewEntry(request, snapshot, cfg.RedactHeaders)
	pending := audit.Begin(insertCtx, log, entry)

	capture := audit.CaptureBody(request, cfg.BodyLimit)
	buffer := newResponseBuffer(writer.Header())

	next.ServeHTTP(buffer, request)

	outcome := audit.Outcome{Status: buffer.Status()}
	if audit.IsFailure(outcome.Status) {
		body := capture.Text()
		outcome.Body = &body
		outcome.BodyTruncated = capture.Truncated()
	}

	completeCtx, cancelComplete := detachedTimeout(ctx, cfg.WriteTimeout)
	defer cancelComplete()

	if err := completeRecord(completeCtx, pending, log, outcome); err != nil {
		logger.ErrorContext(ctx, "audit_write_failed",
			slog.Int("status", outcome.Status),
			slog.Bool("fail_open", cfg.FailOpen),
			slog.Any("error", err),
		)

		if !cfg.FailOpen {
			respond.Error(writer, request, apperr.Internal(err))
			return
		}
	}

	buffer.flush(writer)
}

// detachedTimeout derives a context that ignores the client's cancellation.
func detachedTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// completeRecord joins the pending insert and stores the outcome.
// The timeout of ctx starts after the handler has returned.
func completeRecord(ctx context.Context, pending *audit.Pending, log audit.Log, outcome audit.Outcome) error {
	id, err := pending.Wait(ctx)
	if err != nil {
		return fmt.Errorf("audit_insert_failed: %w", err)
	}

	if err := log.Update(ctx, id, outcome); err != nil {
		return fmt.Errorf("audit_update_failed: %w", err)
	}
	return nil
}

// sessionToken returns the session cookie value, or "" when absent.
func sessionToken(request *http.Request, name string) string {
	cookie, err := request.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// redirectToLogin sends the visitor to the login page, remembering the path.
func redirectToLogin(writer http.ResponseWriter, request *http.Request, loginPath, reason string) {
	location := loginPath + "?" + constants.RedirectToParam + "=" + request.URL.Path
	respond.SeeOther(writer, location, reason)
}

// clearSessionCookie instructs the browser to drop the session cookie.
func clearSessionCookie(writer http.ResponseWriter, name string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
