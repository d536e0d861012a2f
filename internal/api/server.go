// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Every application route, including unknown paths, is served behind the request gate.
    Health probes and rate-limited requests are answered before it.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/pals/internal/pals"
	"github.com/taibuivan/pals/internal/platform/apperr"
	"github.com/taibuivan/pals/internal/platform/config"
	"github.com/taibuivan/pals/internal/platform/constants"
	"github.com/taibuivan/pals/internal/platform/middleware"
	"github.com/taibuivan/pals/internal/platform/ratelimit"
	"github.com/taibuivan/pals/internal/platform/respond"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once by the serve command with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler, always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler, 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Home serves the landing page.
	Home http.HandlerFunc

	// Pals serves discovery, introductions and match pages.
	Pals *pals.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, limiter ratelimit.Limiter, gate func(http.Handler) http.Handler, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(limiter))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Fallbacks
	// chi serves these outside any route group, so they are gated explicitly.
	r.NotFound(gate(http.HandlerFunc(notFound)).ServeHTTP)
	r.MethodNotAllowed(gate(http.HandlerFunc(methodNotAllowed)).ServeHTTP)

	// # Application Routes
	r.Group(func(app chi.Router) {
		app.Use(gate)

		app.Get("/", h.Home)
		h.Pals.RegisterRoutes(app)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}

func notFound(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, apperr.NotFound("Page"))
}

func methodNotAllowed(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, &apperr.AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	})
}
