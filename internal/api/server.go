// Package api wires the battle simulator, persistence, matchmaking, and
// ELO ratings into an HTTP + WebSocket service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Server is the HTTP API server.
type Server struct {
	deps        *Dependencies
	router      http.Handler
	rateLimiter *RequestLimiter
	replayHub   *ReplayHub
	log         *logrus.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	httpServer *http.Server
}

// NewServer builds an API server from its dependencies.
//
// Background workers (the session cleanup loop inside Auth, the request
// limiter's cleanup loop) are started by their own constructors; the only
// thing Start does that NewServer doesn't is bind the network listener.
func NewServer(deps *Dependencies) *Server {
	s := &Server{
		deps:        deps,
		rateLimiter: NewRequestLimiter(DefaultRateLimitConfig, deps.Auth),
		replayHub:   NewReplayHub(),
		log:         deps.Log,
	}
	s.router = NewRouter(RouterConfig{
		Deps:        deps,
		RateLimiter: s.rateLimiter,
		ReplayHub:   s.replayHub,
	})
	return s
}

// Router returns the HTTP handler, for use with httptest.NewServer.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving HTTP on addr. Blocks until the server stops.
// WebSocket replay connections are long-lived, so a zero WriteTimeout is
// left in place unless the caller explicitly set one.
func (s *Server) Start(addr string) error {
	if s.log != nil {
		s.log.WithField("addr", addr).Info("api server starting")
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP listener and background workers
// owned by the server itself (not its injected Dependencies, which the
// caller owns and must close separately).
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
