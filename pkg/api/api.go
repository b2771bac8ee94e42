// Package api exposes the local control-plane HTTP/WebSocket surface of the
// agent: health, config, idle-wait, snapshot submission, shutdown, and, in
// testing mode, endpoints that script failure scenarios for SDK tests.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/percylabs/percyd/pkg/agent"
	"github.com/percylabs/percyd/pkg/logging"
)

// VersionHeader is the response header carrying the running core version.
const VersionHeader = "X-Percy-Core-Version"

// Version is the package version reported in the version header. Overridden
// at build time via ldflags.
var Version = "1.0.0"

// Server is the control API server. It owns the testing state and wires the
// agent and logger facility into the route handlers.
type Server struct {
	agent    agent.Agent
	facility *logging.Facility
	log      *slog.Logger

	httpServer *http.Server
	listener   net.Listener
	addr       string

	testingMode bool
	testing     *TestingState

	version string

	stopOnce sync.Once
	stopped  chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithTesting enables testing mode. The /test/* control endpoints and the
// fault-injection middleware only exist when testing mode is on.
func WithTesting() Option {
	return func(s *Server) { s.testingMode = true }
}

// WithVersion overrides the reported package version.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithListener serves on the given listener instead of binding addr.
func WithListener(ln net.Listener) Option {
	return func(s *Server) { s.listener = ln }
}

// New creates a control API server for the given agent and logger facility.
func New(addr string, a agent.Agent, facility *logging.Facility, opts ...Option) *Server {
	if facility == nil {
		facility = logging.Nop()
	}

	s := &Server{
		agent:    a,
		facility: facility,
		log:      facility.Logger(),
		addr:     addr,
		version:  Version,
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.testingMode {
		s.testing = NewTestingState()
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.withMiddleware(mux),
	}

	return s
}

// Handler returns the fully wrapped handler, for tests that mount the
// server without binding a port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Testing returns the testing state, or nil outside testing mode.
func (s *Server) Testing() *TestingState {
	return s.testing
}

// Start begins serving. It returns once the listener is bound.
func (s *Server) Start() error {
	if s.listener == nil {
		ln, err := net.Listen("tcp", s.addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.addr, err)
		}
		s.listener = ln
	}

	s.log.Info("starting control API", "addr", s.listener.Addr().String())
	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("control API error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address. Only valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Wait blocks until the server has been stopped via /percy/stop or Stop.
func (s *Server) Wait() {
	<-s.stopped
}

// Stop shuts the server down gracefully. Safe to call multiple times and
// concurrently with the /percy/stop handler.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if s.agent != nil {
			if err := s.agent.Stop(ctx); err != nil {
				s.log.Warn("error stopping agent", "error", err)
			}
		}
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.Warn("error shutting down control API", "error", err)
		}
		close(s.stopped)
	})
}

// triggerStop schedules shutdown without blocking the calling handler.
// Shutdown drains in-flight requests, so the response that triggered it is
// fully written before the listener closes.
func (s *Server) triggerStop() {
	go s.Stop()
}
