// Route registration for the control API.

package api

import "net/http"

// registerRoutes sets up all API routes. The route table is built once at
// construction; the global middleware wraps every handler registered here,
// including the testing-mode ones.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /percy/healthcheck", s.route(s.handleHealthcheck))
	mux.HandleFunc("GET /percy/config", s.route(s.handleGetConfig))
	mux.HandleFunc("POST /percy/config", s.route(s.handleSetConfig))
	mux.HandleFunc("GET /percy/idle", s.route(s.handleIdle))
	mux.HandleFunc("GET /percy/dom.js", s.route(s.handleDOMBundle))
	mux.HandleFunc("GET /percy-agent.js", s.route(s.handleLegacyBundle))
	mux.HandleFunc("POST /percy/snapshot", s.route(s.handleSnapshot))
	mux.HandleFunc("/percy/stop", s.route(s.handleStop))

	// Log relay used by browser SDKs to forward client-side messages.
	mux.HandleFunc("GET /logger", s.handleLoggerSocket)

	// The testing control endpoints exist only when the server was
	// constructed in testing mode.
	if s.testing != nil {
		mux.HandleFunc("POST /test/api/{command}", s.route(s.handleTestCommand))
		mux.HandleFunc("GET /test/logs", s.route(s.handleTestLogs))
		mux.HandleFunc("/test/snapshot", s.route(s.handleTestSnapshot))
	}
}
