package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/percylabs/percyd/pkg/agent"
	"github.com/percylabs/percyd/pkg/httputil"
)

// handleHealthcheck handles GET /percy/healthcheck. It has no side effects
// and never fails.
func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) error {
	httputil.WriteSuccess(w, map[string]any{
		"loglevel": s.facility.Level(),
		"config":   s.agent.Config(),
		"build":    s.agent.Build(),
	})
	return nil
}

// handleGetConfig handles GET /percy/config.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) error {
	httputil.WriteSuccess(w, map[string]any{"config": s.agent.Config()})
	return nil
}

// handleSetConfig handles POST /percy/config. The parsed JSON body becomes
// the new config; apply failures propagate through the error translation.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) error {
	cfg := make(map[string]any)
	if parsed, ok := parsedBody(r); ok {
		obj, isObj := parsed.(map[string]any)
		if !isObj {
			return httputil.NewAPIError(http.StatusBadRequest, "config must be a JSON object")
		}
		cfg = obj
	}

	applied, err := s.agent.SetConfig(cfg)
	if err != nil {
		return fmt.Errorf("applying config: %w", err)
	}
	httputil.WriteSuccess(w, map[string]any{"config": applied})
	return nil
}

// handleIdle handles GET /percy/idle. It suspends this request until the
// agent reports no pending work; other requests are unaffected.
func (s *Server) handleIdle(w http.ResponseWriter, r *http.Request) error {
	if err := s.agent.Idle(r.Context()); err != nil {
		return err
	}
	httputil.WriteSuccess(w, nil)
	return nil
}

// handleDOMBundle handles GET /percy/dom.js, serving the bundled
// serialization script.
func (s *Server) handleDOMBundle(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(domBundle)
	return nil
}

// handleLegacyBundle handles GET /percy-agent.js, a compatibility shim for
// SDKs still loading the old agent bundle. It serves the current bundle with
// an inline adapter class appended.
//
// The misspelled MIME type matches the long-shipped behavior; old SDK
// clients are not verified against the corrected token, so it stays.
func (s *Server) handleLegacyBundle(w http.ResponseWriter, r *http.Request) error {
	s.facility.Deprecated("The /percy-agent.js endpoint is deprecated, please use /percy/dom.js")

	w.Header().Set("Content-Type", "applicaton/javascript")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(domBundle)
	_, _ = w.Write([]byte(legacyAgentShim))
	return nil
}

// handleSnapshot handles POST /percy/snapshot. The body holds one or more
// snapshot descriptors. With ?async the capture is fire-and-forget; without
// it the response waits for completion and surfaces capture failures.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) error {
	snapshots, err := decodeSnapshots(rawBody(r))
	if err != nil {
		return err
	}

	if r.URL.Query().Has("async") {
		// Detach from the request context; the capture outlives it.
		go func() {
			if err := s.agent.Snapshot(context.Background(), snapshots); err != nil {
				s.log.Error("snapshot failed", "error", err)
			}
		}()
		httputil.WriteSuccess(w, nil)
		return nil
	}

	if err := s.agent.Snapshot(r.Context(), snapshots); err != nil {
		return err
	}
	httputil.WriteSuccess(w, nil)
	return nil
}

// decodeSnapshots parses the request body as a single snapshot descriptor
// or an array of them.
func decodeSnapshots(raw []byte) ([]agent.Snapshot, error) {
	if len(raw) == 0 {
		return nil, httputil.NewAPIError(http.StatusBadRequest, "missing snapshot body")
	}

	var many []agent.Snapshot
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}

	var one agent.Snapshot
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, httputil.NewAPIError(http.StatusBadRequest, "invalid snapshot body: %v", err)
	}
	return []agent.Snapshot{one}, nil
}

// handleStop handles /percy/stop for any method. The response is written
// and flushed before shutdown is triggered; graceful shutdown then waits
// for this request to finish, so the stop never races the response.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) error {
	httputil.WriteSuccess(w, nil)
	_ = http.NewResponseController(w).Flush()
	s.triggerStop()
	return nil
}
