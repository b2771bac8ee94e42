// Handlers for the testing-mode control endpoints. These routes only exist
// when the server was constructed with WithTesting.

package api

import (
	"net/http"

	"github.com/percylabs/percyd/pkg/httputil"
)

// handleTestCommand handles POST /test/api/{command}, mutating the server's
// fault-injection state. Commands: reset, version, error, disconnect.
func (s *Server) handleTestCommand(w http.ResponseWriter, r *http.Request) error {
	command := r.PathValue("command")

	switch command {
	case "reset":
		s.testing.Reset()
		s.facility.Buffer().Clear()

	case "version":
		// The body is taken verbatim: a version string, or the literal
		// false to suppress the header.
		if parsed, ok := parsedBody(r); ok {
			s.testing.SetVersion(parsed)
		} else {
			s.testing.SetVersion(string(rawBody(r)))
		}

	case "error":
		s.testing.SetFault(bodyPath(r), FaultError)

	case "disconnect":
		s.testing.SetFault(bodyPath(r), FaultDisconnect)

	default:
		// Unknown commands are a plain not-found, not an error body.
		httputil.WriteJSON(w, http.StatusNotFound, map[string]any{"success": false})
		return nil
	}

	httputil.WriteSuccess(w, map[string]any{"testing": s.testing.Snapshot()})
	return nil
}

// bodyPath extracts the URL path named by the request body, accepting either
// a JSON string or raw text.
func bodyPath(r *http.Request) string {
	if parsed, ok := parsedBody(r); ok {
		if path, isString := parsed.(string); isString {
			return path
		}
	}
	return string(rawBody(r))
}

// handleTestLogs handles GET /test/logs, returning the full ordered log
// buffer.
func (s *Server) handleTestLogs(w http.ResponseWriter, r *http.Request) error {
	httputil.WriteSuccess(w, map[string]any{"logs": s.facility.Buffer().Messages()})
	return nil
}

// testSnapshotPage is the fixed page served as a snapshot target.
const testSnapshotPage = "<!DOCTYPE html><html><head></head><body><p>Snapshot Me!</p></body></html>"

// handleTestSnapshot handles /test/snapshot for any method.
func (s *Server) handleTestSnapshot(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(testSnapshotPage))
	return nil
}
