package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/percylabs/percyd/pkg/httputil"
)

type contextKey int

const (
	rawBodyKey contextKey = iota
	parsedBodyKey
)

// withMiddleware wraps the route table with the global request pipeline:
// version header and CORS exposure first, then body parsing, then fault
// injection. Fault injection always runs before the route handler.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setVersionHeader(w)
		w.Header().Set("Access-Control-Expose-Headers", "*, "+VersionHeader)

		r = s.parseBody(r)

		if s.testing != nil {
			if mode, ok := s.testing.Fault(r.URL.Path); ok {
				s.injectFault(w, mode)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// setVersionHeader reports the core version unless testing mode suppressed
// it. A string override replaces the real version; the literal false drops
// the header entirely.
func (s *Server) setVersionHeader(w http.ResponseWriter) {
	override := any(nil)
	if s.testing != nil {
		override = s.testing.Version()
	}

	switch v := override.(type) {
	case nil:
		w.Header().Set(VersionHeader, s.version)
	case string:
		w.Header().Set(VersionHeader, v)
	case bool:
		if v {
			w.Header().Set(VersionHeader, s.version)
		}
	default:
		w.Header().Set(VersionHeader, s.version)
	}
}

// parseBody reads the request body, attempts a JSON parse, and stashes both
// the raw bytes and any parsed value in the request context. A parse failure
// is not an error here; downstream handlers decide what a raw body means.
func (s *Server) parseBody(r *http.Request) *http.Request {
	if r.Body == nil || r.ContentLength == 0 {
		return r
	}

	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return r
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	ctx := context.WithValue(r.Context(), rawBodyKey, raw)
	var parsed any
	if json.Unmarshal(raw, &parsed) == nil {
		ctx = context.WithValue(ctx, parsedBodyKey, parsed)
	}
	return r.WithContext(ctx)
}

// injectFault applies a simulated failure instead of invoking the route.
func (s *Server) injectFault(w http.ResponseWriter, mode FaultMode) {
	switch mode {
	case FaultError:
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Error: testing",
		})
	case FaultDisconnect:
		if hijacker, ok := w.(http.Hijacker); ok {
			conn, _, err := hijacker.Hijack()
			if err == nil {
				_ = conn.Close()
			}
		}
	}
}

// handlerFunc is a route handler that reports failures by returning an
// error instead of writing its own error response.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// route adapts a handlerFunc, translating any returned error into the
// uniform {build, error, success:false} envelope with the error's declared
// status or 500.
func (s *Server) route(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			extra := map[string]any{}
			if s.agent != nil {
				extra["build"] = s.agent.Build()
			}
			httputil.WriteError(w, err, extra)
		}
	}
}

// rawBody returns the buffered request body, if one was read.
func rawBody(r *http.Request) []byte {
	raw, _ := r.Context().Value(rawBodyKey).([]byte)
	return raw
}

// parsedBody returns the JSON-parsed request body, if parsing succeeded.
func parsedBody(r *http.Request) (any, bool) {
	v := r.Context().Value(parsedBodyKey)
	return v, v != nil
}
