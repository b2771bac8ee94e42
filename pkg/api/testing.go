package api

import "sync"

// FaultMode is a simulated failure injected into a specific endpoint.
type FaultMode string

// Fault modes.
const (
	// FaultError short-circuits the route with a 500 JSON error.
	FaultError FaultMode = "error"
	// FaultDisconnect aborts the connection without sending a response.
	FaultDisconnect FaultMode = "disconnect"
)

// TestingState holds the fault-injection overrides for a server running in
// testing mode. It is owned by the server instance so multiple servers in
// one test process don't interfere. All methods are safe for concurrent use;
// the middleware reads it on every inbound request.
type TestingState struct {
	mu sync.RWMutex

	// version overrides the reported core version: nil means report the
	// real version, a string reports that value, and false suppresses the
	// header entirely.
	version any

	faults map[string]FaultMode
}

// NewTestingState creates an empty testing state.
func NewTestingState() *TestingState {
	return &TestingState{faults: make(map[string]FaultMode)}
}

// Reset clears all overrides back to the initial empty state.
func (t *TestingState) Reset() {
	t.mu.Lock()
	t.version = nil
	t.faults = make(map[string]FaultMode)
	t.mu.Unlock()
}

// SetVersion records a version override. Pass a string to report that value,
// false to suppress the version header, or nil to restore the real version.
func (t *TestingState) SetVersion(v any) {
	t.mu.Lock()
	t.version = v
	t.mu.Unlock()
}

// Version returns the current version override.
func (t *TestingState) Version() any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// SetFault records a fault mode for the given request path.
func (t *TestingState) SetFault(path string, mode FaultMode) {
	t.mu.Lock()
	t.faults[path] = mode
	t.mu.Unlock()
}

// Fault returns the fault mode recorded for path, if any.
func (t *TestingState) Fault(path string) (FaultMode, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	mode, ok := t.faults[path]
	return mode, ok
}

// Snapshot returns a JSON-friendly view of the state, as echoed by the
// testing control endpoints.
func (t *TestingState) Snapshot() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]any)
	if t.version != nil {
		out["version"] = t.version
	}
	if len(t.faults) > 0 {
		api := make(map[string]string, len(t.faults))
		for path, mode := range t.faults {
			api[path] = string(mode)
		}
		out["api"] = api
	}
	return out
}
