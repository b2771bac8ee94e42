// Package agent defines the boundary to the visual-testing engine that owns
// build and config state and performs DOM capture.
package agent

import "context"

// Build describes the build the agent is currently uploading snapshots to.
type Build struct {
	ID     string `json:"id,omitempty"`
	Number int    `json:"number,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Snapshot is a single capture request submitted to the agent.
type Snapshot struct {
	Name             string         `json:"name"`
	URL              string         `json:"url,omitempty"`
	DOMSnapshot      string         `json:"domSnapshot,omitempty"`
	Widths           []int          `json:"widths,omitempty"`
	MinHeight        int            `json:"minHeight,omitempty"`
	EnableJavaScript bool           `json:"enableJavaScript,omitempty"`
	ClientInfo       string         `json:"clientInfo,omitempty"`
	EnvironmentInfo  string         `json:"environmentInfo,omitempty"`
	Meta             map[string]any `json:"meta,omitempty"`
}

// Agent is the engine consumed by the control API. Implementations must be
// safe for concurrent use; Idle and Snapshot may suspend the calling request
// for an unbounded time.
type Agent interface {
	// Build returns the current build descriptor.
	Build() Build

	// Config returns the effective configuration.
	Config() map[string]any

	// SetConfig applies cfg and returns the resulting effective
	// configuration.
	SetConfig(cfg map[string]any) (map[string]any, error)

	// Idle blocks until the agent reports no pending work.
	Idle(ctx context.Context) error

	// Snapshot captures one or more snapshots. It returns once all captures
	// have completed or the first one fails.
	Snapshot(ctx context.Context, snapshots []Snapshot) error

	// Stop shuts the agent down, draining any pending work.
	Stop(ctx context.Context) error
}
