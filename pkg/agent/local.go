package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// CaptureFunc performs the actual capture of a single snapshot.
type CaptureFunc func(ctx context.Context, s Snapshot) error

// Local is an in-process Agent. Capture work runs through a pluggable
// CaptureFunc; a pending-work counter backs Idle.
type Local struct {
	mu      sync.Mutex
	build   Build
	config  map[string]any
	pending int
	idle    chan struct{} // closed while pending == 0
	stopped bool

	capture CaptureFunc
	log     *slog.Logger
}

// LocalOption configures a Local agent.
type LocalOption func(*Local)

// WithBuild sets the build descriptor.
func WithBuild(b Build) LocalOption {
	return func(a *Local) { a.build = b }
}

// WithCapture sets the capture function invoked per snapshot.
func WithCapture(fn CaptureFunc) LocalOption {
	return func(a *Local) { a.capture = fn }
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) LocalOption {
	return func(a *Local) { a.log = log }
}

// NewLocal creates a Local agent. Without WithCapture, snapshots are
// accepted and logged but not uploaded anywhere.
func NewLocal(opts ...LocalOption) *Local {
	idle := make(chan struct{})
	close(idle)

	a := &Local{
		build:  Build{ID: uuid.NewString()},
		config: make(map[string]any),
		idle:   idle,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.capture == nil {
		a.capture = func(ctx context.Context, s Snapshot) error { return nil }
	}
	return a
}

// Build returns the current build descriptor.
func (a *Local) Build() Build {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.build
}

// Config returns a copy of the effective configuration.
func (a *Local) Config() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	cfg := make(map[string]any, len(a.config))
	for k, v := range a.config {
		cfg[k] = v
	}
	return cfg
}

// SetConfig merges cfg into the effective configuration and returns the
// result. Keys set to nil are removed.
func (a *Local) SetConfig(cfg map[string]any) (map[string]any, error) {
	a.mu.Lock()
	for k, v := range cfg {
		if v == nil {
			delete(a.config, k)
			continue
		}
		a.config[k] = v
	}
	a.mu.Unlock()
	return a.Config(), nil
}

// begin records one unit of pending work.
func (a *Local) begin() {
	a.mu.Lock()
	if a.pending == 0 {
		a.idle = make(chan struct{})
	}
	a.pending++
	a.mu.Unlock()
}

// done retires one unit of pending work.
func (a *Local) done() {
	a.mu.Lock()
	a.pending--
	if a.pending == 0 {
		close(a.idle)
	}
	a.mu.Unlock()
}

// Idle blocks until no capture work is pending.
func (a *Local) Idle(ctx context.Context) error {
	a.mu.Lock()
	idle := a.idle
	a.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot captures each snapshot in order, returning on the first failure.
func (a *Local) Snapshot(ctx context.Context, snapshots []Snapshot) error {
	a.mu.Lock()
	stopped := a.stopped
	a.mu.Unlock()
	if stopped {
		return fmt.Errorf("agent is stopped")
	}

	a.begin()
	defer a.done()

	for _, s := range snapshots {
		if s.Name == "" {
			return fmt.Errorf("snapshot name is required")
		}
		if err := a.capture(ctx, s); err != nil {
			return fmt.Errorf("snapshot %q: %w", s.Name, err)
		}
		if a.log != nil {
			a.log.Info("snapshot taken", "name", s.Name)
		}
	}
	return nil
}

// Stop drains pending work and marks the agent stopped. Stop is idempotent.
func (a *Local) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return nil
	}
	a.stopped = true
	a.mu.Unlock()

	return a.Idle(ctx)
}
