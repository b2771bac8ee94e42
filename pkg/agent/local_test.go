package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetConfigMerges(t *testing.T) {
	a := NewLocal()

	cfg, err := a.SetConfig(map[string]any{"snapshot": map[string]any{"widths": []any{375.0}}})
	require.NoError(t, err)
	assert.Contains(t, cfg, "snapshot")

	cfg, err = a.SetConfig(map[string]any{"discovery": true})
	require.NoError(t, err)
	assert.Contains(t, cfg, "snapshot")
	assert.Contains(t, cfg, "discovery")

	cfg, err = a.SetConfig(map[string]any{"discovery": nil})
	require.NoError(t, err)
	assert.NotContains(t, cfg, "discovery")
}

func TestSnapshotRequiresName(t *testing.T) {
	a := NewLocal()
	err := a.Snapshot(context.Background(), []Snapshot{{URL: "http://localhost/"}})
	assert.ErrorContains(t, err, "name is required")
}

func TestSnapshotPropagatesCaptureError(t *testing.T) {
	a := NewLocal(WithCapture(func(ctx context.Context, s Snapshot) error {
		return errors.New("capture failed")
	}))
	err := a.Snapshot(context.Background(), []Snapshot{{Name: "home"}})
	assert.ErrorContains(t, err, `snapshot "home": capture failed`)
}

func TestIdleReturnsImmediatelyWhenNoWork(t *testing.T) {
	a := NewLocal()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, a.Idle(ctx))
}

func TestIdleWaitsForPendingSnapshots(t *testing.T) {
	release := make(chan struct{})
	a := NewLocal(WithCapture(func(ctx context.Context, s Snapshot) error {
		<-release
		return nil
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = a.Snapshot(context.Background(), []Snapshot{{Name: "slow"}})
	}()

	// Give the snapshot goroutine time to register pending work.
	time.Sleep(20 * time.Millisecond)

	idleDone := make(chan struct{})
	go func() {
		_ = a.Idle(context.Background())
		close(idleDone)
	}()

	select {
	case <-idleDone:
		t.Fatal("Idle returned while a snapshot was pending")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()

	select {
	case <-idleDone:
	case <-time.After(time.Second):
		t.Fatal("Idle did not return after pending work drained")
	}
}

func TestIdleHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	a := NewLocal(WithCapture(func(ctx context.Context, s Snapshot) error {
		<-release
		return nil
	}))
	go func() {
		_ = a.Snapshot(context.Background(), []Snapshot{{Name: "slow"}})
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Idle(ctx), context.DeadlineExceeded)
}

func TestStopIsIdempotent(t *testing.T) {
	a := NewLocal()
	require.NoError(t, a.Stop(context.Background()))
	require.NoError(t, a.Stop(context.Background()))

	err := a.Snapshot(context.Background(), []Snapshot{{Name: "late"}})
	assert.ErrorContains(t, err, "stopped")
}
