package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/rowengine/pkg/rowing/hw"
	"github.com/itohio/rowengine/pkg/rowing/impulse"
	"github.com/itohio/rowengine/pkg/rowing/settings"
	"github.com/itohio/rowengine/pkg/rowing/snapshot"
)

func TestStartSessionMintsSessionID(t *testing.T) {
	pin := hw.NewSimPin(2*time.Millisecond, 0, 1)
	defer pin.Close()
	src := impulse.NewSource(pin, impulse.NewMonotonicClock(), 64)

	r := New(settings.Default(), src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NoError(t, r.StartSession(ctx))
	assert.NotEmpty(t, r.Snapshot().SessionID)

	assert.NoError(t, r.EndSession())
}

func TestSnapshotReflectsEngineState(t *testing.T) {
	pin := hw.NewSimPin(1*time.Millisecond, 0, 2)
	defer pin.Close()
	src := impulse.NewSource(pin, impulse.NewMonotonicClock(), 64)
	r := New(settings.Default(), src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, r.StartSession(ctx))

	deadline := time.After(2 * time.Second)
	for r.Snapshot().TotalTime == 0 {
		select {
		case <-deadline:
			t.Fatal("expected TotalTime to advance from impulses")
		case <-time.After(10 * time.Millisecond):
		}
	}

	assert.NoError(t, r.EndSession())
}

func TestResetReturnsEngineToRecovery(t *testing.T) {
	pin := hw.NewSimPin(time.Millisecond, 0, 3)
	defer pin.Close()
	src := impulse.NewSource(pin, impulse.NewMonotonicClock(), 64)
	r := New(settings.Default(), src)

	r.Reset()
	assert.Equal(t, snapshot.Recovery, r.Snapshot().State)
}

func TestActiveFlagTracksSessionLifecycle(t *testing.T) {
	pin := hw.NewSimPin(time.Millisecond, 0, 4)
	defer pin.Close()
	src := impulse.NewSource(pin, impulse.NewMonotonicClock(), 64)
	r := New(settings.Default(), src)

	assert.False(t, r.Snapshot().Active)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, r.StartSession(ctx))
	assert.True(t, r.Snapshot().Active)

	assert.NoError(t, r.EndSession())
	assert.False(t, r.Snapshot().Active)
}
