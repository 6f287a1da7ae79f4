package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/rowengine/pkg/rowing/settings"
	"github.com/itohio/rowengine/pkg/rowing/snapshot"
)

type recordingObserver struct {
	strokeStarts []snapshot.Snapshot
	strokeEnds   []snapshot.Snapshot
	updates      int
}

func (r *recordingObserver) OnStrokeStart(s snapshot.Snapshot)  { r.strokeStarts = append(r.strokeStarts, s) }
func (r *recordingObserver) OnStrokeEnd(s snapshot.Snapshot)    { r.strokeEnds = append(r.strokeEnds, s) }
func (r *recordingObserver) OnMetricsUpdate(snapshot.Snapshot) { r.updates++ }

func feed(e *Engine, dt float64, n int) {
	for i := 0; i < n; i++ {
		e.HandleRotationImpulse(dt)
	}
}

func TestFirstStrokeProducesDriveAndDistance(t *testing.T) {
	e := New(settings.Default())
	obs := &recordingObserver{}
	e.AddObserver(obs)

	feed(e, 0.015, 20) // drive-speed impulses
	feed(e, 0.025, 20) // recovery-speed impulses
	feed(e, 0.015, 20) // drive again to close the recovery

	snap := e.Snapshot()
	assert.GreaterOrEqual(t, snap.StrokeCount, 1)
	assert.GreaterOrEqual(t, snap.Distance, 0.0)
}

func TestPauseDoesNotAccrueTimeOrChangeState(t *testing.T) {
	e := New(settings.Default())

	feed(e, 0.02, 10)
	before := e.Snapshot()

	e.HandleRotationImpulse(settings.Default().MaxImpulseTimeForPause + 1.0) // exceeds MaxImpulseTimeForPause

	after := e.Snapshot()
	assert.Equal(t, before.TotalTime, after.TotalTime)
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.StrokeCount, after.StrokeCount)

	feed(e, 0.02, 10)
	final := e.Snapshot()
	assert.InDelta(t, before.TotalTime+10*0.02, final.TotalTime, 1e-9)
}

func TestOutOfBoundsImpulseIsAbsorbed(t *testing.T) {
	e := New(settings.Default())
	feed(e, 0.02, 10)

	assert.NotPanics(t, func() {
		e.HandleRotationImpulse(0.0001) // below MinImpulseTime
	})
}

func TestResetReturnsToInitialState(t *testing.T) {
	e := New(settings.Default())
	feed(e, 0.015, 20)
	feed(e, 0.025, 20)
	feed(e, 0.015, 20)

	e.Reset()
	snap := e.Snapshot()

	assert.Equal(t, snapshot.Recovery, snap.State)
	assert.Equal(t, 0, snap.StrokeCount)
	assert.Equal(t, 0.0, snap.Distance)
	assert.Equal(t, settings.Default().DragFactor, snap.DragFactor)
}

func TestTotalTimeIsMonotonic(t *testing.T) {
	e := New(settings.Default())
	last := 0.0
	for i := 0; i < 50; i++ {
		dt := 0.02
		if i%7 == 0 {
			dt = 0.001 // out of bounds, absorbed, but time still accrues since below pause threshold
		}
		e.HandleRotationImpulse(dt)
		snap := e.Snapshot()
		assert.GreaterOrEqual(t, snap.TotalTime, last)
		last = snap.TotalTime
	}
}

func TestAutoAdjustDragDisabledKeepsConstantDrag(t *testing.T) {
	s := settings.Default()
	s.AutoAdjustDrag = false
	e := New(s)

	feed(e, 0.015, 30)
	feed(e, 0.025, 30)
	feed(e, 0.015, 30)

	assert.Equal(t, s.DragFactor, e.Snapshot().DragFactor)
}

func TestReplayIsDeterministic(t *testing.T) {
	mkEngine := func() *Engine { return New(settings.Default()) }
	seq := []float64{0.015, 0.015, 0.015, 0.016, 0.018, 0.02, 0.022, 0.025, 0.025, 0.025, 0.02, 0.017, 0.015}

	e1 := mkEngine()
	e2 := mkEngine()
	for _, dt := range seq {
		e1.HandleRotationImpulse(dt)
		e2.HandleRotationImpulse(dt)
		assert.Equal(t, e1.Snapshot(), e2.Snapshot())
	}
}

func TestStrokeCountMonotonic(t *testing.T) {
	e := New(settings.Default())
	last := 0
	seq := append(append(repeatN(0.015, 20), repeatN(0.025, 20)...), repeatN(0.015, 20)...)
	for _, dt := range seq {
		e.HandleRotationImpulse(dt)
		c := e.Snapshot().StrokeCount
		assert.GreaterOrEqual(t, c, last)
		last = c
	}
}

func TestStrokeSumsAccumulateOncePerCompletedStroke(t *testing.T) {
	e := New(settings.Default())
	obs := &recordingObserver{}
	e.AddObserver(obs)

	feed(e, 0.015, 20)
	feed(e, 0.025, 20)
	feed(e, 0.015, 20)
	feed(e, 0.025, 20)

	snap := e.Snapshot()
	assert.Equal(t, len(obs.strokeEnds), snap.StrokeSampleCount)

	wantSpeedSum, wantPowerSum := 0.0, 0.0
	for _, s := range obs.strokeEnds {
		wantSpeedSum += s.Speed
		wantPowerSum += s.Power
	}
	assert.InDelta(t, wantSpeedSum, snap.SpeedSum, 1e-9)
	assert.InDelta(t, wantPowerSum, snap.PowerSum, 1e-9)
}

func repeatN(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
