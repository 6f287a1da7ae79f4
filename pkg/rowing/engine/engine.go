// Package engine implements the rowing state machine: the drive/recovery
// alternator and the per-stroke physics (torque, speed, power, distance,
// drag factor) built on top of the flank detector.
package engine

import (
	"math"
	"sync"

	"github.com/itohio/rowengine/internal/logger"
	"github.com/itohio/rowengine/pkg/rowing/averager"
	"github.com/itohio/rowengine/pkg/rowing/flank"
	"github.com/itohio/rowengine/pkg/rowing/settings"
	"github.com/itohio/rowengine/pkg/rowing/snapshot"
)

// Observer receives engine callbacks. Implementations must not block, must
// not call back into the engine, and must not retain the snapshot beyond
// the call.
type Observer interface {
	OnStrokeStart(snapshot.Snapshot)
	OnStrokeEnd(snapshot.Snapshot)
	OnMetricsUpdate(snapshot.Snapshot)
}

// Engine holds the stroke state machine and physics for a single rowing
// session. It is single-writer: only the worker goroutine that calls
// HandleRotationImpulse may mutate it. mu guards data against concurrent
// Snapshot reads from other goroutines; it is held for the whole of
// HandleRotationImpulse, not just the final field writes, since data is
// read and written incrementally throughout phase transitions.
type Engine struct {
	s settings.Settings

	flank *flank.Detector
	drag  *averager.Averager

	mu   sync.Mutex
	data snapshot.Snapshot

	observers []Observer

	thetaImpulse float64

	drivePhaseStartTime    float64
	recoveryPhaseStartTime float64

	// recoveryStartImpulse is impulseLengthAtBeginFlank() captured at the
	// instant RECOVERY was entered; reused, not re-queried, when DRIVE is
	// entered.
	recoveryStartImpulse float64

	// driveImpulses/recoveryImpulses count impulses seen during the
	// in-progress phase. lastDriveImpulses/lastRecoveryImpulses hold the
	// count from the most recently completed phase of that kind,
	// preserved across one full cycle exactly like DriveDuration and
	// RecoveryDuration in the snapshot.
	driveImpulses        int
	recoveryImpulses     int
	lastDriveImpulses    int
	lastRecoveryImpulses int

	previousAngularVelocity float64
}

// New constructs an Engine and resets it into its initial RECOVERY state.
func New(s settings.Settings) *Engine {
	e := &Engine{
		s:            s,
		flank:        flank.New(s),
		drag:         averager.New(s.DragSmoothing, s.DragFactor),
		thetaImpulse: 2 * math.Pi / s.ImpulsesPerRevolution,
	}
	e.Reset()
	return e
}

// AddObserver registers an additional observer. Observers are invoked in
// registration order.
func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// Reset returns the engine to its initial state: RECOVERY, zeroed
// counters, the configured default drag factor, and a phantom prior
// recovery phase so the very first Powered detection yields a legitimate
// drive start.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.data = snapshot.Snapshot{
		State:      snapshot.Recovery,
		DragFactor: e.s.DragFactor,
	}
	e.drag.Reset(e.s.DragFactor)
	e.flank = flank.New(e.s)

	e.recoveryPhaseStartTime = -2.0 * e.s.MinRecoveryTime
	e.drivePhaseStartTime = 0
	e.recoveryStartImpulse = 0
	e.driveImpulses = 0
	e.recoveryImpulses = 0
	e.lastDriveImpulses = 0
	e.lastRecoveryImpulses = 0
	e.previousAngularVelocity = 0
}

// Snapshot returns a by-value copy of the current rowing state. Safe to
// call concurrently with HandleRotationImpulse.
func (e *Engine) Snapshot() snapshot.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data
}

// HandleRotationImpulse advances the state machine and physics by one
// inter-impulse interval. It never blocks, never allocates, and never
// panics on malformed input: a pause is absorbed, an out-of-band Δt is
// absorbed by the flank detector. The critical section spans the whole
// call, since data is read and written incrementally across phase
// transitions, not just assigned once at the end.
func (e *Engine) HandleRotationImpulse(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if dt > e.s.MaxImpulseTimeForPause {
		logger.Log.Debug().Float64("dt", dt).Msg("pause detected")
		return
	}

	e.data.TotalTime += dt
	e.flank.Push(dt)

	switch e.data.State {
	case snapshot.Drive:
		e.driveImpulses++
		if e.flank.IsFlywheelUnpowered() {
			driveLen := (e.data.TotalTime - e.flank.TimeToBeginOfFlank()) - e.drivePhaseStartTime
			if driveLen >= e.s.MinDriveTime {
				e.startRecoveryPhase(dt)
			} else {
				e.updateDrivePhase(dt)
			}
		} else {
			e.updateDrivePhase(dt)
		}
	default: // Idle is never entered mid-session; treat as Recovery
		e.recoveryImpulses++
		if e.flank.IsFlywheelPowered() {
			recLen := (e.data.TotalTime - e.flank.TimeToBeginOfFlank()) - e.recoveryPhaseStartTime
			if recLen >= e.s.MinRecoveryTime {
				e.startDrivePhase(dt)
			} else {
				e.updateRecoveryPhase(dt)
			}
		} else {
			e.updateRecoveryPhase(dt)
		}
	}
}

func (e *Engine) startDrivePhase(dt float64) {
	endTime := e.data.TotalTime - e.flank.TimeToBeginOfFlank()
	recoveryLen := endTime - e.recoveryPhaseStartTime
	driveLen := e.data.DriveDuration

	// Preserved unconditionally so the next startRecoveryPhase has it
	// available for the full-cycle duration, mirroring driveDuration
	// below.
	e.data.RecoveryDuration = recoveryLen

	if recoveryLen >= e.s.MinRecoveryTime && driveLen >= e.s.MinDriveTime {
		cycleTime := driveLen + recoveryLen
		e.data.LastStrokeTime = cycleTime
		e.data.StrokesPerMinute = 60.0 / cycleTime

		if e.s.AutoAdjustDrag && e.recoveryStartImpulse > 0 && dt > 0 {
			e.updateDragFactor(recoveryLen, dt)
		}
	}

	// recoveryImpulses now holds the count for the recovery phase that is
	// ending; preserve it for the next startRecoveryPhase, which needs the
	// PREVIOUS recovery's count to pair with the drive that is about to
	// complete, then start the new drive phase with a clean counter.
	e.lastRecoveryImpulses = e.recoveryImpulses
	e.recoveryImpulses = 0
	e.driveImpulses = 0

	e.drivePhaseStartTime = endTime
	e.data.StrokeCount++
	e.data.State = snapshot.Drive

	e.notify(func(o Observer) { o.OnStrokeStart(e.data) })
}

func (e *Engine) updateDragFactor(recoveryLen, dt float64) {
	wStart := e.thetaImpulse / e.recoveryStartImpulse
	wEnd := e.thetaImpulse / dt

	candidate := -1.0 * e.s.FlywheelInertia * ((1.0 / wStart) - (1.0 / wEnd)) / recoveryLen

	avg := e.drag.Average()
	maxUp := avg * (1.0 + e.s.DragMaxChange)
	maxDown := avg * (1.0 - e.s.DragMaxChange)

	switch {
	case candidate > maxDown && candidate < maxUp:
		e.drag.Push(candidate)
	case candidate >= maxUp:
		e.drag.Push(maxUp)
	default:
		e.drag.Push(maxDown)
	}
	e.data.DragFactor = e.drag.Average()
	logger.Log.Debug().Float64("drag", e.data.DragFactor).Msg("drag factor updated")
}

func (e *Engine) updateDrivePhase(dt float64) {
	vel := e.thetaImpulse / dt
	e.data.InstantaneousTorque = e.torque(dt, vel)
	e.notify(func(o Observer) { o.OnMetricsUpdate(e.data) })
}

func (e *Engine) startRecoveryPhase(dt float64) {
	endTime := e.data.TotalTime - e.flank.TimeToBeginOfFlank()
	e.data.DriveDuration = endTime - e.drivePhaseStartTime

	// driveImpulses holds the count for the drive phase that is ending;
	// recoveryAngle pairs it with lastRecoveryImpulses, the PREVIOUS
	// recovery phase's count preserved at the last startDrivePhase, giving
	// one matched drive+recovery cycle exactly as driveDuration pairs with
	// the preserved recoveryDuration below.
	e.lastDriveImpulses = e.driveImpulses
	driveAngle := float64(e.lastDriveImpulses) * e.thetaImpulse
	recoveryAngle := float64(e.lastRecoveryImpulses) * e.thetaImpulse
	cycleTime := e.data.DriveDuration + e.data.RecoveryDuration

	e.data.Speed = e.linearVelocity(driveAngle, recoveryAngle, cycleTime)
	e.data.Power = e.cyclePower(driveAngle, recoveryAngle, cycleTime)
	e.data.Distance += e.data.Speed * cycleTime

	e.data.SpeedSum += e.data.Speed
	e.data.PowerSum += e.data.Power
	e.data.StrokeSampleCount++

	e.recoveryPhaseStartTime = endTime
	e.recoveryStartImpulse = e.flank.ImpulseLengthAtBeginFlank()
	e.driveImpulses = 0
	e.data.State = snapshot.Recovery

	e.notify(func(o Observer) { o.OnStrokeEnd(e.data) })
}

func (e *Engine) updateRecoveryPhase(dt float64) {
	vel := e.thetaImpulse / dt
	e.data.InstantaneousTorque = e.torque(dt, vel)
	e.notify(func(o Observer) { o.OnMetricsUpdate(e.data) })
}

func (e *Engine) torque(dt, vel float64) float64 {
	alpha := (vel - e.previousAngularVelocity) / dt
	t := e.s.FlywheelInertia*alpha + e.data.DragFactor*vel*vel
	e.previousAngularVelocity = vel
	return t
}

func (e *Engine) linearVelocity(driveAngle, recoveryAngle, cycleTime float64) float64 {
	if cycleTime <= 0 {
		return 0
	}
	factor := math.Pow(e.data.DragFactor/e.s.MagicConstant, 1.0/3.0)
	return factor * ((driveAngle + recoveryAngle) / cycleTime)
}

func (e *Engine) cyclePower(driveAngle, recoveryAngle, cycleTime float64) float64 {
	if cycleTime <= 0 {
		return 0
	}
	avgVel := (driveAngle + recoveryAngle) / cycleTime
	return e.data.DragFactor * math.Pow(avgVel, 3.0)
}

func (e *Engine) notify(f func(Observer)) {
	for _, o := range e.observers {
		f(o)
	}
}
