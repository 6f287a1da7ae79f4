// Package flank implements the sliding-window trend detector that turns a
// raw inter-impulse Δt stream into a "flywheel powered / unpowered"
// direction signal, filtering switch bounce and irregular magnets along
// the way.
package flank

import (
	"math"

	"github.com/itohio/rowengine/pkg/rowing/averager"
	"github.com/itohio/rowengine/pkg/rowing/settings"
)

// Detector owns the dirty/clean/angular-velocity/angular-acceleration
// rings and the inner smoothing averager. Index 0 is the most recent
// sample.
type Detector struct {
	s settings.Settings

	ma *averager.Averager

	dirty  []float64
	clean  []float64
	angVel []float64
	angAcc []float64

	thetaImpulse float64

	sequentialCorrections    int
	maxSequentialCorrections int
}

// New constructs a Detector sized flankLength+1, with every raw and clean
// slot and the smoothing averager pre-filled with MaxImpulseTime. Early
// samples far below that value fail the change limiter and are replaced
// until the sequential-correction budget is spent.
func New(s settings.Settings) *Detector {
	n := s.FlankLength + 1
	thetaImpulse := 2 * math.Pi / s.ImpulsesPerRevolution
	defaultVel := thetaImpulse / s.MaxImpulseTime

	d := &Detector{
		s:            s,
		ma:           averager.New(s.Smoothing, s.MaxImpulseTime),
		dirty:        make([]float64, n),
		clean:        make([]float64, n),
		angVel:       make([]float64, n),
		angAcc:       make([]float64, n),
		thetaImpulse: thetaImpulse,
	}
	for i := range d.dirty {
		d.dirty[i] = s.MaxImpulseTime
		d.clean[i] = s.MaxImpulseTime
		d.angVel[i] = defaultVel
		d.angAcc[i] = 0.1
	}
	if s.Smoothing >= 2 {
		d.maxSequentialCorrections = s.Smoothing
	} else {
		d.maxSequentialCorrections = 2
	}
	return d
}

func shiftRight(r []float64) {
	for i := len(r) - 1; i > 0; i-- {
		r[i] = r[i-1]
	}
}

// Push feeds one raw inter-impulse Δt through the bounds filter, the
// change limiter, and the derived-metric update: shift the rings, filter
// bounds, push into the averager, apply the change limiter, store the clean
// value, and derive angular velocity and acceleration.
func (d *Detector) Push(dt float64) {
	shiftRight(d.dirty)
	shiftRight(d.clean)
	shiftRight(d.angVel)
	shiftRight(d.angAcc)
	d.dirty[0] = dt

	// Bounds filter: out-of-band samples are substituted with the
	// previous clean value.
	if dt < d.s.MinImpulseTime || dt > d.s.MaxImpulseTime {
		dt = d.clean[1]
	}

	d.ma.Push(dt)
	mean := d.ma.Average()
	prevClean := d.clean[1]

	plausible := mean > d.s.MaxDownwardChange*prevClean && mean < d.s.MaxUpwardChange*prevClean
	if plausible {
		d.sequentialCorrections = 0
	} else if d.sequentialCorrections <= d.maxSequentialCorrections {
		d.ma.ReplaceLast(prevClean)
		d.sequentialCorrections++
	}

	d.clean[0] = d.ma.Average()

	if d.clean[0] > 0 {
		d.angVel[0] = d.thetaImpulse / d.clean[0]
		d.angAcc[0] = (d.angVel[0] - d.angVel[1]) / d.clean[0]
	} else {
		d.angVel[0] = 0
		d.angAcc[0] = 0
	}
}

// IsFlywheelPowered reports whether clean[0..flankLength] shows a
// consistent acceleration trend (Δt shrinking), within the configured
// error tolerance.
func (d *Detector) IsFlywheelPowered() bool {
	errs := 0
	for i := d.s.FlankLength; i > 1; i-- {
		if d.clean[i] < d.clean[i-1] {
			errs++
		}
	}
	if d.clean[1] <= d.clean[0] {
		errs++
	}
	return errs <= d.s.ErrorsAllowed
}

// IsFlywheelUnpowered reports whether clean[0..flankLength] shows a
// consistent deceleration trend (Δt growing), within the configured error
// tolerance.
func (d *Detector) IsFlywheelUnpowered() bool {
	errs := 0
	for i := d.s.FlankLength; i > 0; i-- {
		if d.clean[i] >= d.clean[i-1] {
			errs++
		}
	}
	return errs <= d.s.ErrorsAllowed
}

// TimeToBeginOfFlank sums the raw Δt window, i.e. the total time spanned
// by the current trend window.
func (d *Detector) TimeToBeginOfFlank() float64 {
	total := 0.0
	for i := 0; i <= d.s.FlankLength; i++ {
		total += d.dirty[i]
	}
	return total
}

// ImpulseLengthAtBeginFlank returns the clean Δt at the oldest slot of the
// trend window.
func (d *Detector) ImpulseLengthAtBeginFlank() float64 {
	return d.clean[d.s.FlankLength]
}

// AccelerationAtBeginFlank returns the angular acceleration one slot
// inside the oldest slot of the trend window.
func (d *Detector) AccelerationAtBeginFlank() float64 {
	return d.angAcc[d.s.FlankLength-1]
}
