// Package hw is the portable GPIO edge abstraction the impulse source is
// built on: machine.Pin under tinygo, a synthetic edge generator for host
// development and tests.
package hw

// PinChange selects which edge direction triggers an interrupt.
type PinChange uint8

const (
	// PinRising fires the callback on a low-to-high transition: a magnet
	// passing the sensor.
	PinRising PinChange = 1 << iota
	PinFalling
	PinToggle = PinRising | PinFalling
)

// Pin is the minimal interrupt-capable GPIO edge source the impulse
// source needs. Configuration (pull mode, debounce) is the concrete
// implementation's concern, not this interface's.
type Pin interface {
	// SetInterrupt arms callback to run on every edge matching change.
	// Under tinygo this runs in interrupt context: callback must not
	// allocate or block.
	SetInterrupt(change PinChange, callback func()) error
}
