//go:build tinygo

package hw

import "machine"

// MachinePin adapts a machine.Pin to the Pin interface.
type MachinePin struct {
	pin machine.Pin
}

// NewMachinePin wraps an already-configured input pin.
func NewMachinePin(pin machine.Pin) *MachinePin {
	return &MachinePin{pin: pin}
}

// SetInterrupt arms the hardware interrupt on pin.
func (m *MachinePin) SetInterrupt(change PinChange, callback func()) error {
	return m.pin.SetInterrupt(machine.PinChange(change), func(machine.Pin) {
		callback()
	})
}
