// Package settings holds the immutable physical and filtering parameters
// the rowing engine is constructed with.
package settings

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Settings are the compile-time-ish parameters of the rowing engine. All
// fields are plain doubles; scaled-integer encoding is a concern of the
// config loader, not of the engine.
type Settings struct {
	// Mechanics
	ImpulsesPerRevolution float64 `yaml:"impulses_per_revolution"`
	FlywheelInertia       float64 `yaml:"flywheel_inertia"`
	MagicConstant         float64 `yaml:"magic_constant"`

	// Timing gates, in seconds
	MinImpulseTime         float64 `yaml:"min_impulse_time"`
	MaxImpulseTime          float64 `yaml:"max_impulse_time"`
	MinDriveTime            float64 `yaml:"min_drive_time"`
	MinRecoveryTime         float64 `yaml:"min_recovery_time"`
	MaxImpulseTimeForPause  float64 `yaml:"max_impulse_time_for_pause"`

	// Flank / noise filter tuning
	Smoothing          int     `yaml:"smoothing"`
	FlankLength        int     `yaml:"flank_length"`
	ErrorsAllowed      int     `yaml:"errors_allowed"`
	MaxDownwardChange  float64 `yaml:"max_downward_change"`
	MaxUpwardChange    float64 `yaml:"max_upward_change"`

	// Drag factor
	DragFactor        float64 `yaml:"drag_factor"`
	AutoAdjustDrag    bool    `yaml:"auto_adjust_drag"`
	DragSmoothing     int     `yaml:"drag_smoothing"`
	DragMaxChange     float64 `yaml:"drag_max_change"`
}

// Default returns the compile-time baked-in defaults, modeled on the
// Concept2-compatible constants used by the physics engine this was
// derived from.
func Default() Settings {
	return Settings{
		ImpulsesPerRevolution: 1,
		FlywheelInertia:       0.06,
		MagicConstant:         2.8,

		MinImpulseTime:         0.008,
		MaxImpulseTime:         3.0,
		MinDriveTime:           0.1,
		MinRecoveryTime:        0.2,
		MaxImpulseTimeForPause: 6.0,

		Smoothing:         4,
		FlankLength:       8,
		ErrorsAllowed:     1,
		MaxDownwardChange: 0.25,
		MaxUpwardChange:   1.75,

		DragFactor:     0.00155,
		AutoAdjustDrag: true,
		DragSmoothing:  5,
		DragMaxChange:  0.15,
	}
}

// LoadYAML reads a Settings override from r, starting from Default() so a
// partial document only overrides the fields it names.
func LoadYAML(r io.Reader) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Settings{}, fmt.Errorf("settings: decode yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the constructor-time assertions: positivity, ordering of
// min/max pairs, and non-empty filter windows. It never runs on the hot
// path.
func (s Settings) Validate() error {
	switch {
	case s.ImpulsesPerRevolution <= 0:
		return fmt.Errorf("settings: impulses per revolution must be > 0")
	case s.FlywheelInertia <= 0:
		return fmt.Errorf("settings: flywheel inertia must be > 0")
	case s.MagicConstant <= 0:
		return fmt.Errorf("settings: magic constant must be > 0")
	case s.MinImpulseTime <= 0:
		return fmt.Errorf("settings: min impulse time must be > 0")
	case s.MaxImpulseTime <= s.MinImpulseTime:
		return fmt.Errorf("settings: max impulse time must be > min impulse time")
	case s.MaxImpulseTimeForPause <= s.MaxImpulseTime:
		return fmt.Errorf("settings: pause threshold must be > max impulse time")
	case s.MinDriveTime <= 0:
		return fmt.Errorf("settings: min drive time must be > 0")
	case s.MinRecoveryTime <= 0:
		return fmt.Errorf("settings: min recovery time must be > 0")
	case s.Smoothing < 1:
		return fmt.Errorf("settings: smoothing window must be >= 1")
	case s.FlankLength < 2:
		return fmt.Errorf("settings: flank length must be >= 2")
	case s.ErrorsAllowed < 0:
		return fmt.Errorf("settings: errors allowed must be >= 0")
	case s.DragFactor <= 0:
		return fmt.Errorf("settings: drag factor must be > 0")
	case s.DragSmoothing < 1:
		return fmt.Errorf("settings: drag smoothing window must be >= 1")
	}
	return nil
}
