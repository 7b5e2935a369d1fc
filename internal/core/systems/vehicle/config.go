package vehicle

import (
	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
)

// Model names
const (
	ModelHolonomic   = "holonomic"
	ModelSingleTrack = "single_track"
)

// Input kinds of the single-track model
const (
	InputContinuous = "continuous"
	InputDiscrete   = "discrete"
)

var ErrInvalidConfig = errors.New("invalid vehicle configuration")

// Config selects and parameterizes a model.
type Config struct {
	Model string `json:"model" yaml:"model"`
	// Input is continuous or discrete; holonomic models are always continuous.
	Input     string    `json:"input" yaml:"input"`
	Footprint Footprint `json:"footprint" yaml:"footprint"`

	TopSpeed float64 `json:"top_speed" yaml:"top_speed"`

	MaxSpeed     float64 `json:"max_speed" yaml:"max_speed"`
	Accel        float64 `json:"accel" yaml:"accel"`
	BrakeForce   float64 `json:"brake_force" yaml:"brake_force"`
	Friction     float64 `json:"friction" yaml:"friction"`
	TurnRateDeg  float64 `json:"turn_rate_deg" yaml:"turn_rate_deg"`
	ReverseCap   float64 `json:"reverse_cap" yaml:"reverse_cap"`
	AllowReverse bool    `json:"allow_reverse" yaml:"allow_reverse"`
}

// DefaultConfig is a 40x24 single-track car driven by continuous
// steer/throttle.
func DefaultConfig() Config {
	return Config{
		Model:       ModelSingleTrack,
		Input:       InputContinuous,
		Footprint:   Footprint{HalfWidth: 20, HalfHeight: 12},
		TopSpeed:    180,
		MaxSpeed:    240,
		Accel:       300,
		BrakeForce:  600,
		Friction:    0.5,
		TurnRateDeg: 180,
		ReverseCap:  0.25,
	}
}

// Discrete reports whether the configured model takes discrete actions.
func (c Config) Discrete() bool {
	return c.Model == ModelSingleTrack && c.Input == InputDiscrete
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !(c.Footprint.HalfWidth > 0) || !(c.Footprint.HalfHeight > 0) {
		return errors.Wrap(ErrInvalidConfig, "footprint half extents must be positive")
	}
	switch c.Model {
	case ModelHolonomic:
		if !(c.TopSpeed > 0) {
			return errors.Wrap(ErrInvalidConfig, "top speed must be positive")
		}
	case ModelSingleTrack:
		if !(c.MaxSpeed > 0) || c.Accel < 0 || c.BrakeForce < 0 || c.Friction < 0 || c.TurnRateDeg < 0 {
			return errors.Wrap(ErrInvalidConfig, "single-track parameters must be non-negative with a positive max speed")
		}
		if c.ReverseCap < 0 || c.ReverseCap > 1 {
			return errors.Wrapf(ErrInvalidConfig, "reverse cap %g outside [0, 1]", c.ReverseCap)
		}
		if c.Input != InputContinuous && c.Input != InputDiscrete {
			return errors.Wrapf(ErrInvalidConfig, "unknown input %q", c.Input)
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown model %q", c.Model)
	}
	return nil
}

// Build validates the configuration and returns the model.
func (c Config) Build() (Model, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Model == ModelHolonomic {
		return Holonomic{TopSpeed: c.TopSpeed}, nil
	}
	m := SingleTrack{
		MaxSpeed:   c.MaxSpeed,
		Accel:      c.Accel,
		BrakeForce: c.BrakeForce,
		Friction:   c.Friction,
		TurnRate:   physics.Radians(c.TurnRateDeg),
		ReverseCap: c.ReverseCap,
	}
	if c.AllowReverse {
		m.MinThrottle = -1
	}
	return m, nil
}

// SpeedLimit is the largest speed magnitude the model can reach.
func (c Config) SpeedLimit() float64 {
	if c.Model == ModelHolonomic {
		return c.TopSpeed
	}
	return c.MaxSpeed
}
