package env

import (
	"math"

	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/systems/collision"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
	"github.com/zeusync/trackenv/internal/core/systems/sensors"
	"github.com/zeusync/trackenv/internal/core/systems/vehicle"
)

// Observation layouts
const (
	// ObservationLidar is the K sensor readings.
	ObservationLidar = "lidar"
	// ObservationExtended appends normalized speed, heading sine, heading
	// cosine and the offset to the next checkpoint.
	ObservationExtended = "extended"
)

// Start modes
const (
	// StartFixed places the vehicle at StartConfig.Position facing the first
	// checkpoint.
	StartFixed = "fixed"
	// StartCheckpoints places the vehicle on the first checkpoint facing the
	// second.
	StartCheckpoints = "checkpoints"
)

// Config holds everything an environment needs besides the track.
type Config struct {
	Vehicle   vehicle.Config   `json:"vehicle" yaml:"vehicle"`
	Sensors   sensors.Config   `json:"sensors" yaml:"sensors"`
	Collision collision.Config `json:"collision" yaml:"collision"`
	Reward    RewardConfig     `json:"reward" yaml:"reward"`
	Start     StartConfig      `json:"start" yaml:"start"`

	DT       float64 `json:"dt" yaml:"dt"`
	MaxSteps int     `json:"max_steps" yaml:"max_steps"`
	// BoundsInset shrinks the track bounds the vehicle position is clamped to.
	BoundsInset float64 `json:"bounds_inset" yaml:"bounds_inset"`
	Observation string  `json:"observation" yaml:"observation"`
}

// RewardConfig weights the per-step reward terms.
type RewardConfig struct {
	Survival         float64 `json:"survival" yaml:"survival"`
	SpeedScale       float64 `json:"speed_scale" yaml:"speed_scale"`
	ProgressScale    float64 `json:"progress_scale" yaml:"progress_scale"`
	ClearanceScale   float64 `json:"clearance_scale" yaml:"clearance_scale"`
	TimePenalty      float64 `json:"time_penalty" yaml:"time_penalty"`
	CollisionPenalty float64 `json:"collision_penalty" yaml:"collision_penalty"`
	CheckpointBonus  float64 `json:"checkpoint_bonus" yaml:"checkpoint_bonus"`
	LapBonus         float64 `json:"lap_bonus" yaml:"lap_bonus"`
	// Clip bounds the total to [-Clip, Clip].
	Clip float64 `json:"clip" yaml:"clip"`
}

// StartConfig chooses the reset pose. Jitter and HeadingJitterDeg perturb it
// uniformly from the reset seed.
type StartConfig struct {
	Mode     string       `json:"mode" yaml:"mode"`
	Position physics.Vec2 `json:"position" yaml:"position"`
	// HeadingDeg overrides facing the first checkpoint in fixed mode.
	HeadingDeg       *float64 `json:"heading_deg,omitempty" yaml:"heading_deg,omitempty"`
	Jitter           float64  `json:"jitter" yaml:"jitter"`
	HeadingJitterDeg float64  `json:"heading_jitter_deg" yaml:"heading_jitter_deg"`
}

func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Survival:         0.02,
		SpeedScale:       0.01,
		ProgressScale:    0.1,
		ClearanceScale:   0.05,
		TimePenalty:      0.01,
		CollisionPenalty: -25,
		CheckpointBonus:  10,
		LapBonus:         50,
		Clip:             25,
	}
}

// DefaultConfig matches the default arena: a single-track car starting at
// (225, 210), eight compass rays, 60 ticks per second and 4000 steps per
// episode.
func DefaultConfig() Config {
	return Config{
		Vehicle:     vehicle.DefaultConfig(),
		Sensors:     sensors.DefaultConfig(),
		Reward:      DefaultRewardConfig(),
		Start:       StartConfig{Mode: StartFixed, Position: physics.V(225, 210)},
		DT:          1.0 / 60,
		MaxSteps:    4000,
		BoundsInset: 5,
		Observation: ObservationLidar,
	}
}

func finitePositive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

// Validate checks the configuration independently of a track.
func (c Config) Validate() error {
	if err := c.Vehicle.Validate(); err != nil {
		return err
	}
	if err := c.Sensors.Validate(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if !finitePositive(c.DT) {
		return errors.Wrapf(ErrInvalidConfig, "dt %g", c.DT)
	}
	if c.MaxSteps <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "max steps %d", c.MaxSteps)
	}
	if !(c.BoundsInset >= 0) || math.IsInf(c.BoundsInset, 1) {
		return errors.Wrapf(ErrInvalidConfig, "bounds inset %g", c.BoundsInset)
	}
	switch c.Observation {
	case ObservationLidar, ObservationExtended:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown observation %q", c.Observation)
	}
	if err := c.Reward.Validate(); err != nil {
		return err
	}
	return c.Start.Validate()
}

func (r RewardConfig) Validate() error {
	if !finitePositive(r.Clip) {
		return errors.Wrapf(ErrInvalidConfig, "reward clip %g", r.Clip)
	}
	for _, v := range []float64{r.Survival, r.SpeedScale, r.ProgressScale, r.ClearanceScale,
		r.TimePenalty, r.CollisionPenalty, r.CheckpointBonus, r.LapBonus} {
		if !physics.IsFinite(v) {
			return errors.Wrap(ErrInvalidConfig, "reward weights must be finite")
		}
	}
	return nil
}

func (s StartConfig) Validate() error {
	switch s.Mode {
	case StartFixed:
		if !s.Position.IsFinite() {
			return errors.Wrap(ErrInvalidConfig, "start position must be finite")
		}
		if s.HeadingDeg != nil && !physics.IsFinite(*s.HeadingDeg) {
			return errors.Wrap(ErrInvalidConfig, "start heading must be finite")
		}
	case StartCheckpoints:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown start mode %q", s.Mode)
	}
	if !(s.Jitter >= 0) || !(s.HeadingJitterDeg >= 0) || math.IsInf(s.Jitter, 1) || math.IsInf(s.HeadingJitterDeg, 1) {
		return errors.Wrap(ErrInvalidConfig, "start jitter must be finite and non-negative")
	}
	return nil
}
