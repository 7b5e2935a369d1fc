// Package vehicle advances a vehicle by one fixed tick. Every model is a pure
// function of (state, control, dt); the caller decides whether the predicted
// state is committed.
package vehicle

import (
	"math"

	"github.com/zeusync/trackenv/internal/core/systems/physics"
)

// State is the vehicle's kinematic state after a tick.
type State struct {
	physics.Pose
	Speed    float64      `json:"speed"`
	Velocity physics.Vec2 `json:"velocity"`
}

// Stopped returns the state with speed and velocity zeroed.
func (s State) Stopped() State {
	s.Speed = 0
	s.Velocity = physics.Vec2{}
	return s
}

// Footprint is the half extents of the vehicle's collision box. HalfWidth
// runs along the heading.
type Footprint struct {
	HalfWidth  float64 `json:"half_width" yaml:"half_width"`
	HalfHeight float64 `json:"half_height" yaml:"half_height"`
}

// Control is one tick of input. Holonomic models read Direction; the
// single-track model reads Steer, Throttle and Brake.
type Control struct {
	Direction physics.Vec2
	Steer     float64
	Throttle  float64
	Brake     float64
}

// Model integrates one tick.
type Model interface {
	Name() string
	// Advance returns the predicted state after dt. It never returns
	// non-finite values.
	Advance(s State, c Control, dt float64) State
}

// DiscreteAction is the three-way action set of the raster tracks.
type DiscreteAction int

const (
	TurnLeft DiscreteAction = iota
	TurnRight
	Accelerate

	NumDiscreteActions = 3
)

func (a DiscreteAction) String() string {
	switch a {
	case TurnLeft:
		return "turn_left"
	case TurnRight:
		return "turn_right"
	case Accelerate:
		return "accelerate"
	default:
		return "unknown"
	}
}

// ControlFor maps a discrete action onto the single-track inputs: a full
// steer for one tick (a fixed heading delta) or full throttle for one tick (a
// fixed forward impulse). Unknown actions coast.
func ControlFor(a DiscreteAction) Control {
	switch a {
	case TurnLeft:
		return Control{Steer: -1}
	case TurnRight:
		return Control{Steer: 1}
	case Accelerate:
		return Control{Throttle: 1}
	default:
		return Control{}
	}
}

// finite guards a predicted state: anything non-finite falls back to the
// previous pose at rest.
func finite(prev, next State) State {
	if next.Position.IsFinite() && physics.IsFinite(next.Heading) &&
		physics.IsFinite(next.Speed) && next.Velocity.IsFinite() {
		return next
	}
	out := prev.Stopped()
	if !out.Position.IsFinite() {
		out.Position = physics.Vec2{}
	}
	if !physics.IsFinite(out.Heading) {
		out.Heading = 0
	}
	return out
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return physics.Clamp(v, -1, 1)
}
