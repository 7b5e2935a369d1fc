package env

import (
	"github.com/zeusync/trackenv/internal/core/systems/physics"
	"github.com/zeusync/trackenv/internal/core/systems/vehicle"
)

// Action is one step of agent input. Continuous models read Vector (and
// Brake for the single-track model); discrete models read Discrete.
type Action struct {
	Vector   [2]float64             `json:"vector"`
	Brake    float64                `json:"brake,omitempty"`
	Discrete vehicle.DiscreteAction `json:"discrete,omitempty"`
}

func Continuous(a, b float64) Action { return Action{Vector: [2]float64{a, b}} }

func Discrete(a vehicle.DiscreteAction) Action { return Action{Discrete: a} }

// Action space kinds
const (
	SpaceContinuous = "continuous"
	SpaceDiscrete   = "discrete"
)

// ActionSpace declares the action shape and bounds. Out-of-bounds actions
// are clamped, never rejected.
type ActionSpace struct {
	Kind   string    `json:"kind"`
	Labels []string  `json:"labels"`
	Low    []float64 `json:"low,omitempty"`
	High   []float64 `json:"high,omitempty"`
	N      int       `json:"n,omitempty"`
}

func actionSpace(cfg vehicle.Config) ActionSpace {
	switch {
	case cfg.Discrete():
		return ActionSpace{
			Kind:   SpaceDiscrete,
			Labels: []string{vehicle.TurnLeft.String(), vehicle.TurnRight.String(), vehicle.Accelerate.String()},
			N:      vehicle.NumDiscreteActions,
		}
	case cfg.Model == vehicle.ModelHolonomic:
		return ActionSpace{
			Kind:   SpaceContinuous,
			Labels: []string{"dx", "dy"},
			Low:    []float64{-1, -1},
			High:   []float64{1, 1},
		}
	default:
		low := 0.0
		if cfg.AllowReverse {
			low = -1
		}
		return ActionSpace{
			Kind:   SpaceContinuous,
			Labels: []string{"steer", "throttle", "brake"},
			Low:    []float64{-1, low, 0},
			High:   []float64{1, 1, 1},
		}
	}
}

func finiteOr0(v float64) float64 {
	if physics.IsFinite(v) {
		return v
	}
	return 0
}

func (e *Environment) control(a Action) vehicle.Control {
	switch {
	case e.discrete:
		return vehicle.ControlFor(a.Discrete)
	case e.cfg.Vehicle.Model == vehicle.ModelHolonomic:
		return vehicle.Control{Direction: physics.V(finiteOr0(a.Vector[0]), finiteOr0(a.Vector[1]))}
	default:
		return vehicle.Control{
			Steer:    finiteOr0(a.Vector[0]),
			Throttle: finiteOr0(a.Vector[1]),
			Brake:    finiteOr0(a.Brake),
		}
	}
}
