package vehicle

import "github.com/zeusync/trackenv/internal/core/systems/physics"

var _ Model = Holonomic{}

// Holonomic is the point-mass model: the vehicle moves along the input
// direction at TopSpeed scaled by the input magnitude, with no inertia.
type Holonomic struct {
	TopSpeed float64
}

func (Holonomic) Name() string { return ModelHolonomic }

func (h Holonomic) Advance(s State, c Control, dt float64) State {
	dir := c.Direction
	if !dir.IsFinite() {
		dir = physics.Vec2{}
	}
	if l := dir.Length(); l > 1 {
		dir = dir.Scale(1 / l)
	}

	next := s
	next.Velocity = dir.Scale(h.TopSpeed)
	next.Speed = float64(dir.Length() * h.TopSpeed)
	if dir != (physics.Vec2{}) {
		next.Heading = dir.Angle()
	}
	next.Position = s.Position.Add(next.Velocity.Scale(dt))
	return finite(s, next)
}
