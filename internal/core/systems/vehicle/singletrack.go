package vehicle

import "github.com/zeusync/trackenv/internal/core/systems/physics"

var _ Model = SingleTrack{}

// SingleTrack is the longitudinal model: steering turns the heading at
// TurnRate, throttle and brake change the scalar speed, friction damps it,
// and the vehicle always moves along its heading.
type SingleTrack struct {
	MaxSpeed   float64 // units per second
	Accel      float64 // units per second^2 at full throttle
	BrakeForce float64 // units per second^2 at full brake
	Friction   float64 // fraction of speed lost per second
	TurnRate   float64 // radians per second at full steer
	ReverseCap float64 // reverse speed limit as a fraction of MaxSpeed
	// MinThrottle is -1 when reverse throttle is allowed, 0 otherwise.
	MinThrottle float64
}

func (SingleTrack) Name() string { return ModelSingleTrack }

func (m SingleTrack) Advance(s State, c Control, dt float64) State {
	steer := clampUnit(c.Steer)
	throttle := physics.Clamp(clampUnit(c.Throttle), m.MinThrottle, 1)
	brake := physics.Clamp(clampUnit(c.Brake), 0, 1)

	next := s
	next.Heading = s.Heading + float64(steer*m.TurnRate*dt)

	// Products are rounded explicitly so no platform fuses them.
	a := float64(m.Accel*throttle) - float64(m.BrakeForce*brake*sign(s.Speed))
	speed := float64((s.Speed + float64(a*dt)) * (1 - float64(m.Friction*dt)))
	next.Speed = physics.Clamp(speed, -float64(m.ReverseCap*m.MaxSpeed), m.MaxSpeed)

	next.Velocity = physics.FromAngle(next.Heading, next.Speed)
	next.Position = s.Position.Add(next.Velocity.Scale(dt))
	return finite(s, next)
}
