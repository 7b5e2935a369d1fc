// Package sensors implements the proximity ray array: a fixed table of
// directions cast from the vehicle against the track, each reading the
// distance to the nearest wall normalized by the maximum range.
package sensors

import (
	"math"

	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
	"github.com/zeusync/trackenv/internal/core/track"
)

// Mode selects how the direction table is interpreted.
type Mode uint8

const (
	// ModeCompass casts world-fixed directions regardless of heading.
	ModeCompass Mode = iota
	// ModeRelative casts angular offsets added to the current heading.
	ModeRelative
)

func (m Mode) String() string {
	switch m {
	case ModeCompass:
		return "compass"
	case ModeRelative:
		return "relative"
	default:
		return "unknown"
	}
}

var (
	ErrNoDirections  = errors.New("sensor array has no directions")
	ErrInvalidRange  = errors.New("sensor max range must be positive and finite")
	ErrInvalidOffset = errors.New("sensor direction is not finite")
)

// Reading holds one normalized distance in [0, 1] per direction.
type Reading []float64

// Mean returns the average reading, or 0 for an empty reading.
func (r Reading) Mean() float64 {
	if len(r) == 0 {
		return 0
	}
	var sum float64
	for _, v := range r {
		sum += v
	}
	return sum / float64(len(r))
}

// Array is an immutable sensor layout; one Array may serve many vehicles.
type Array struct {
	mode     Mode
	dirs     []physics.Vec2 // compass: unit vectors
	offsets  []float64      // relative: radians
	maxRange float64
}

const invSqrt2 = 0.7071067811865476

// Compass8 is N, NE, E, SE, S, SW, W, NW in screen space (north is -y).
var Compass8 = []physics.Vec2{
	{X: 0, Y: -1},
	{X: invSqrt2, Y: -invSqrt2},
	{X: 1, Y: 0},
	{X: invSqrt2, Y: invSqrt2},
	{X: 0, Y: 1},
	{X: -invSqrt2, Y: invSqrt2},
	{X: -1, Y: 0},
	{X: -invSqrt2, Y: -invSqrt2},
}

// Fan5 is the forward fan of offsets -60, -30, 0, 30 and 60 degrees.
var Fan5 = []float64{
	physics.Radians(-60),
	physics.Radians(-30),
	0,
	physics.Radians(30),
	physics.Radians(60),
}

// NewCompass builds an array of world-fixed directions. Directions are
// normalized; a zero direction is kept and always reads 1.
func NewCompass(dirs []physics.Vec2, maxRange float64) (*Array, error) {
	if err := checkRange(maxRange, len(dirs)); err != nil {
		return nil, err
	}
	out := make([]physics.Vec2, len(dirs))
	for i, d := range dirs {
		if !d.IsFinite() {
			return nil, errors.Wrapf(ErrInvalidOffset, "direction %d", i)
		}
		out[i] = d.Normalize()
	}
	return &Array{mode: ModeCompass, dirs: out, maxRange: maxRange}, nil
}

// NewRelative builds an array of heading-relative offsets in radians.
func NewRelative(offsets []float64, maxRange float64) (*Array, error) {
	if err := checkRange(maxRange, len(offsets)); err != nil {
		return nil, err
	}
	for i, o := range offsets {
		if !physics.IsFinite(o) {
			return nil, errors.Wrapf(ErrInvalidOffset, "offset %d", i)
		}
	}
	return &Array{mode: ModeRelative, offsets: append([]float64(nil), offsets...), maxRange: maxRange}, nil
}

func checkRange(maxRange float64, n int) error {
	if n == 0 {
		return ErrNoDirections
	}
	if !(maxRange > 0) || math.IsInf(maxRange, 0) {
		return ErrInvalidRange
	}
	return nil
}

func (a *Array) Mode() Mode        { return a.mode }
func (a *Array) MaxRange() float64 { return a.maxRange }

// Len is the number of rays, K.
func (a *Array) Len() int {
	if a.mode == ModeCompass {
		return len(a.dirs)
	}
	return len(a.offsets)
}

// Direction returns the world-space unit vector of ray i for a vehicle at
// pose.
func (a *Array) Direction(pose physics.Pose, i int) physics.Vec2 {
	if a.mode == ModeCompass {
		return a.dirs[i]
	}
	return physics.FromAngle(pose.Heading+a.offsets[i], 1)
}

// Scan casts every ray against the walls.
func (a *Array) Scan(pose physics.Pose, walls []physics.Segment) Reading {
	return a.cast(pose, func(dir physics.Vec2) float64 {
		d, ok := physics.Nearest(pose.Position, dir, walls)
		if !ok {
			return a.maxRange
		}
		return d
	})
}

// ScanSurface marches every ray over a classification surface in steps of
// step units. The first obstacle sample ends the ray; leaving the surface
// reads as the full range.
func (a *Array) ScanSurface(pose physics.Pose, surface track.Surface, step float64) Reading {
	if !(step > 0) {
		step = 1
	}
	return a.cast(pose, func(dir physics.Vec2) float64 {
		for d := 0.0; d < a.maxRange; d += step {
			c, ok := surface.Classify(pose.Position.Add(dir.Scale(d)))
			if !ok {
				return a.maxRange
			}
			if c.Obstacle() {
				return d
			}
		}
		return a.maxRange
	})
}

func (a *Array) cast(pose physics.Pose, distance func(dir physics.Vec2) float64) Reading {
	out := make(Reading, a.Len())
	if !pose.Position.IsFinite() || !physics.IsFinite(pose.Heading) {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i := range out {
		dir := a.Direction(pose, i)
		if !dir.IsFinite() || dir == (physics.Vec2{}) {
			out[i] = 1
			continue
		}
		out[i] = a.normalize(distance(dir))
	}
	return out
}

func (a *Array) normalize(d float64) float64 {
	v := d / a.maxRange
	if !physics.IsFinite(v) {
		return 1
	}
	return physics.Clamp(v, 0, 1)
}
