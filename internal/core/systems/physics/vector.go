// Package physics holds the 2D geometry kernel shared by sensors, collision
// and the vehicle models. Coordinates are screen space: x grows to the right,
// y grows downward, and a heading h points along (cos h, sin h).
package physics

import "math"

// Vec2 is a 2D vector or point.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{X: float64(v.X * f), Y: float64(v.Y * f)} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return float64(v.X*o.X) + float64(v.Y*o.Y)
}

// Cross returns the z component of the 3D cross product of v and o.
// Both products are rounded before subtracting so that no platform fuses
// them into a single FMA.
func Cross(a, b Vec2) float64 {
	return float64(a.X*b.Y) - float64(a.Y*b.X)
}

// Length returns the magnitude of the vector.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns a unit vector in the same direction. The zero vector and
// non-finite vectors normalize to the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 || math.IsInf(l, 0) || math.IsNaN(l) {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Distance returns the euclidean distance between two points.
func (v Vec2) Distance(o Vec2) float64 { return math.Hypot(o.X-v.X, o.Y-v.Y) }

// Angle returns the heading of the vector in radians.
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// IsFinite reports whether both components are finite.
func (v Vec2) IsFinite() bool { return IsFinite(v.X) && IsFinite(v.Y) }

// FromAngle creates a vector from a heading and a magnitude.
func FromAngle(heading, magnitude float64) Vec2 {
	return Vec2{X: float64(magnitude * math.Cos(heading)), Y: float64(magnitude * math.Sin(heading))}
}

// Distance2 computes euclidean distance between two 2D points.
func Distance2(x1, y1, x2, y2 float64) float64 { return math.Hypot(x2-x1, y2-y1) }

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Clamp restricts v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v >= lo {
		return v
	}
	return lo
}

// Pose is a position with a heading in radians. Headings are never wrapped.
type Pose struct {
	Position Vec2    `json:"position"`
	Heading  float64 `json:"heading"`
}

// Forward returns the unit vector the pose is facing.
func (p Pose) Forward() Vec2 { return FromAngle(p.Heading, 1) }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }
