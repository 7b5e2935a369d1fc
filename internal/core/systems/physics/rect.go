package physics

import "math"

// Rect is a closed axis-aligned rectangle.
type Rect struct {
	Min Vec2 `json:"min" yaml:"min"`
	Max Vec2 `json:"max" yaml:"max"`
}

// R builds a rectangle from its corner coordinates.
func R(minX, minY, maxX, maxY float64) Rect {
	return Rect{Min: Vec2{X: minX, Y: minY}, Max: Vec2{X: maxX, Y: maxY}}
}

// RectAround builds the rectangle centered at c with the given half extents.
func RectAround(c Vec2, halfW, halfH float64) Rect {
	return Rect{
		Min: Vec2{X: c.X - halfW, Y: c.Y - halfH},
		Max: Vec2{X: c.X + halfW, Y: c.Y + halfH},
	}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle has no area or is inverted.
func (r Rect) Empty() bool { return !(r.Max.X > r.Min.X && r.Max.Y > r.Min.Y) }

// Contains reports whether p lies inside or on the border.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Clamp moves p to the nearest point of the rectangle.
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{X: Clamp(p.X, r.Min.X, r.Max.X), Y: Clamp(p.Y, r.Min.Y, r.Max.Y)}
}

// Inset shrinks the rectangle by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{
		Min: Vec2{X: r.Min.X + d, Y: r.Min.Y + d},
		Max: Vec2{X: r.Max.X - d, Y: r.Max.Y - d},
	}
}

// Edges returns the four border segments, clockwise from the top-left corner.
func (r Rect) Edges() []Segment {
	return Loop(r.Min, V(r.Max.X, r.Min.Y), r.Max, V(r.Min.X, r.Max.Y))
}

// ClipSegment reports whether any part of seg lies inside the rectangle,
// using Liang-Barsky parametric clipping.
func (r Rect) ClipSegment(seg Segment) bool {
	d := seg.B.Sub(seg.A)
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			// parallel to this edge: inside iff on the inner side
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return false
			}
			t1 = math.Min(t1, t)
		}
		return true
	}

	return clip(-d.X, seg.A.X-r.Min.X) &&
		clip(d.X, r.Max.X-seg.A.X) &&
		clip(-d.Y, seg.A.Y-r.Min.Y) &&
		clip(d.Y, r.Max.Y-seg.A.Y) &&
		t0 <= t1
}

// Corners returns the four corners of a w x h box centered at c and rotated
// by heading. Corners follow the local offsets (-hw,-hh), (hw,-hh), (hw,hh),
// (-hw,hh) where local x points along the heading.
func Corners(c Vec2, halfW, halfH, heading float64) [4]Vec2 {
	cos, sin := math.Cos(heading), math.Sin(heading)
	local := [4]Vec2{{-halfW, -halfH}, {halfW, -halfH}, {halfW, halfH}, {-halfW, halfH}}
	var out [4]Vec2
	for i, p := range local {
		out[i] = Vec2{
			X: c.X + float64(p.X*cos) - float64(p.Y*sin),
			Y: c.Y + float64(p.X*sin) + float64(p.Y*cos),
		}
	}
	return out
}

// PointInPolygon reports whether p lies inside the polygon given by its
// vertices (even-odd rule).
func PointInPolygon(p Vec2, poly []Vec2) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
