package physics

import "math"

// Epsilon is the threshold below which a ray and a segment are treated as
// parallel (or the segment as degenerate).
const Epsilon = 1e-9

// Segment is a wall between two endpoints.
type Segment struct {
	A Vec2 `json:"a" yaml:"a"`
	B Vec2 `json:"b" yaml:"b"`
}

// Seg is shorthand for a segment built from raw coordinates.
func Seg(x1, y1, x2, y2 float64) Segment {
	return Segment{A: Vec2{X: x1, Y: y1}, B: Vec2{X: x2, Y: y2}}
}

// Length returns the distance between the endpoints.
func (s Segment) Length() float64 { return s.A.Distance(s.B) }

// Reversed returns the segment with its endpoints swapped.
func (s Segment) Reversed() Segment { return Segment{A: s.B, B: s.A} }

// Intersect casts a ray from origin along dir (expected to be unit length)
// and reports the ray parameter t >= 0 at which it crosses seg.
//
// With r = dir, s = seg.B-seg.A and qp = seg.A-origin the crossing satisfies
// origin + t*r = seg.A + u*s; a hit needs t >= 0 and 0 <= u <= 1. Parallel
// rays and zero-length segments never hit. The endpoints are put in a fixed
// order first so both orientations of a wall give the same bits.
func Intersect(origin, dir Vec2, seg Segment) (float64, bool) {
	if seg.B.X < seg.A.X || (seg.B.X == seg.A.X && seg.B.Y < seg.A.Y) {
		seg = seg.Reversed()
	}
	s := seg.B.Sub(seg.A)
	qp := seg.A.Sub(origin)

	rxs := Cross(dir, s)
	if math.Abs(rxs) < Epsilon || math.IsNaN(rxs) {
		return 0, false
	}

	t := Cross(qp, s) / rxs
	u := Cross(qp, dir) / rxs
	if t >= 0 && u >= 0 && u <= 1 {
		return t, true
	}
	return 0, false
}

// Nearest returns the smallest finite hit distance of the ray over walls.
func Nearest(origin, dir Vec2, walls []Segment) (float64, bool) {
	best, found := 0.0, false
	for _, w := range walls {
		t, ok := Intersect(origin, dir, w)
		if !ok || !IsFinite(t) {
			continue
		}
		if !found || t < best {
			best, found = t, true
		}
	}
	return best, found
}

// Polyline turns points into consecutive segments p0->p1, p1->p2, ...
// The loop is not closed.
func Polyline(points ...Vec2) []Segment {
	if len(points) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		out = append(out, Segment{A: points[i], B: points[i+1]})
	}
	return out
}

// Loop is Polyline plus the closing segment from the last point to the first.
func Loop(points ...Vec2) []Segment {
	if len(points) == 0 {
		return nil
	}
	out := Polyline(points...)
	return append(out, Segment{A: points[len(points)-1], B: points[0]})
}
