package track

import "github.com/zeusync/trackenv/internal/core/systems/physics"

// SquareArena returns the walls of the rectangular arena: the outer rectangle
// inset by margin and an inner rectangle inset by a further trackWidth, which
// leaves a corridor of trackWidth between them.
func SquareArena(width, height, margin, trackWidth float64) []physics.Segment {
	outer := physics.R(margin, margin, width-margin, height-margin)
	inner := outer.Inset(trackWidth)
	return append(outer.Edges(), inner.Edges()...)
}

// FromXYXY converts [x1, y1, x2, y2] rows into segments.
func FromXYXY(lines [][4]float64) []physics.Segment {
	out := make([]physics.Segment, 0, len(lines))
	for _, l := range lines {
		out = append(out, physics.Seg(l[0], l[1], l[2], l[3]))
	}
	return out
}

// RingCheckpoints places perSide circular checkpoints along each edge of area,
// clockwise from the top-left corner. The corner itself is the lap line and is
// therefore the last checkpoint; the first one is the next point along the
// top edge.
func RingCheckpoints(area physics.Rect, perSide int, radius float64) []Checkpoint {
	if perSide < 1 {
		return nil
	}
	left, right := area.Min.X, area.Max.X
	top, bottom := area.Min.Y, area.Max.Y
	n := float64(perSide)

	pts := make([]physics.Vec2, 0, 4*perSide)
	for i := 0; i < perSide; i++ {
		pts = append(pts, physics.V(left+float64(i)/n*(right-left), top))
	}
	for i := 1; i <= perSide; i++ {
		pts = append(pts, physics.V(right, top+float64(i)/n*(bottom-top)))
	}
	for i := 1; i <= perSide; i++ {
		pts = append(pts, physics.V(right-float64(i)/n*(right-left), bottom))
	}
	for i := 1; i <= perSide; i++ {
		pts = append(pts, physics.V(left, bottom-float64(i)/n*(bottom-top)))
	}
	// the left edge ends back on the corner; drop the duplicate
	pts = pts[:len(pts)-1]
	pts = append(pts[1:], pts[0])

	out := make([]Checkpoint, len(pts))
	for i, p := range pts {
		out[i] = Circle{Position: p, Radius: radius}
	}
	return out
}
