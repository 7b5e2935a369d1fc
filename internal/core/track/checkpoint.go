package track

import (
	"github.com/zeusync/trackenv/internal/core/systems/physics"
)

// Checkpoint is one ordered waypoint of a track.
type Checkpoint interface {
	// Reached reports whether a vehicle at p is inside the checkpoint.
	Reached(p physics.Vec2) bool
	// Center is the point progress distances are measured to.
	Center() physics.Vec2
}

var (
	_ Checkpoint = Circle{}
	_ Checkpoint = (*Polygon)(nil)
	_ Checkpoint = Colored{}
)

// Circle is reached when the vehicle is strictly closer than Radius to
// Position.
type Circle struct {
	Position physics.Vec2
	Radius   float64
}

func (c Circle) Reached(p physics.Vec2) bool { return c.Position.Distance(p) < c.Radius }
func (c Circle) Center() physics.Vec2        { return c.Position }

// Polygon is reached when the vehicle is inside the zone's outline.
type Polygon struct {
	vertices []physics.Vec2
	center   physics.Vec2
}

// NewPolygon copies the outline; the center is the vertex mean.
func NewPolygon(vertices ...physics.Vec2) *Polygon {
	vs := append([]physics.Vec2(nil), vertices...)
	var c physics.Vec2
	for _, v := range vs {
		c = c.Add(v)
	}
	if len(vs) > 0 {
		c = c.Scale(1 / float64(len(vs)))
	}
	return &Polygon{vertices: vs, center: c}
}

func (z *Polygon) Reached(p physics.Vec2) bool { return physics.PointInPolygon(p, z.vertices) }
func (z *Polygon) Center() physics.Vec2        { return z.center }

// Colored is the raster compatibility zone: it is reached when the surface
// under the vehicle classifies as checkpoint Index, or as the finish line
// when Finish is set.
type Colored struct {
	Surface Surface
	Index   int
	Finish  bool
	Anchor  physics.Vec2
}

func (c Colored) Reached(p physics.Vec2) bool {
	class, ok := c.Surface.Classify(p)
	if !ok {
		return false
	}
	if c.Finish {
		return class.Finish
	}
	return class.Checkpoint == c.Index
}

func (c Colored) Center() physics.Vec2 { return c.Anchor }
