package track

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
)

// Class is what a classification surface reports for one point. A point can
// be a wall and a checkpoint at the same time when the raster colors overlap;
// only walls that are neither checkpoint nor finish are obstacles.
type Class struct {
	Wall       bool
	Finish     bool
	Checkpoint int // -1 when the point is not a checkpoint
}

// Predefined classes
var (
	FreeClass   = Class{Checkpoint: -1}
	WallClass   = Class{Wall: true, Checkpoint: -1}
	FinishClass = Class{Finish: true, Checkpoint: -1}
)

// CheckpointClass marks checkpoint i.
func CheckpointClass(i int) Class { return Class{Checkpoint: i} }

// Obstacle reports whether a vehicle may not occupy the point.
func (c Class) Obstacle() bool { return c.Wall && !c.Finish && c.Checkpoint < 0 }

// Surface classifies points of the world. ok is false outside the surface.
type Surface interface {
	Bounds() physics.Rect
	Classify(p physics.Vec2) (c Class, ok bool)
}

var _ Surface = (*Grid)(nil)

const (
	cellWall       uint16 = 1 << 0
	cellFinish     uint16 = 1 << 1
	cellCheckpoint        = 2 // checkpoint index+1 lives above this shift
	maxCheckpoints        = 1<<(16-cellCheckpoint) - 1
)

// Grid is an immutable raster of classes with one cell per world unit.
// Cell (x, y) covers [x, x+1) x [y, y+1).
type Grid struct {
	width, height int
	cells         []uint16
}

func encode(c Class) uint16 {
	var v uint16
	if c.Wall {
		v |= cellWall
	}
	if c.Finish {
		v |= cellFinish
	}
	if c.Checkpoint >= 0 && c.Checkpoint < maxCheckpoints {
		v |= uint16(c.Checkpoint+1) << cellCheckpoint
	}
	return v
}

func decode(v uint16) Class {
	return Class{
		Wall:       v&cellWall != 0,
		Finish:     v&cellFinish != 0,
		Checkpoint: int(v>>cellCheckpoint) - 1,
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) Bounds() physics.Rect {
	return physics.R(0, 0, float64(g.width), float64(g.height))
}

func (g *Grid) cell(p physics.Vec2) (int, bool) {
	if !p.IsFinite() {
		return 0, false
	}
	x, y := math.Floor(p.X), math.Floor(p.Y)
	if x < 0 || y < 0 || x >= float64(g.width) || y >= float64(g.height) {
		return 0, false
	}
	return int(y)*g.width + int(x), true
}

// Classify returns the class of the cell containing p.
func (g *Grid) Classify(p physics.Vec2) (Class, bool) {
	i, ok := g.cell(p)
	if !ok {
		return FreeClass, false
	}
	return decode(g.cells[i]), true
}

// Centroid returns the mean cell center of checkpoint i.
func (g *Grid) Centroid(i int) (physics.Vec2, bool) {
	var sx, sy float64
	n := 0
	for idx, v := range g.cells {
		if decode(v).Checkpoint != i {
			continue
		}
		sx += float64(idx%g.width) + 0.5
		sy += float64(idx/g.width) + 0.5
		n++
	}
	if n == 0 {
		return physics.Vec2{}, false
	}
	return physics.V(sx/float64(n), sy/float64(n)), true
}

// GridBuilder paints classes onto a grid before it is frozen by Build.
type GridBuilder struct {
	width, height int
	cells         []uint16
}

func NewGridBuilder(width, height int) *GridBuilder {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &GridBuilder{width: width, height: height, cells: make([]uint16, width*height)}
}

// Set paints a single cell; cells outside the grid are ignored.
func (b *GridBuilder) Set(x, y int, c Class) *GridBuilder {
	if x >= 0 && y >= 0 && x < b.width && y < b.height {
		b.cells[y*b.width+x] = encode(c)
	}
	return b
}

// Fill paints every cell whose center lies in r.
func (b *GridBuilder) Fill(r physics.Rect, c Class) *GridBuilder {
	return b.paint(r, c, func(p physics.Vec2) bool { return r.Contains(p) })
}

// FillCircle paints every cell whose center is closer than radius to center.
func (b *GridBuilder) FillCircle(center physics.Vec2, radius float64, c Class) *GridBuilder {
	r := physics.RectAround(center, radius, radius)
	return b.paint(r, c, func(p physics.Vec2) bool { return p.Distance(center) < radius })
}

// Outline paints a border of the given thickness along the grid edges.
func (b *GridBuilder) Outline(thickness float64, c Class) *GridBuilder {
	w, h := float64(b.width), float64(b.height)
	b.Fill(physics.R(0, 0, w, thickness), c)
	b.Fill(physics.R(0, h-thickness, w, h), c)
	b.Fill(physics.R(0, 0, thickness, h), c)
	return b.Fill(physics.R(w-thickness, 0, w, h), c)
}

func (b *GridBuilder) paint(r physics.Rect, c Class, inside func(physics.Vec2) bool) *GridBuilder {
	v := encode(c)
	x0 := int(math.Max(0, math.Floor(r.Min.X)))
	y0 := int(math.Max(0, math.Floor(r.Min.Y)))
	x1 := int(math.Min(float64(b.width-1), math.Ceil(r.Max.X)))
	y1 := int(math.Min(float64(b.height-1), math.Ceil(r.Max.Y)))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if inside(physics.V(float64(x)+0.5, float64(y)+0.5)) {
				b.cells[y*b.width+x] = v
			}
		}
	}
	return b
}

// Build freezes a copy of the painted cells.
func (b *GridBuilder) Build() *Grid {
	return &Grid{width: b.width, height: b.height, cells: append([]uint16(nil), b.cells...)}
}

// RGB is an 8-bit color.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// Close reports whether every channel differs by at most tol.
func (c RGB) Close(o RGB, tol uint8) bool {
	return absDiff(c.R, o.R) <= tol && absDiff(c.G, o.G) <= tol && absDiff(c.B, o.B) <= tol
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// Palette maps raster colors to classes.
type Palette struct {
	// WallMax is the highest value of every channel that still reads as wall.
	WallMax         uint8 `json:"wall_max" yaml:"wall_max"`
	Checkpoints     []RGB `json:"checkpoints" yaml:"checkpoints"`
	Tolerance       uint8 `json:"tolerance" yaml:"tolerance"`
	Finish          *RGB  `json:"finish,omitempty" yaml:"finish,omitempty"`
	FinishTolerance uint8 `json:"finish_tolerance" yaml:"finish_tolerance"`
}

// DefaultPalette is the five-color lap palette with a per-channel tolerance of
// 40 and dark pixels as walls.
func DefaultPalette() Palette {
	return Palette{
		WallMax: 100,
		Checkpoints: []RGB{
			{234, 51, 247},
			{117, 251, 253},
			{255, 255, 84},
			{240, 156, 73},
			{117, 251, 76},
		},
		Tolerance: 40,
	}
}

// Classify maps one color to its class.
func (p Palette) Classify(c RGB) Class {
	class := FreeClass
	class.Wall = c.R <= p.WallMax && c.G <= p.WallMax && c.B <= p.WallMax
	for i, cp := range p.Checkpoints {
		if c.Close(cp, p.Tolerance) {
			class.Checkpoint = i
			break
		}
	}
	if p.Finish != nil && c.Close(*p.Finish, p.FinishTolerance) {
		class.Finish = true
	}
	return class
}

// FromImage classifies every pixel of an already decoded image. The image is
// not retained.
func FromImage(img image.Image, palette Palette) (*Grid, error) {
	if img == nil {
		return nil, errors.Wrap(ErrInvalidSurface, "nil image")
	}
	r := img.Bounds()
	if r.Empty() {
		return nil, errors.Wrap(ErrInvalidSurface, "empty image")
	}
	if len(palette.Checkpoints) > maxCheckpoints {
		return nil, errors.Errorf("palette has %d checkpoint colors, at most %d supported", len(palette.Checkpoints), maxCheckpoints)
	}

	b := NewGridBuilder(r.Dx(), r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			c := RGB{R: uint8(cr >> 8), G: uint8(cg >> 8), B: uint8(cb >> 8)}
			b.Set(x-r.Min.X, y-r.Min.Y, palette.Classify(c))
		}
	}
	return b.Build(), nil
}

// ColoredCheckpoints builds one Colored checkpoint per palette color, anchored
// at the centroid of its pixels. Colors absent from the grid are an error.
func ColoredCheckpoints(g *Grid, n int) ([]Checkpoint, error) {
	out := make([]Checkpoint, 0, n)
	for i := 0; i < n; i++ {
		anchor, ok := g.Centroid(i)
		if !ok {
			return nil, errors.Wrapf(ErrNoCheckpoints, "checkpoint %d has no pixels", i)
		}
		out = append(out, Colored{Surface: g, Index: i, Anchor: anchor})
	}
	return out, nil
}
